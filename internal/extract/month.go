package extract

import (
	"fmt"
	"strings"
)

// monthNames maps lowercased month names, full and abbreviated, to 1-12.
// English, Spanish and French names share the table; overlapping
// abbreviations ("mar", "jun", "oct") agree on the month.
var monthNames = map[string]int{
	// English
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,

	// Spanish
	"ene": 1, "enero": 1,
	"febrero": 2,
	"marzo": 3,
	"abr": 4, "abril": 4,
	"mayo": 5,
	"junio": 6,
	"julio": 7,
	"ago": 8, "agosto": 8,
	"septiembre": 9, "setiembre": 9,
	"octubre": 10,
	"noviembre": 11,
	"dic": 12, "diciembre": 12,

	// French
	"janv": 1, "janvier": 1,
	"févr": 2, "fevr": 2, "février": 2, "fevrier": 2,
	"mars": 3,
	"avr": 4, "avril": 4,
	"mai": 5,
	"juin": 6,
	"juil": 7, "juillet": 7,
	"août": 8, "aout": 8,
	"septembre": 9,
	"octobre": 10,
	"novembre": 11,
	"déc": 12, "décembre": 12, "decembre": 12,
}

// LookupMonth maps a month token as it appears in a dateline to 1-12.
// Matching is case-insensitive and tolerates a trailing period and the
// Spanish "de <mes> de" framing.
func LookupMonth(token string) (int, error) {
	key := normalizeMonthToken(token)
	if m, ok := monthNames[key]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMonth, token)
}

func normalizeMonthToken(token string) string {
	key := strings.ToLower(strings.Join(strings.Fields(token), " "))
	key = strings.TrimSuffix(key, ".")
	key = strings.TrimPrefix(key, "de ")
	key = strings.TrimSuffix(key, " de")
	return strings.TrimSuffix(key, ".")
}
