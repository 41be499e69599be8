package extract

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
)

// Datelines look like
//
//	EAST PEORIA, Ill., Oct. 24, 2011 /PRNewswire/ --
//	NUEVA YORK, 26 de octubre de 2011 /PRNewswire-HISPANIC PR WIRE/ --
//
// and are matched by small parsers built from the steps below rather than
// one large regular expression.

// cursor is a position in the text being parsed.
type cursor struct {
	text string
	pos  int
}

// step consumes input at the cursor. On failure it leaves pos unchanged.
type step func(c *cursor) bool

func seq(steps ...step) step {
	return func(c *cursor) bool {
		start := c.pos
		for _, s := range steps {
			if !s(c) {
				c.pos = start
				return false
			}
		}
		return true
	}
}

func optional(s step) step {
	return func(c *cursor) bool {
		s(c)
		return true
	}
}

func capture(dst *string, s step) step {
	return func(c *cursor) bool {
		start := c.pos
		if !s(c) {
			return false
		}
		*dst = c.text[start:c.pos]
		return true
	}
}

func lit(s string) step {
	return func(c *cursor) bool {
		end := c.pos + len(s)
		if end > len(c.text) || !strings.EqualFold(c.text[c.pos:end], s) {
			return false
		}
		c.pos = end
		return true
	}
}

// runesWhile consumes at least min runes satisfying ok.
func runesWhile(min int, ok func(rune) bool) step {
	return func(c *cursor) bool {
		pos, n := c.pos, 0
		for pos < len(c.text) {
			r, size := utf8.DecodeRuneInString(c.text[pos:])
			if !ok(r) {
				break
			}
			pos += size
			n++
		}
		if n < min {
			return false
		}
		c.pos = pos
		return true
	}
}

var (
	spaces  = runesWhile(0, unicode.IsSpace)
	spaces1 = runesWhile(1, unicode.IsSpace)
)

func letters(min int) step {
	return runesWhile(min, unicode.IsLetter)
}

// digits consumes between min and max ASCII digits, greedily.
func digits(min, max int) step {
	return func(c *cursor) bool {
		n := 0
		for n < max && c.pos+n < len(c.text) && c.text[c.pos+n] >= '0' && c.text[c.pos+n] <= '9' {
			n++
		}
		if n < min {
			return false
		}
		c.pos += n
		return true
	}
}

// lazyUntil captures the shortest run of text on the current line that ends
// at delim and lets rest match what follows the delimiter.
func lazyUntil(delim byte, dst *string, rest step) step {
	return func(c *cursor) bool {
		start := c.pos
		for i := start; i < len(c.text) && c.text[i] != '\n'; i++ {
			if c.text[i] != delim {
				continue
			}
			c.pos = i + 1
			if rest(c) {
				*dst = c.text[start:i]
				return true
			}
		}
		c.pos = start
		return false
	}
}

// datelineMatch holds the raw substrings of a matched dateline.
type datelineMatch struct {
	location string
	month    string
	day      string
	year     string
	wire     string
}

type datelineRule func(m *datelineMatch) step

// wireMarker matches "/<wire service>/ --".
func wireMarker(m *datelineMatch) step {
	return seq(lit("/"), lazyUntil('/', &m.wire, seq(spaces, lit("--"))))
}

// englishDateline: "<location>, <Mon>[.] <d>, <yyyy> /<wire>/ --".
func englishDateline(m *datelineMatch) step {
	return seq(spaces, lazyUntil(',', &m.location, seq(
		spaces,
		capture(&m.month, letters(3)),
		optional(lit(".")),
		spaces,
		capture(&m.day, digits(1, 2)),
		lit(","),
		spaces,
		capture(&m.year, digits(4, 4)),
		spaces,
		wireMarker(m),
	)))
}

// spanishDateline: "<location>, <d> de <mes> de <yyyy> /<wire>/ --".
func spanishDateline(m *datelineMatch) step {
	return seq(spaces, lazyUntil(',', &m.location, seq(
		spaces,
		capture(&m.day, digits(1, 2)),
		spaces1,
		capture(&m.month, seq(lit("de"), spaces1, letters(3), spaces1, lit("de"))),
		spaces1,
		capture(&m.year, digits(4, 4)),
		spaces,
		wireMarker(m),
	)))
}

var datelineRules = []datelineRule{englishDateline, spanishDateline}

// ParseDateline finds the first dateline in text, trying each line start in
// order. It returns ErrNoDateline when nothing matches and an ErrUnknownMonth
// error when the first match names a month it does not know.
func ParseDateline(text string) (domain.Dateline, error) {
	for start := 0; start <= len(text); {
		for _, rule := range datelineRules {
			var m datelineMatch
			if rule(&m)(&cursor{text: text, pos: start}) {
				return m.dateline()
			}
		}
		next := strings.IndexByte(text[start:], '\n')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return domain.Dateline{}, ErrNoDateline
}

func (m datelineMatch) dateline() (domain.Dateline, error) {
	month, err := LookupMonth(m.month)
	if err != nil {
		return domain.Dateline{}, err
	}
	day, err := strconv.Atoi(m.day)
	if err != nil {
		return domain.Dateline{}, fmt.Errorf("dateline day %q: %w", m.day, err)
	}
	year, err := strconv.Atoi(m.year)
	if err != nil {
		return domain.Dateline{}, fmt.Errorf("dateline year %q: %w", m.year, err)
	}
	return domain.Dateline{
		Location:    m.location,
		Month:       month,
		Day:         day,
		Year:        year,
		WireService: m.wire,
	}, nil
}
