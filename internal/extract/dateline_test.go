package extract

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/wire-harvester/internal/domain"
)

func TestLookupMonth(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		{"Oct.", 10},
		{"October", 10},
		{"de octubre de", 10},
		{"OCT", 10},
		{"Sept.", 9},
		{"May", 5},
		{"Jan.", 1},
		{"diciembre", 12},
		{"De  Marzo  de", 3},
		{"février", 2},
		{"août", 8},
	}
	for _, tt := range tests {
		got, err := LookupMonth(tt.token)
		require.NoError(t, err, tt.token)
		assert.Equal(t, tt.want, got, tt.token)
	}
}

func TestLookupMonthUnknown(t *testing.T) {
	for _, token := range []string{"", "Ill", "Octo", "13", "de de"} {
		_, err := LookupMonth(token)
		assert.ErrorIs(t, err, ErrUnknownMonth, token)
	}
}

func TestParseDatelineEnglish(t *testing.T) {
	text := "Caterpillar Reports Record Quarter\n\nEAST PEORIA, Ill., Oct. 24, 2011 /PRNewswire/ -- Caterpillar Inc. today ...\nSOURCE Example Corp.\n"

	got, err := ParseDateline(text)
	require.NoError(t, err)
	assert.Equal(t, domain.Dateline{
		Location:    "EAST PEORIA, Ill.",
		Month:       10,
		Day:         24,
		Year:        2011,
		WireService: "PRNewswire",
	}, got)
}

func TestParseDatelineSpanish(t *testing.T) {
	text := "NUEVA YORK, 26 de octubre de 2011 /PRNewswire-HISPANIC PR WIRE/ -- La empresa ..."

	got, err := ParseDateline(text)
	require.NoError(t, err)
	assert.Equal(t, "NUEVA YORK", got.Location)
	assert.Equal(t, 10, got.Month)
	assert.Equal(t, 26, got.Day)
	assert.Equal(t, 2011, got.Year)
	assert.Equal(t, "PRNewswire-HISPANIC PR WIRE", got.WireService)
}

func TestParseDatelineRoundTrip(t *testing.T) {
	cases := []domain.Dateline{
		{Location: "NEW YORK", Month: 1, Day: 3, Year: 2012, WireService: "PRNewswire"},
		{Location: "SAN JOSE, Calif.", Month: 9, Day: 30, Year: 2011, WireService: "PRNewswire-FirstCall"},
		{Location: "LONDON", Month: 12, Day: 1, Year: 1999, WireService: "PRNewswire-Asia"},
		{Location: "WASHINGTON, D.C.", Month: 5, Day: 15, Year: 2020, WireService: "PRNewswire-USNewswire"},
	}
	months := []string{"", "Jan.", "Feb.", "March", "April", "May", "June", "July", "Aug.", "Sept.", "Oct.", "Nov.", "Dec."}

	for _, want := range cases {
		text := fmt.Sprintf("Headline\n  %s, %s %d, %d /%s/ -- Body text.\n", want.Location, months[want.Month], want.Day, want.Year, want.WireService)
		got, err := ParseDateline(text)
		require.NoError(t, err, text)
		assert.Equal(t, want, got, text)
	}
}

func TestParseDatelineFirstMatchWins(t *testing.T) {
	text := "CHICAGO, March 2, 2012 /PRNewswire/ -- first\nBOSTON, April 9, 2013 /PRNewswire/ -- second\n"

	got, err := ParseDateline(text)
	require.NoError(t, err)
	assert.Equal(t, "CHICAGO", got.Location)
	assert.Equal(t, 3, got.Month)
}

func TestParseDatelineWireWithSlashes(t *testing.T) {
	got, err := ParseDateline("TORONTO, June 4, 2012 /CNW/PRNewswire/ -- text")
	require.NoError(t, err)
	assert.Equal(t, "CNW/PRNewswire", got.WireService)
}

func TestParseDatelineNoMatch(t *testing.T) {
	for _, text := range []string{
		"",
		"Just a paragraph with no dateline.",
		"NEW YORK, Oct. 24 2011 /PRNewswire/ -- missing comma",
		"NEW YORK, Oct. 24, 2011 PRNewswire -- no slashes",
		"NEW YORK, Oct. 24, 2011 /PRNewswire/ no separator",
		"NEW YORK, Oct. 124, 2011 /PRNewswire/ -- three digit day",
	} {
		_, err := ParseDateline(text)
		assert.ErrorIs(t, err, ErrNoDateline, text)
	}
}

func TestParseDatelineUnknownMonth(t *testing.T) {
	_, err := ParseDateline("PARIS, Foo. 3, 2012 /PRNewswire/ -- text")
	assert.ErrorIs(t, err, ErrUnknownMonth)
}

func TestParseDatelineOutOfRangeDayPassesThrough(t *testing.T) {
	got, err := ParseDateline("AUSTIN, Texas, Sept. 31, 2011 /PRNewswire/ -- text")
	require.NoError(t, err)
	assert.Equal(t, 31, got.Day)
	assert.Equal(t, 9, got.Month)
	assert.Equal(t, "AUSTIN, Texas", got.Location)
}
