package extract

import (
	"strings"
	"unicode"
)

var sourceMarkers = []string{"SOURCE", "FUENTE"}

// ParseSource returns the issuing organization named on the first line that
// starts with "SOURCE" or "FUENTE" followed by whitespace, e.g.
// "SOURCE Example Corp." yields "Example Corp.". It returns "" when no such
// line exists.
func ParseSource(text string) string {
	for start := 0; start <= len(text); {
		if company, ok := sourceAt(text, start); ok {
			return company
		}
		next := strings.IndexByte(text[start:], '\n')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return ""
}

func sourceAt(text string, start int) (string, bool) {
	for _, marker := range sourceMarkers {
		c := &cursor{text: text, pos: start}
		if !seq(exact(marker), spaces1)(c) {
			continue
		}
		end := strings.IndexByte(text[c.pos:], '\n')
		if end < 0 {
			end = len(text) - c.pos
		}
		return strings.TrimRightFunc(text[c.pos:c.pos+end], unicode.IsSpace), true
	}
	return "", false
}

// exact is a case-sensitive lit.
func exact(s string) step {
	return func(c *cursor) bool {
		if !strings.HasPrefix(c.text[c.pos:], s) {
			return false
		}
		c.pos += len(s)
		return true
	}
}
