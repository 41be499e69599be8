package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "Body text.\nSOURCE Example Corp.\n", "Example Corp."},
		{"trailing whitespace", "Body.\nSOURCE Example Corp.   \t\nWeb Site: http://x\n", "Example Corp."},
		{"spanish", "Texto.\nFUENTE Ejemplo S.A.\n", "Ejemplo S.A."},
		{"end of text", "SOURCE Acme Inc.", "Acme Inc."},
		{"first wins", "SOURCE First Co.\nSOURCE Second Co.\n", "First Co."},
		{"name on next line", "SOURCE\nAcme Inc.\n", "Acme Inc."},
		{"not at line start", "Data SOURCE Acme\n", ""},
		{"no whitespace", "SOURCES say so\n", ""},
		{"lowercase", "source Acme\n", ""},
		{"absent", "nothing here", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSource(tt.text))
		})
	}
}
