package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		literal string
		ok      bool
		kind    Kind
	}{
		{"object", `{"id":0,"name":""}`, true, KindObject},
		{"array", `[{"id":0}]`, true, KindArray},
		{"number", `0`, true, KindNumber},
		{"string", `""`, true, KindString},
		{"boolean", `false`, true, KindBoolean},
		{"surrounding whitespace", "  {\"id\":0}\t", true, KindObject},
		{"null means no contract", `null`, false, ""},
		{"malformed", `{"id":0`, false, ""},
		{"trailing garbage", `{"id":0} extra`, false, ""},
		{"two documents", `{"id":0}{"id":1}`, false, ""},
		{"empty", ``, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, ok := Parse(tt.literal)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Nil(t, tmpl)
				return
			}
			assert.Equal(t, tt.kind, tmpl.Kind())
		})
	}
}
