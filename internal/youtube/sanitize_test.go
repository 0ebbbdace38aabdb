package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello world", "hello world"},
		{"trims", "  hello \n", "hello"},
		{"strips tags", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"drops scripts", "before<script>alert(1)</script>after", "beforeafter"},
		{"decodes entities", "rock &amp; roll", "rock & roll"},
		{"control chars", "a\x00b\x07c\x1bd", "abcd"},
		{"keeps newlines and tabs", "line1\n\tline2", "line1\n\tline2"},
		{"keeps unicode", "café – naïve", "café – naïve"},
		{"zero width", "a\u200bb", "ab"},
		{"unclosed less-than", "if a<b then we stop", "if a<b then we stop"},
		{"less-than before a tag", "x<y and <b>bold</b>", "x<y and bold"},
		{"heart", "a <3 b", "a <3 b"},
		{"bare ampersand", "AT&T said x", "AT&T said x"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}
