package youtube

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

// tagPattern matches a complete markup span. A '<' outside one is text.
var tagPattern = regexp.MustCompile(`<[^<>]*>`)

// SanitizeText strips markup and control characters from provider text.
// Newlines and tabs survive; surrounding whitespace is trimmed.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}

	plain := text
	if strings.ContainsAny(text, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(escapeStrayLess(text)))
		if err == nil {
			doc.Find("script, style").Remove()
			plain = doc.Text()
		}
	}

	plain = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == unicode.ReplacementChar, unicode.IsControl(r):
			return -1
		case unicode.In(r, unicode.Cf):
			return -1
		}
		return r
	}, plain)

	return strings.TrimSpace(plain)
}

// escapeStrayLess escapes every '<' that does not open a complete tag so
// the HTML parser keeps it as text instead of swallowing the rest.
func escapeStrayLess(text string) string {
	if !strings.Contains(text, "<") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(text, -1) {
		b.WriteString(strings.ReplaceAll(text[last:loc[0]], "<", "&lt;"))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(strings.ReplaceAll(text[last:], "<", "&lt;"))
	return b.String()
}
