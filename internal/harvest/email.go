package harvest

import (
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`)

// ExtractEmail pulls the first email-looking address out of free text.
func ExtractEmail(text string) string {
	if text == "" {
		return ""
	}
	m := emailRe.FindString(text)
	return strings.ToLower(m)
}
