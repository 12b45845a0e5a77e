package harvest

import "strings"

// Disallowed is the fast textual reject: a case-insensitive substring
// match of any configured term against title+description. It runs before
// any external lookup so obvious non-fits cost nothing.
func Disallowed(title, description string, disallow []string) (bool, string) {
	text := strings.ToLower(title + " " + description)
	for _, term := range disallow {
		t := strings.ToLower(strings.TrimSpace(term))
		if t == "" {
			continue
		}
		if strings.Contains(text, t) {
			return true, t
		}
	}
	return false, ""
}
