package app

import "regexp"

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// sanitizeInput strips basic HTML/script tags from user-supplied text
// before it is persisted or fed into prompts.
func sanitizeInput(input string) string {
	if input == "" {
		return ""
	}
	return htmlTagPattern.ReplaceAllString(input, "")
}
