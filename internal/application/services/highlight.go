package services

import (
	"regexp"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Highlight wraps every case-insensitive occurrence of term in text with
// <mark> tags, keeping the original casing. The term is matched literally.
func Highlight(text, term string) string {
	if term == "" || text == "" {
		return text
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
	if err != nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, func(match string) string {
		return markOpen + match + markClose
	})
}
