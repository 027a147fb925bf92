package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictSanitizer = bluemonday.StrictPolicy()

// StripTags removes any markup from short plain-text fields such as titles and
// names. Entities escaped by the policy are decoded again so "Tom & Jerry"
// round-trips unchanged.
func StripTags(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictSanitizer.Sanitize(input)))
}
