package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any run of characters outside [a-z0-9].
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

const slugFallbackPrefix = "untitled-"

// Slugify converts a title or name to a URL-safe slug.
//
//	"Hello World"                       -> "hello-world"
//	"TypeScript Best Practices in 2025" -> "typescript-best-practices-in-2025"
//	"Café Crème"                        -> "cafe-creme"
//
// Text that reduces to nothing (punctuation only, non-Latin scripts) maps to
// "untitled-" followed by a short hash of the input, so the result is never
// empty and stays deterministic. Uniqueness is left to the caller.
func Slugify(text string) string {
	// Decompose accented characters so the base letter survives the ASCII filter.
	s := norm.NFKD.String(text)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		sum := sha256.Sum256([]byte(text))
		return slugFallbackPrefix + hex.EncodeToString(sum[:4])
	}
	return s
}

// TruncateSlug cuts slug to at most max bytes without leaving a trailing hyphen.
func TruncateSlug(slug string, max int) string {
	if max <= 0 || len(slug) <= max {
		return slug
	}
	return strings.TrimRight(slug[:max], "-")
}
