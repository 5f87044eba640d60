// Package util provides small helpers shared across packages.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds generated slugs.
const MaxSlugLength = 96

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleDashes  = regexp.MustCompile(`-+`)
	validSlug       = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify converts free text (a title or tag name) into a URL-safe slug.
//
// Accented characters are decomposed and reduced to ASCII, everything that
// is not a letter or digit becomes a dash, and dashes are collapsed:
//
//	"Svelte Society!"     → "svelte-society"
//	"Crème Brûlée"        → "creme-brulee"
//	"  SvelteKit_adapter" → "sveltekit-adapter"
//	"🐉"                  → ""
func Slugify(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	return s
}

// IsSlug reports whether s is already in canonical slug form.
func IsSlug(s string) bool {
	return len(s) <= MaxSlugLength && validSlug.MatchString(s)
}
