package content

import (
	"regexp"
	"strings"
)

// nonWord matches runs of anything that is not a letter (any script,
// including combining marks), a digit or an underscore.
var nonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]+`)

// ToSlug derives a URL-safe identifier from free text: lower-cased, every run
// of non-word characters collapsed to one hyphen, no leading or trailing
// hyphen. ToSlug(ToSlug(x)) == ToSlug(x).
func ToSlug(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = nonWord.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SlugOrDerive returns the explicit slug normalised, or one derived from
// fallback when explicit is blank.
func SlugOrDerive(explicit, fallback string) string {
	if strings.TrimSpace(explicit) != "" {
		return ToSlug(explicit)
	}
	return ToSlug(fallback)
}
