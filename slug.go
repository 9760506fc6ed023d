package testgen

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// resolveSlug converts a generator's declared name plus its parameter
// assignment and repeat position into a unique, filesystem-safe slug.
//
// Rules, in order:
//   - underscores in the declared name become hyphens (hyphen is the
//     canonical word separator in collected names), the name is lowercased;
//   - a non-empty assignment appends its pairs sorted by parameter name,
//     each as "-<name>-<value>";
//   - when repeatTotal > 1, a 1-based repeat index is appended, zero-padded
//     to the decimal width of repeatTotal.
//
// Every segment passes through sanitizeSlugPart, so the result contains
// only [a-z0-9-]. A slug that sanitizes to the empty string is an error.
func resolveSlug(name string, a Assignment, repeatIndex, repeatTotal int) (string, error) {
	var b strings.Builder
	b.WriteString(sanitizeSlugPart(name))

	for _, pair := range a.sortedByName() {
		b.WriteByte('-')
		b.WriteString(sanitizeSlugPart(pair.Name))
		b.WriteByte('-')
		b.WriteString(sanitizeSlugPart(cast.ToString(pair.Value)))
	}

	if repeatTotal > 1 {
		b.WriteByte('-')
		b.WriteString(zeroPad(repeatIndex+1, repeatWidth(repeatTotal)))
	}

	slug := collapseHyphens(b.String())
	if slug == "" {
		return "", ErrInvalidSlug.WithDetails(fmt.Sprintf("generator name %q", name))
	}
	return slug, nil
}

// sanitizeSlugPart lowercases the segment and maps every rune outside
// [a-z0-9-] to a hyphen. Underscores therefore normalize to hyphens as a
// special case of the general escaping rule.
func sanitizeSlugPart(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// collapseHyphens collapses runs of hyphens and trims them from both ends,
// so escaping never produces ugly or ambiguous "--" sequences.
func collapseHyphens(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range s {
		if r == '-' {
			prevHyphen = true
			continue
		}
		if prevHyphen && b.Len() > 0 {
			b.WriteByte('-')
		}
		prevHyphen = false
		b.WriteRune(r)
	}
	return b.String()
}
