// utils/slug.go
package utils

import "strings"

// DeriveSlug lowercases text, collapses every run of characters outside
// [a-z0-9] into a single '-', and trims leading and trailing '-'.
// Non-ASCII letters are not transliterated; they count as separators.
func DeriveSlug(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pendingDash := false
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
