// utils/links.go
package utils

import "strings"

// DefaultTrackingLink is rendered when a bonus has no tracking link.
const DefaultTrackingLink = "#"

// NormalizeTrackingLink prepends https:// to links stored without a scheme.
func NormalizeTrackingLink(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == DefaultTrackingLink {
		return DefaultTrackingLink
	}
	if strings.HasPrefix(s, "http") {
		return s
	}
	return "https://" + s
}
