// utils/tags.go
package utils

import "strings"

// ParseTags splits a comma separated tag string, trimming each label and
// dropping empties and repeats. First occurrence order is kept.
func ParseTags(s string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// JoinTags is the storage form of a tag set.
func JoinTags(tags []string) string {
	return strings.Join(ParseTags(strings.Join(tags, ",")), ", ")
}
