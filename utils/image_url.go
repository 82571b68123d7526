// utils/image_url.go
package utils

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultImagePlaceholder is served in place of empty or unusable image URLs.
const DefaultImagePlaceholder = "/placeholder.png"

const (
	searchRedirectHost = "www.google.com"
	cloudDriveHost     = "drive.google.com"
)

// Hosts that refuse hotlinking; their images are replaced by the placeholder.
var nonHotlinkableHosts = []string{
	"casinobankingmethods.com",
}

var driveFileIDPattern = regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`)

// ImageNormalizer unwraps redirect-wrapped image links and rewrites cloud
// drive "view" links into direct-content links.
type ImageNormalizer struct {
	Placeholder string
}

// NormalizeImageURL runs the default normalizer.
func NormalizeImageURL(raw string) string {
	return ImageNormalizer{}.Normalize(raw)
}

func (n ImageNormalizer) placeholder() string {
	if n.Placeholder != "" {
		return n.Placeholder
	}
	return DefaultImagePlaceholder
}

// Normalize never fails: empty or unparseable input yields the placeholder,
// and URLs it does not recognize are returned unchanged.
func (n ImageNormalizer) Normalize(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return n.placeholder()
	}
	if _, err := url.Parse(candidate); err != nil {
		return n.placeholder()
	}

	// 1. search-engine redirect wrapper: ?url=<target>
	if strings.Contains(candidate, searchRedirectHost) {
		if target := queryParam(candidate, "url"); target != "" {
			candidate = decodeParam(target)
			for _, host := range nonHotlinkableHosts {
				if strings.Contains(candidate, host) {
					return n.placeholder()
				}
			}
		}
	}

	// 2. legacy redirect encoding: ?imgurl=<target>
	if strings.Contains(candidate, "imgurl=") {
		if target := queryParam(candidate, "imgurl"); target != "" {
			candidate = decodeParam(target)
		}
	}

	// 3. cloud drive view links
	if strings.Contains(candidate, cloudDriveHost) {
		candidate = directDriveURL(candidate)
	}

	if candidate == "" {
		return n.placeholder()
	}
	return candidate
}

// directDriveURL rewrites a drive "view" link to its export form. Links that
// are already direct, or carry no file id, are returned unchanged.
func directDriveURL(link string) string {
	if strings.Contains(link, "export=view") {
		return link
	}

	var fileID string
	if m := driveFileIDPattern.FindStringSubmatch(link); m != nil {
		fileID = m[1]
	} else {
		fileID = queryParam(link, "id")
	}
	if fileID == "" {
		return link
	}
	return "https://" + cloudDriveHost + "/uc?export=view&id=" + fileID
}

func queryParam(raw, key string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

// decodeParam applies one more round of percent-decoding to an already
// query-decoded value, keeping the input when it is not valid escaping.
func decodeParam(v string) string {
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
