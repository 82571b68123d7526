// utils/timeago.go
package utils

import (
	"fmt"
	"time"
)

// TimeAgo renders the age of t relative to now, e.g. "3 hours ago".
func TimeAgo(t, now time.Time) string {
	secs := int64(now.Sub(t) / time.Second)
	switch {
	case secs < 60:
		return "just now"
	case secs < 3600:
		return plural(secs/60, "minute")
	case secs < 86400:
		return plural(secs/3600, "hour")
	case secs < 604800:
		return plural(secs/86400, "day")
	case secs < 2592000:
		return plural(secs/604800, "week")
	default:
		return plural(secs/2592000, "month")
	}
}

func plural(n int64, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss ago", n, unit)
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
