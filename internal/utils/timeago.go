package utils

import (
	"strconv"
	"time"
)

// TimeAgo renders then relative to now: "just now" under a minute, then
// minutes, hours and days up to a week, and the calendar date after that.
// Future instants read as "just now".
func TimeAgo(then, now time.Time) string {
	d := now.Sub(then)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d/time.Minute)) + "m ago"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + "h ago"
	case d < 7*24*time.Hour:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d ago"
	}
	return then.UTC().Format("2006-01-02")
}
