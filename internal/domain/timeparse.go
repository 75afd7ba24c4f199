package domain

import (
	"strings"
	"time"
)

// isoLayouts ISO-8601 forms the app has been seen to emit (with and without
// offset, space or T separator). Fractional seconds are accepted by
// time.Parse after any seconds field.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISO parses an ISO-8601 timestamp. A trailing "Z" is treated as
// "+00:00"; timestamps without an offset are taken as UTC. ok is false for
// blank or unparsable input.
func ParseISO(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.ReplaceAll(s, "Z", "+00:00")
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatISO is the inverse of ParseISO used when writing documents back out.
// The zero time formats as "".
func FormatISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
