// time.go — Timestamp parsing utilities for the log timestamp formats the
// parser and history store accept.
package util

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order. RFC3339Nano is first since it is a
// superset of RFC3339; the space-separated forms cover plain
// "YYYY-MM-DD HH:MM:SS" prefixes without a zone designator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a timestamp string in any accepted layout and returns
// it in UTC. Returns zero time and false on failure. Layouts without a zone
// are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
