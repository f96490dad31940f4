// Package dateutil normalizes the date strings the sources emit. Parse is
// total: every input yields a usable time, unparseable ones yield now.
package dateutil

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// rfc2822Layouts cover the RSS pubDate family. They run first: some feeds
// emit strings that also loosely match a fallback layout and would parse to
// the wrong date if the order were reversed.
var rfc2822Layouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
}

var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 Jan 2006",
	"2006/01/02",
}

// Parse turns an arbitrary source date string into a time. Unrecognized
// input falls back to now; no error ever escapes.
func Parse(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	for _, layout := range rfc2822Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if t, err := dateparse.ParseAny(s); err == nil {
		return t
	}
	return now
}

// ParseAt is Parse with the fallback taken at call time.
func ParseAt(s string) time.Time {
	return Parse(s, time.Now())
}
