package dateutil

import (
	"testing"
	"time"
)

func TestParseKnownFormats(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		in   string
		want string
	}{
		{"Wed, 10 Jan 2024 08:30:00 +0000", "2024-01-10"},
		{"Wed, 10 Jan 2024 08:30:00 GMT", "2024-01-10"},
		{"2024-01-10T08:30:00Z", "2024-01-10"},
		{"2024-01-10T08:30:00.000", "2024-01-10"},
		{"2024-01-10", "2024-01-10"},
		{"January 10, 2024", "2024-01-10"},
		{"Jan 10, 2024", "2024-01-10"},
		{"10 January 2024", "2024-01-10"},
		{"2024/01/10", "2024-01-10"},
	}
	for _, c := range cases {
		got := Parse(c.in, now)
		if got.Format("2006-01-02") != c.want {
			t.Fatalf("Parse(%q) = %s, want %s", c.in, got.Format("2006-01-02"), c.want)
		}
	}
}

func TestParseFallsBackToNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, in := range []string{"", "   ", "yesterday-ish", "not a date at all ###"} {
		got := Parse(in, now)
		if !got.Equal(now) {
			t.Fatalf("Parse(%q) = %v, want fallback %v", in, got, now)
		}
	}
}

func TestParseRFC2822First(t *testing.T) {
	// A pubDate string must resolve via the RFC-2822 family, not a looser
	// fallback that could misread the day/month order.
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	got := Parse("Mon, 5 Feb 2024 10:00:00 -0500", now)
	if got.Month() != time.February || got.Day() != 5 {
		t.Fatalf("got %v, want Feb 5", got)
	}
}
