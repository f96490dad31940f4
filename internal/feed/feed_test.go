package feed

import (
	"testing"
	"time"
)

func TestCutoff(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		days int
		want time.Time
	}{
		{"explicit window", 30, time.Date(2023, 12, 16, 12, 0, 0, 0, time.UTC)},
		{"single day", 1, time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC)},
		{"zero defaults to a week", 0, time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)},
		{"negative defaults to a week", -3, time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cutoff(now, tc.days); !got.Equal(tc.want) {
				t.Fatalf("Cutoff(now, %d) = %v, want %v", tc.days, got, tc.want)
			}
		})
	}
}

func TestCutoffKeepsRecentDropsStale(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	cutoff := Cutoff(now, 30)

	recent := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	stale := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	if recent.Before(cutoff) {
		t.Fatalf("item from %v fell outside a 30-day window ending %v", recent, now)
	}
	if !stale.Before(cutoff) {
		t.Fatalf("item from %v survived a 30-day window ending %v", stale, now)
	}
}
