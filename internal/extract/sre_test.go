package extract

import (
	"strings"
	"testing"
	"time"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

const sampleSREWeeklyIssue = `
<div class="sreweekly-entry">
  <div class="sreweekly-title"><a href="https://example.com/outage-review">Outage review: the cascading retry storm</a></div>
  <div class="sreweekly-description">A retry storm took down the checkout flow.<small>example.com</small></div>
</div>
<div class="sreweekly-entry">
  <div class="sreweekly-sponsor-message">Brought to you by VendorCo.</div>
  <div class="sreweekly-title"><a href="https://vendorco.example.com/ad">VendorCo saves you money</a></div>
</div>
<div class="sreweekly-entry email_only">
  <div class="sreweekly-title"><a href="https://example.com/teaser">Subscriber-only teaser</a></div>
</div>
<div class="sreweekly-entry">
  <div class="sreweekly-title"><a href="https://example.com/slo-guide">Choosing SLO windows</a></div>
  <div class="sreweekly-description">Rolling versus calendar windows compared.<small>example.org</small></div>
</div>`

func TestParseSREWeeklyIssue(t *testing.T) {
	issueDate := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	entries, err := parseSREWeeklyIssue(sampleSREWeeklyIssue, issueDate, "SRE Weekly")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (sponsor and email-only skipped)", len(entries))
	}
	first := entries[0]
	if first.Title != "Outage review: the cascading retry storm" {
		t.Fatalf("first title = %q", first.Title)
	}
	if first.Link != "https://example.com/outage-review" {
		t.Fatalf("first link = %q", first.Link)
	}
	if strings.Contains(first.Description, "example.com") {
		t.Fatalf("source footnote survived in description: %q", first.Description)
	}
	for _, e := range entries {
		if !e.PublishedAt.Equal(issueDate) {
			t.Fatalf("entry %q dated %v, want issue date %v", e.Title, e.PublishedAt, issueDate)
		}
		if e.Source != "SRE Weekly" {
			t.Fatalf("entry %q source = %q", e.Title, e.Source)
		}
	}
}

func TestSREWeeklyIssueOutsideWindowIsDropped(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	cutoff := feed.Cutoff(now, 30)

	issues := []time.Time{
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	var kept []feed.Entry
	for _, issueDate := range issues {
		if issueDate.Before(cutoff) {
			continue
		}
		entries, err := parseSREWeeklyIssue(sampleSREWeeklyIssue, issueDate, "SRE Weekly")
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		kept = append(kept, entries...)
	}

	if len(kept) != 2 {
		t.Fatalf("kept %d entries, want 2 from the recent issue only", len(kept))
	}
	for _, e := range kept {
		if e.PublishedAt.Before(cutoff) {
			t.Fatalf("entry %q dated %v is older than cutoff %v", e.Title, e.PublishedAt, cutoff)
		}
	}
}
