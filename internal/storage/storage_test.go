package storage

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

func TestColumnRoundTrip(t *testing.T) {
	in := feed.ProcessedEntry{
		Entry: feed.Entry{
			Title:       "Kubernetes v1.33.2 released",
			Description: "Patch release with bug fixes",
			Link:        "https://github.com/kubernetes/kubernetes/releases/tag/v1.33.2",
			PublishedAt: time.Date(2025, 6, 17, 12, 0, 0, 0, time.UTC),
			Source:      "Kubernetes Releases",
			Category:    "release",
			EntryType:   "release",
			Version:     "v1.33.2",
		},
		TranslatedTitle:       "Kubernetes v1.33.2 yayinlandi",
		TranslatedDescription: "Hata duzeltmeleri iceren yama surumu",
	}
	got := entryFromColumns(columnsFromEntry(in))
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip changed the entry:\n got %+v\nwant %+v", got, in)
	}
}

func TestColumnsFromEntrySanitizes(t *testing.T) {
	long := strings.Repeat("ü", 600)
	cols := columnsFromEntry(feed.ProcessedEntry{
		Entry: feed.Entry{Title: long, Description: "ok\xff\xfe"},
	})
	if n := len([]rune(cols.Title)); n != 512 {
		t.Fatalf("title kept %d runes, want 512", n)
	}
	if strings.Contains(cols.Description, "\xff") {
		t.Fatalf("invalid bytes survived: %q", cols.Description)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("  abc  ", 10); got != "abc" {
		t.Fatalf("got %q, want trimmed input", got)
	}
	if got := truncateRunes("çilek", 3); got != "çil" {
		t.Fatalf("got %q, want çil", got)
	}
	if got := truncateRunes("x", 0); got != "" {
		t.Fatalf("got %q, want empty for zero limit", got)
	}
}

func TestClearRejectsUnknownTopic(t *testing.T) {
	s := &Store{}
	if err := s.Clear(context.Background(), "weather"); err == nil {
		t.Fatalf("Clear accepted an unknown topic")
	}
	if err := s.SaveBatch(context.Background(), "weather", nil); err == nil {
		t.Fatalf("SaveBatch accepted an unknown topic")
	}
}

func TestStatsSeverityBreakdownIsCVEOnly(t *testing.T) {
	bs, err := json.Marshal(Stats{Topic: feed.TopicNews, BySource: map[string]int64{}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(bs), "bySeverity") {
		t.Fatalf("severity breakdown serialized for a non-CVE topic: %s", bs)
	}

	bs, err = json.Marshal(Stats{
		Topic:      feed.TopicCVE,
		BySource:   map[string]int64{},
		BySeverity: map[string]int64{"Kritik": 3},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(bs), `"Kritik":3`) {
		t.Fatalf("severity breakdown missing: %s", bs)
	}
}

func TestListRowEntryDecodesCVEColumns(t *testing.T) {
	row := listRow{
		itemColumns: itemColumns{
			Title: "CVE-2025-1234 - buffer overflow",
			Link:  "https://nvd.nist.gov/vuln/detail/CVE-2025-1234",
		},
		CVEID:      "CVE-2025-1234",
		CVSSScore:  9.8,
		Severity:   "Kritik",
		CWEIDs:     datatypes.JSON(`["CWE-120"]`),
		References: datatypes.JSON(`["https://example.com/advisory"]`),
	}
	pe := row.entry()
	if pe.CVEID != "CVE-2025-1234" || pe.CVSSScore != 9.8 || pe.Severity != "Kritik" {
		t.Fatalf("cve columns lost: %+v", pe)
	}
	if len(pe.CWEIDs) != 1 || pe.CWEIDs[0] != "CWE-120" {
		t.Fatalf("CWEIDs = %v", pe.CWEIDs)
	}
	if len(pe.References) != 1 {
		t.Fatalf("References = %v", pe.References)
	}
}
