package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const sampleReleaseNotes = `<html><body>
<h1>Elasticsearch release notes</h1>
<h2>8.10.0</h2>
<p>Vector search improvements.</p>
<ul><li>Faster HNSW merges</li></ul>
<h2>8.1.0</h2>
<p>Aggregation bug fixes.</p>
<h2>8.0.1</h2>
<p>Startup crash fixed.</p>
</body></html>`

func newTestReleaseNotesCache(t *testing.T, product, html string) *releaseNotesCache {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	c := newReleaseNotesCache()
	c.pages[product] = doc
	return c
}

func TestNotesWindowsExactVersion(t *testing.T) {
	c := newTestReleaseNotesCache(t, "elasticsearch", sampleReleaseNotes)

	got, err := c.notes(context.Background(), "elasticsearch", "8.1.0")
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	if !strings.Contains(got, "Aggregation bug fixes") {
		t.Fatalf("section for 8.1.0 missing its content: %q", got)
	}
	if strings.Contains(got, "Vector search") || strings.Contains(got, "Startup crash") {
		t.Fatalf("section for 8.1.0 leaked neighboring versions: %q", got)
	}
}

func TestNotesVersionPrefixDoesNotMatchLongerVersion(t *testing.T) {
	c := newTestReleaseNotesCache(t, "elasticsearch", sampleReleaseNotes)

	// "8.1" is a prefix of the newer "8.10.0" heading; only the real
	// "8.1.0" heading may anchor the window.
	got, err := c.notes(context.Background(), "elasticsearch", "8.1")
	if err == nil && strings.Contains(got, "Vector search") {
		t.Fatalf("version 8.1 windowed into the 8.10.0 section: %q", got)
	}

	re := versionHeadingRE("8.1")
	if re.MatchString("8.10.0") {
		t.Fatalf("8.1 matched heading 8.10.0")
	}
	if !re.MatchString("Elasticsearch 8.1 released") {
		t.Fatalf("8.1 failed to match its own heading")
	}
}

func TestNotesUnknownVersionErrors(t *testing.T) {
	c := newTestReleaseNotesCache(t, "kibana", sampleReleaseNotes)
	if _, err := c.notes(context.Background(), "kibana", "9.9.9"); err == nil {
		t.Fatalf("expected error for a version without a heading")
	}
}
