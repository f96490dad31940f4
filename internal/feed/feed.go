package feed

import (
	"context"
	"time"
)

// Topic names used for cache keys, cron jobs and API route groups.
const (
	TopicNews       = "news"
	TopicCVE        = "cve"
	TopicKubernetes = "kubernetes"
	TopicSRE        = "sre"
	TopicDevTools   = "devtools"
)

// Entry is the normalized record every extractor produces, regardless of
// whether the origin was an HTML page, an RSS/Atom feed or a JSON API.
// Link is the natural key: two entries with the same Link are the same item.
type Entry struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Source      string    `json:"source"`

	// Topic-specific fields, zero-valued when not applicable.
	CVEID      string   `json:"cve_id,omitempty"`
	CVSSScore  float64  `json:"cvss_score,omitempty"`
	Severity   string   `json:"severity,omitempty"`
	Version    string   `json:"version,omitempty"`
	Category   string   `json:"category,omitempty"`
	EntryType  string   `json:"entry_type,omitempty"`
	CWEIDs     []string `json:"cwe_ids,omitempty"`
	References []string `json:"references,omitempty"`
}

// ProcessedEntry is an Entry after translation and classification.
// When translation fails the Translated* fields carry the original text,
// never an empty string for a non-empty original.
type ProcessedEntry struct {
	Entry
	TranslatedTitle       string `json:"translated_title"`
	TranslatedDescription string `json:"translated_description"`
}

// Extractor turns one origin's payload into entries. Implementations never
// return a non-nil error for per-item problems; those items are skipped.
// An error means the whole origin produced nothing this run.
type Extractor interface {
	Name() string
	Fetch(ctx context.Context, days int) ([]Entry, error)
}

// Cutoff returns the oldest acceptable publication instant for a window of
// the given number of days ending at now.
func Cutoff(now time.Time, days int) time.Time {
	if days <= 0 {
		days = 7
	}
	return now.AddDate(0, 0, -days)
}
