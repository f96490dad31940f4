// Package extract holds one extractor per origin. Every extractor applies
// the recency window itself, keeps per-item failures to itself and answers
// the aggregator with whatever survived.
package extract

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/article"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/httpx"
)

const (
	maxDescriptionLen = 4000
	// Release-note sources carry full changelogs and get more room.
	maxReleaseNotesLen = 8000
)

// Deps are the collaborators shared by all extractors of one pipeline run.
type Deps struct {
	Log     *zap.SugaredLogger
	Article *article.Fetcher
}

func newFeedParser() *gofeed.Parser {
	p := gofeed.NewParser()
	p.UserAgent = httpx.BrowserUserAgent
	p.Client = &http.Client{Timeout: httpx.DefaultTimeout}
	return p
}

// newCollector scopes a colly collector to the given domains with the
// shared identity and a per-domain delay.
func newCollector(domains ...string) *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains(domains...),
		colly.UserAgent(httpx.BrowserUserAgent),
	)
	c.SetRequestTimeout(httpx.DefaultTimeout)
	_ = c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: 500 * time.Millisecond})
	return c
}

var versionRE = regexp.MustCompile(`v?\d+\.\d+(?:\.\d+)?`)

// extractVersion pulls the first version-looking token out of text.
func extractVersion(text string) string {
	return versionRE.FindString(text)
}

var (
	mdLinkRE    = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	mdBoldRE    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdItalicRE  = regexp.MustCompile(`\*([^*]+)\*`)
	mdUnderRE   = regexp.MustCompile(`__([^_]+)__`)
	mdEmRE      = regexp.MustCompile(`_([^_]+)_`)
	mdCodeRE    = regexp.MustCompile("`([^`]+)`")
	mdHeaderRE  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdHTMLRE    = regexp.MustCompile(`<[^>]+>`)
	mdHRRE      = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	mdBulletRE  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	mdBlanksRE  = regexp.MustCompile(`\n{3,}`)
)

// markdownToText flattens a GitHub release body into readable text.
func markdownToText(md string) string {
	if md == "" {
		return ""
	}
	text := md
	text = mdLinkRE.ReplaceAllString(text, "$1")
	text = mdBoldRE.ReplaceAllString(text, "$1")
	text = mdItalicRE.ReplaceAllString(text, "$1")
	text = mdUnderRE.ReplaceAllString(text, "$1")
	text = mdEmRE.ReplaceAllString(text, "$1")
	text = mdCodeRE.ReplaceAllString(text, "$1")
	text = mdHeaderRE.ReplaceAllString(text, "")
	text = mdHTMLRE.ReplaceAllString(text, "")
	text = mdHRRE.ReplaceAllString(text, "")
	text = mdBulletRE.ReplaceAllString(text, "- ")
	text = mdBlanksRE.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func containsAny(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, n) {
			return true
		}
	}
	return false
}

// Registry maps source names to extractors for one topic, in fetch order.
type Registry struct {
	names      []string
	extractors map[string]feed.Extractor
}

func NewRegistry(extractors ...feed.Extractor) *Registry {
	r := &Registry{extractors: make(map[string]feed.Extractor, len(extractors))}
	for _, e := range extractors {
		r.names = append(r.names, e.Name())
		r.extractors[e.Name()] = e
	}
	return r
}

// Names lists every registered source in order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Select returns the extractors for the requested names, keeping registry
// order; an empty selection means all of them. Unknown names are ignored.
func (r *Registry) Select(selected []string) []feed.Extractor {
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[s] = true
	}
	var out []feed.Extractor
	for _, name := range r.names {
		if len(selected) == 0 || want[name] {
			out = append(out, r.extractors[name])
		}
	}
	return out
}
