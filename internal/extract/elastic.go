package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/article"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/dateutil"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/httpx"
)

// releaseNotesCache holds the fetched elastic.co release-notes pages so
// one download serves every release of the same product.
type releaseNotesCache struct {
	mu     sync.Mutex
	pages  map[string]*goquery.Document
	client *resty.Client
}

func newReleaseNotesCache() *releaseNotesCache {
	return &releaseNotesCache{
		pages:  make(map[string]*goquery.Document),
		client: httpx.NewClient(500 * time.Millisecond),
	}
}

func (c *releaseNotesCache) page(ctx context.Context, product string) (*goquery.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if doc, ok := c.pages[product]; ok {
		return doc, nil
	}
	url := "https://www.elastic.co/docs/release-notes/" + product
	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("release notes %s: %w", product, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("release notes %s: status %d", product, resp.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("release notes %s: %w", product, err)
	}
	c.pages[product] = doc
	return doc, nil
}

var releaseHeadingRE = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// versionHeadingRE matches the version only as a whole token, so "8.1"
// never windows into an "8.10.x" heading.
func versionHeadingRE(version string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\d.])` + regexp.QuoteMeta(version) + `(?:[^\d.]|$)`)
}

// notes extracts the section under the h2 heading naming the version,
// up to the next version heading.
func (c *releaseNotesCache) notes(ctx context.Context, product, version string) (string, error) {
	doc, err := c.page(ctx, product)
	if err != nil {
		return "", err
	}
	headingRE := versionHeadingRE(version)
	var section []string
	doc.Find("h2").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if !headingRE.MatchString(h.Text()) {
			return true
		}
		for sib := h.Next(); sib.Length() > 0; sib = sib.Next() {
			if goquery.NodeName(sib) == "h2" && releaseHeadingRE.MatchString(sib.Text()) {
				break
			}
			if text := strings.TrimSpace(sib.Text()); text != "" {
				section = append(section, text)
			}
		}
		return false
	})
	if len(section) == 0 {
		return "", fmt.Errorf("release notes %s: no section for %s", product, version)
	}
	return strings.Join(section, "\n\n"), nil
}

// ElasticReleases publishes Elasticsearch and Kibana releases. The two
// projects tag in lockstep, so Kibana tags already seen on the
// Elasticsearch side are skipped.
type ElasticReleases struct {
	deps   Deps
	client *resty.Client
	notes  *releaseNotesCache
}

func NewElasticReleases(d Deps) *ElasticReleases {
	return &ElasticReleases{
		deps:   d,
		client: httpx.NewAPIClient(time.Second),
		notes:  newReleaseNotesCache(),
	}
}

func (e *ElasticReleases) Name() string { return "Elastic" }

func (e *ElasticReleases) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	var entries []feed.Entry
	seen := make(map[string]bool)
	for _, repo := range []struct {
		slug    string
		product string
		label   string
	}{
		{"elastic/elasticsearch", "elasticsearch", "Elasticsearch"},
		{"elastic/kibana", "kibana", "Kibana"},
	} {
		releases, err := githubReleases(ctx, e.client, repo.slug, 10)
		if err != nil {
			e.deps.Log.Warnw("releases unavailable", "repo", repo.slug, "err", err)
			continue
		}
		for _, rel := range releases {
			if rel.Prerelease {
				continue
			}
			if seen[rel.TagName] {
				continue
			}
			published := dateutil.Parse(rel.PublishedAt, now)
			if published.Before(cutoff) {
				continue
			}
			seen[rel.TagName] = true
			version := strings.TrimPrefix(rel.TagName, "v")
			description, err := e.notes.notes(ctx, repo.product, version)
			if err != nil {
				e.deps.Log.Debugw("release notes fallback", "tag", rel.TagName, "err", err)
				description = markdownToText(rel.Body)
			}
			if description == "" {
				description = fmt.Sprintf("%s %s yayinlandi.", repo.label, version)
			}
			entries = append(entries, feed.Entry{
				Title:       repo.label + " " + version,
				Description: article.Truncate(description, maxReleaseNotesLen),
				Link:        rel.HTMLURL,
				PublishedAt: published,
				Source:      e.Name(),
				Version:     version,
				Category:    "release",
				EntryType:   "release",
			})
		}
	}
	e.deps.Log.Infow("fetched", "source", e.Name(), "count", len(entries))
	return entries, nil
}
