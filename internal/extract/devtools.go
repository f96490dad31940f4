package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/article"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/dateutil"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/httpx"
)

// DevToolsExtractors builds the infrastructure-tooling source set.
func DevToolsExtractors(d Deps) *Registry {
	return NewRegistry(
		NewMinIOReleases(d),
		NewCephReleases(d),
		NewMongoDBBlog(d),
		NewPostgreSQLNews(d),
		NewRabbitMQReleases(d),
		NewElasticReleases(d),
		NewRedisBlog(d),
	)
}

// MinIOReleases reads the MinIO server release list from GitHub.
type MinIOReleases struct {
	deps   Deps
	client *resty.Client
}

func NewMinIOReleases(d Deps) *MinIOReleases {
	return &MinIOReleases{deps: d, client: httpx.NewAPIClient(time.Second)}
}

func (m *MinIOReleases) Name() string { return "MinIO" }

func (m *MinIOReleases) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	releases, err := githubReleases(ctx, m.client, "minio/minio", 15)
	if err != nil {
		return nil, err
	}

	var entries []feed.Entry
	for _, rel := range releases {
		published := dateutil.Parse(rel.PublishedAt, now)
		if published.Before(cutoff) {
			continue
		}
		name := firstNonEmpty(rel.Name, rel.TagName)
		body := markdownToText(rel.Body)
		entries = append(entries, feed.Entry{
			Title:       "MinIO " + name,
			Description: article.Truncate(firstNonEmpty(body, "MinIO "+name+" yayinlandi."), maxReleaseNotesLen),
			Link:        rel.HTMLURL,
			PublishedAt: published,
			Source:      m.Name(),
			Version:     rel.TagName,
			Category:    "release",
			EntryType:   "release",
		})
	}
	m.deps.Log.Infow("fetched", "source", m.Name(), "count", len(entries))
	return entries, nil
}

// CephReleases reads the Ceph release tags from the GitHub atom feed.
type CephReleases struct{ deps Deps }

func NewCephReleases(d Deps) *CephReleases { return &CephReleases{deps: d} }

func (c *CephReleases) Name() string { return "Ceph" }

func (c *CephReleases) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://github.com/ceph/ceph/releases.atom", ctx)
	if err != nil {
		return nil, fmt.Errorf("atom: %w", err)
	}

	var entries []feed.Entry
	for _, item := range parsed.Items {
		version := strings.TrimSpace(item.Title)
		if version == "" || item.Link == "" {
			continue
		}
		published := now
		if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		} else if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		if published.Before(cutoff) {
			continue
		}
		description := firstNonEmpty(article.StripTags(item.Content), "Ceph "+version+" yayinlandi.")
		entries = append(entries, feed.Entry{
			Title:       "Ceph " + version,
			Description: article.Truncate(description, maxReleaseNotesLen),
			Link:        item.Link,
			PublishedAt: published,
			Source:      c.Name(),
			Version:     version,
			Category:    "release",
			EntryType:   "release",
		})
	}
	c.deps.Log.Infow("fetched", "source", c.Name(), "count", len(entries))
	return entries, nil
}

// mongoKeywords keep the broad company blog down to engineering-relevant
// posts.
var mongoKeywords = []string{
	"mongodb", "atlas", "database", "release", "ga", "general availability",
	"performance", "security", "aggregation", "sharding", "replica",
	"index", "query", "driver", "time series", "vector search",
}

// MongoDBBlog reads the MongoDB company blog feed.
type MongoDBBlog struct{ deps Deps }

func NewMongoDBBlog(d Deps) *MongoDBBlog { return &MongoDBBlog{deps: d} }

func (m *MongoDBBlog) Name() string { return "MongoDB" }

func (m *MongoDBBlog) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://www.mongodb.com/blog/rss", ctx)
	if err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}

	var entries []feed.Entry
	for _, item := range parsed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		description := article.StripTags(firstNonEmpty(item.Description, item.Content))
		if !containsAny(item.Title+" "+description, mongoKeywords) {
			continue
		}
		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		if published.Before(cutoff) {
			continue
		}
		entries = append(entries, feed.Entry{
			Title:       strings.TrimSpace(item.Title),
			Description: article.Truncate(firstNonEmpty(description, item.Title), maxDescriptionLen),
			Link:        item.Link,
			PublishedAt: published,
			Source:      m.Name(),
			Version:     extractVersion(item.Title),
			Category:    "blog",
			EntryType:   "blog",
		})
	}
	m.deps.Log.Infow("fetched", "source", m.Name(), "count", len(entries))
	return entries, nil
}

// PostgreSQLNews reads the project news feed. Release announcements are
// tagged as releases, everything else stays news.
type PostgreSQLNews struct{ deps Deps }

func NewPostgreSQLNews(d Deps) *PostgreSQLNews { return &PostgreSQLNews{deps: d} }

func (p *PostgreSQLNews) Name() string { return "PostgreSQL" }

func (p *PostgreSQLNews) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://www.postgresql.org/news.rss", ctx)
	if err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}

	var entries []feed.Entry
	for _, item := range parsed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		if published.Before(cutoff) {
			continue
		}
		entryType := "news"
		category := "blog"
		if strings.Contains(strings.ToLower(item.Title), "released") {
			entryType = "release"
			category = "release"
		}
		description := firstNonEmpty(article.StripTags(item.Description), item.Title)
		entries = append(entries, feed.Entry{
			Title:       strings.TrimSpace(item.Title),
			Description: article.Truncate(description, maxDescriptionLen),
			Link:        item.Link,
			PublishedAt: published,
			Source:      p.Name(),
			Version:     extractVersion(item.Title),
			Category:    category,
			EntryType:   entryType,
		})
	}
	p.deps.Log.Infow("fetched", "source", p.Name(), "count", len(entries))
	return entries, nil
}

// RabbitMQReleases reads the broker release list from GitHub. Release
// candidates and betas are skipped.
type RabbitMQReleases struct {
	deps   Deps
	client *resty.Client
}

func NewRabbitMQReleases(d Deps) *RabbitMQReleases {
	return &RabbitMQReleases{deps: d, client: httpx.NewAPIClient(time.Second)}
}

func (r *RabbitMQReleases) Name() string { return "RabbitMQ" }

func (r *RabbitMQReleases) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	releases, err := githubReleases(ctx, r.client, "rabbitmq/rabbitmq-server", 15)
	if err != nil {
		return nil, err
	}

	var entries []feed.Entry
	for _, rel := range releases {
		if rel.Prerelease {
			continue
		}
		published := dateutil.Parse(rel.PublishedAt, now)
		if published.Before(cutoff) {
			continue
		}
		title := firstNonEmpty(rel.Name, rel.TagName)
		if !strings.Contains(strings.ToLower(title), "rabbitmq") {
			title = "RabbitMQ " + title
		}
		body := markdownToText(rel.Body)
		entries = append(entries, feed.Entry{
			Title:       title,
			Description: article.Truncate(firstNonEmpty(body, title+" yayinlandi."), maxReleaseNotesLen),
			Link:        rel.HTMLURL,
			PublishedAt: published,
			Source:      r.Name(),
			Version:     rel.TagName,
			Category:    "release",
			EntryType:   "release",
		})
	}
	r.deps.Log.Infow("fetched", "source", r.Name(), "count", len(entries))
	return entries, nil
}

// redisKeywords keep the marketing-heavy blog down to engineering posts.
var redisKeywords = []string{
	"redis", "release", "performance", "persistence", "cluster",
	"replication", "cache", "caching", "vector", "search", "json",
	"streams", "pub/sub", "memory", "latency", "security",
}

var redisVersionRE = regexp.MustCompile(`Redis\s+(\d+\.\d+(?:\.\d+)?)`)

// menuLineRE drops single-word navigation leftovers from scraped pages.
var menuLineRE = regexp.MustCompile(`^\s*\S{1,24}\s*$`)

// RedisBlog reads the Redis blog feed and deep-fetches the post body.
type RedisBlog struct {
	deps   Deps
	client *resty.Client
}

func NewRedisBlog(d Deps) *RedisBlog {
	return &RedisBlog{deps: d, client: httpx.NewClient(500 * time.Millisecond)}
}

func (r *RedisBlog) Name() string { return "Redis" }

func (r *RedisBlog) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://redis.io/blog/feed/", ctx)
	if err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}

	var entries []feed.Entry
	for _, item := range parsed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}
		description := article.StripTags(firstNonEmpty(item.Description, item.Content))
		if !containsAny(item.Title+" "+description, redisKeywords) {
			continue
		}
		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		if published.Before(cutoff) {
			continue
		}
		if body := r.fetchBody(ctx, item.Link); body != "" {
			description = body
		}
		version := ""
		if m := redisVersionRE.FindStringSubmatch(item.Title); m != nil {
			version = m[1]
		}
		entryType := "blog"
		category := "blog"
		lower := strings.ToLower(item.Title)
		if strings.Contains(lower, "announcing") || strings.Contains(lower, "release") {
			entryType = "release"
			category = "release"
		}
		entries = append(entries, feed.Entry{
			Title:       strings.TrimSpace(item.Title),
			Description: article.Truncate(firstNonEmpty(description, item.Title), maxReleaseNotesLen),
			Link:        item.Link,
			PublishedAt: published,
			Source:      r.Name(),
			Version:     version,
			Category:    category,
			EntryType:   entryType,
		})
	}
	r.deps.Log.Infow("fetched", "source", r.Name(), "count", len(entries))
	return entries, nil
}

// fetchBody pulls the rendered post content. The blog wraps the article
// in a blockContent container; older posts fall back to article/main.
func (r *RedisBlog) fetchBody(ctx context.Context, link string) string {
	resp, err := r.client.R().SetContext(ctx).Get(link)
	if err != nil || resp.StatusCode() != 200 {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return ""
	}
	for _, sel := range []string{`[class*="blockContent"]`, "article", "main"} {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		var lines []string
		for _, line := range strings.Split(node.Text(), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || menuLineRE.MatchString(line) {
				continue
			}
			lines = append(lines, line)
		}
		if text := strings.Join(lines, "\n"); len(text) > 200 {
			return text
		}
	}
	return ""
}
