package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/article"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/dateutil"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

// NewsExtractors builds the security-news source set.
func NewsExtractors(d Deps) *Registry {
	return NewRegistry(
		NewHackerNews(d),
		NewBleepingComputer(d),
		NewSecurityWeek(d),
		NewDarkReading(d),
		NewKrebs(d),
	)
}

// listing is one teaser row scraped off an index page, before the deep
// fetch fills in the full article.
type listing struct {
	title   string
	link    string
	dateStr string
	snippet string
}

// fillFromArticle deep-fetches the linked page for the real headline and
// body. Any failure keeps the listing snippet; the entry always ends up
// with a non-empty description.
func (d Deps) fillFromArticle(ctx context.Context, e *feed.Entry, snippet string) {
	title, body, err := d.Article.Fetch(ctx, e.Link)
	if err != nil {
		d.Log.Debugw("deep fetch failed, keeping snippet", "link", e.Link, "err", err)
		e.Description = article.Truncate(firstNonEmpty(snippet, e.Title), maxDescriptionLen)
		return
	}
	if len(title) > len(e.Title) {
		e.Title = title
	}
	e.Description = article.Truncate(firstNonEmpty(body, snippet, e.Title), maxDescriptionLen)
}

// HackerNews scrapes the thehackernews.com front page.
type HackerNews struct{ deps Deps }

func NewHackerNews(d Deps) *HackerNews { return &HackerNews{deps: d} }

func (h *HackerNews) Name() string { return "The Hacker News" }

func (h *HackerNews) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	var found []listing
	c := newCollector("thehackernews.com")
	c.OnHTML("div.body-post", func(el *colly.HTMLElement) {
		found = append(found, listing{
			title:   strings.TrimSpace(el.ChildText("h2.home-title")),
			link:    el.ChildAttr("a.story-link", "href"),
			dateStr: strings.TrimSpace(el.ChildText("span.h-datetime")),
			snippet: strings.TrimSpace(el.ChildText("div.home-desc")),
		})
	})
	if err := c.Visit("https://thehackernews.com/"); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}

	var entries []feed.Entry
	for _, it := range found {
		if it.title == "" || it.link == "" {
			continue
		}
		published := dateutil.Parse(it.dateStr, now)
		if published.Before(cutoff) {
			continue
		}
		e := feed.Entry{
			Title:       it.title,
			Link:        it.link,
			PublishedAt: published,
			Source:      h.Name(),
		}
		h.deps.fillFromArticle(ctx, &e, it.snippet)
		entries = append(entries, e)
	}
	h.deps.Log.Infow("fetched", "source", h.Name(), "count", len(entries))
	return entries, nil
}

// monthDateRE digs the publication date out of Bleeping Computer's author
// line, which runs the author name, date and comment count together.
var monthDateRE = regexp.MustCompile(`(January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}`)

// BleepingComputer scrapes the bleepingcomputer.com security listing.
type BleepingComputer struct{ deps Deps }

func NewBleepingComputer(d Deps) *BleepingComputer { return &BleepingComputer{deps: d} }

func (b *BleepingComputer) Name() string { return "Bleeping Computer" }

func (b *BleepingComputer) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	var found []listing
	c := newCollector("www.bleepingcomputer.com")
	c.OnHTML("div.bc_latest_news_text", func(el *colly.HTMLElement) {
		found = append(found, listing{
			title:   strings.TrimSpace(el.ChildText("h4 a")),
			link:    el.ChildAttr("h4 a", "href"),
			dateStr: monthDateRE.FindString(el.ChildText("ul")),
			snippet: strings.TrimSpace(el.ChildText("p")),
		})
	})
	if err := c.Visit("https://www.bleepingcomputer.com/news/security/"); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}

	var entries []feed.Entry
	for _, it := range found {
		if it.title == "" || it.link == "" {
			continue
		}
		// sponsored rows link off-site
		if !strings.Contains(it.link, "bleepingcomputer.com") {
			continue
		}
		published := dateutil.Parse(it.dateStr, now)
		if published.Before(cutoff) {
			continue
		}
		e := feed.Entry{
			Title:       it.title,
			Link:        it.link,
			PublishedAt: published,
			Source:      b.Name(),
		}
		b.deps.fillFromArticle(ctx, &e, it.snippet)
		entries = append(entries, e)
	}
	b.deps.Log.Infow("fetched", "source", b.Name(), "count", len(entries))
	return entries, nil
}

// SecurityWeek scrapes the securityweek.com front page.
type SecurityWeek struct{ deps Deps }

func NewSecurityWeek(d Deps) *SecurityWeek { return &SecurityWeek{deps: d} }

func (s *SecurityWeek) Name() string { return "SecurityWeek" }

func (s *SecurityWeek) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	var found []listing
	c := newCollector("www.securityweek.com")
	handle := func(el *colly.HTMLElement) {
		title := strings.TrimSpace(el.ChildText("h2.node-title a"))
		link := el.ChildAttr("h2.node-title a", "href")
		if title == "" {
			title = strings.TrimSpace(firstNonEmpty(el.ChildText("h3 a"), el.ChildText("h2 a")))
			link = firstNonEmpty(el.ChildAttr("h3 a", "href"), el.ChildAttr("h2 a", "href"))
		}
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://www.securityweek.com" + link
		}
		found = append(found, listing{
			title:   title,
			link:    link,
			dateStr: strings.TrimSpace(firstNonEmpty(el.ChildText("span.date-display-single"), el.ChildText("time"))),
			snippet: strings.TrimSpace(el.ChildText("p")),
		})
	}
	c.OnHTML("div.views-row", handle)
	c.OnHTML("article", handle)
	if err := c.Visit("https://www.securityweek.com/"); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}

	seen := make(map[string]bool)
	var entries []feed.Entry
	for _, it := range found {
		if it.title == "" || it.link == "" || seen[it.link] {
			continue
		}
		seen[it.link] = true
		published := dateutil.Parse(it.dateStr, now)
		if published.Before(cutoff) {
			continue
		}
		e := feed.Entry{
			Title:       it.title,
			Link:        it.link,
			PublishedAt: published,
			Source:      s.Name(),
		}
		s.deps.fillFromArticle(ctx, &e, it.snippet)
		entries = append(entries, e)
	}
	s.deps.Log.Infow("fetched", "source", s.Name(), "count", len(entries))
	return entries, nil
}

// DarkReading reads the darkreading.com RSS feed; the site itself answers
// scrapers with 403.
type DarkReading struct{ deps Deps }

func NewDarkReading(d Deps) *DarkReading { return &DarkReading{deps: d} }

func (r *DarkReading) Name() string { return "Dark Reading" }

func (r *DarkReading) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://www.darkreading.com/rss.xml", ctx)
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
		} else {
			published = dateutil.Parse(item.Published, now)
		}
		if published.Before(cutoff) {
			continue
		}
		e := feed.Entry{
			Title:       strings.TrimSpace(item.Title),
			Link:        item.Link,
			PublishedAt: published,
			Source:      r.Name(),
		}
		r.deps.fillFromArticle(ctx, &e, article.StripTags(item.Description))
		entries = append(entries, e)
	}
	r.deps.Log.Infow("fetched", "source", r.Name(), "count", len(entries))
	return entries, nil
}

// Krebs scrapes krebsonsecurity.com.
type Krebs struct{ deps Deps }

func NewKrebs(d Deps) *Krebs { return &Krebs{deps: d} }

func (k *Krebs) Name() string { return "Krebs on Security" }

func (k *Krebs) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	var found []listing
	c := newCollector("krebsonsecurity.com")
	c.OnHTML("article", func(el *colly.HTMLElement) {
		found = append(found, listing{
			title:   strings.TrimSpace(el.ChildText("h2.entry-title a")),
			link:    el.ChildAttr("h2.entry-title a", "href"),
			dateStr: strings.TrimSpace(firstNonEmpty(el.ChildText("span.date"), el.ChildText("time.entry-date"))),
			snippet: strings.TrimSpace(el.ChildText("div.entry-content p")),
		})
	})
	if err := c.Visit("https://krebsonsecurity.com/"); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}

	var entries []feed.Entry
	for _, it := range found {
		if it.title == "" || it.link == "" {
			continue
		}
		published := dateutil.Parse(it.dateStr, now)
		if published.Before(cutoff) {
			continue
		}
		e := feed.Entry{
			Title:       it.title,
			Link:        it.link,
			PublishedAt: published,
			Source:      k.Name(),
		}
		k.deps.fillFromArticle(ctx, &e, it.snippet)
		entries = append(entries, e)
	}
	k.deps.Log.Infow("fetched", "source", k.Name(), "count", len(entries))
	return entries, nil
}
