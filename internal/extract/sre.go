package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/article"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/dateutil"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

// SREExtractors builds the reliability-engineering source set.
func SREExtractors(d Deps) *Registry {
	return NewRegistry(
		NewSREWeekly(d),
		NewInfoQSRE(d),
		NewPagerDutyEng(d),
		NewGoogleCloudSRE(d),
		NewDZoneDevOps(d),
	)
}

// SREWeekly unpacks the weekly digest feed: each feed item is one issue
// whose content:encoded HTML holds the individual articles.
type SREWeekly struct{ deps Deps }

func NewSREWeekly(d Deps) *SREWeekly { return &SREWeekly{deps: d} }

func (s *SREWeekly) Name() string { return "SRE Weekly" }

func (s *SREWeekly) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://sreweekly.com/feed/", ctx)
	if err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}

	var entries []feed.Entry
	for _, issue := range parsed.Items {
		issueDate := now
		if issue.PublishedParsed != nil {
			issueDate = *issue.PublishedParsed
		}
		if issueDate.Before(cutoff) {
			continue
		}
		if issue.Content == "" {
			continue
		}
		items, err := parseSREWeeklyIssue(issue.Content, issueDate, s.Name())
		if err != nil {
			s.deps.Log.Debugw("issue parse failed", "issue", issue.Link, "err", err)
			continue
		}
		entries = append(entries, items...)
	}
	s.deps.Log.Infow("fetched", "source", s.Name(), "count", len(entries))
	return entries, nil
}

// parseSREWeeklyIssue pulls the individual articles out of one issue's
// embedded HTML. Sponsor blocks and email-only teasers are skipped.
func parseSREWeeklyIssue(content string, issueDate time.Time, source string) ([]feed.Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse issue: %w", err)
	}
	var entries []feed.Entry
	doc.Find("div.sreweekly-entry").Each(func(_ int, entry *goquery.Selection) {
		if entry.Find(".sreweekly-sponsor-message").Length() > 0 {
			return
		}
		if entry.HasClass("email_only") {
			return
		}
		titleLink := entry.Find("div.sreweekly-title a").First()
		title := strings.TrimSpace(titleLink.Text())
		link, _ := titleLink.Attr("href")
		if title == "" || link == "" {
			return
		}
		desc := entry.Find("div.sreweekly-description").First()
		desc.Find("small").Remove()
		description := strings.TrimSpace(desc.Text())
		if description == "" {
			description = title
		}
		entries = append(entries, feed.Entry{
			Title:       title,
			Description: article.Truncate(description, maxDescriptionLen),
			Link:        link,
			PublishedAt: issueDate,
			Source:      source,
		})
	})
	return entries, nil
}

// InfoQSRE scrapes the infoq.com SRE news cards.
type InfoQSRE struct{ deps Deps }

func NewInfoQSRE(d Deps) *InfoQSRE { return &InfoQSRE{deps: d} }

func (i *InfoQSRE) Name() string { return "InfoQ SRE" }

func (i *InfoQSRE) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	var entries []feed.Entry
	c := newCollector("www.infoq.com")
	c.OnHTML("li[data-id][data-path]", func(el *colly.HTMLElement) {
		title := strings.TrimSpace(el.ChildText("h3.card__title a"))
		href := el.ChildAttr("h3.card__title a", "href")
		if title == "" || href == "" {
			return
		}
		link := href
		if strings.HasPrefix(href, "/") {
			link = "https://www.infoq.com" + href
		}
		published := dateutil.Parse(strings.TrimSpace(el.ChildText("span.card__date span")), now)
		if published.Before(cutoff) {
			return
		}
		entries = append(entries, feed.Entry{
			Title:       title,
			Description: article.Truncate(firstNonEmpty(strings.TrimSpace(el.ChildText("p.card__excerpt")), title), maxDescriptionLen),
			Link:        link,
			PublishedAt: published,
			Source:      i.Name(),
		})
	})
	if err := c.Visit("https://www.infoq.com/sre/news/"); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}
	i.deps.Log.Infow("fetched", "source", i.Name(), "count", len(entries))
	return entries, nil
}

var byAuthorRE = regexp.MustCompile(`\s+by\s+[\w\s]+$`)

// PagerDutyEng reads the PagerDuty engineering blog feed.
type PagerDutyEng struct{ deps Deps }

func NewPagerDutyEng(d Deps) *PagerDutyEng { return &PagerDutyEng{deps: d} }

func (p *PagerDutyEng) Name() string { return "PagerDuty Eng" }

func (p *PagerDutyEng) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://www.pagerduty.com/eng/feed/", ctx)
	if err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}

	var entries []feed.Entry
	for _, item := range parsed.Items {
		// feed titles end in "by Author"
		title := strings.TrimSpace(byAuthorRE.ReplaceAllString(item.Title, ""))
		if title == "" || item.Link == "" {
			continue
		}
		published := now
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}
		if published.Before(cutoff) {
			continue
		}
		description := article.StripTags(firstNonEmpty(item.Description, item.Content))
		entries = append(entries, feed.Entry{
			Title:       title,
			Description: article.Truncate(firstNonEmpty(description, title), maxDescriptionLen),
			Link:        item.Link,
			PublishedAt: published,
			Source:      p.Name(),
		})
	}
	p.deps.Log.Infow("fetched", "source", p.Name(), "count", len(entries))
	return entries, nil
}

// sreKeywords narrow the broad Google Cloud feed down to reliability
// topics.
var sreKeywords = []string{
	"sre", "site reliability", "incident response", "incident management",
	"postmortem", "post-mortem", "on-call", "oncall",
	"observability", "slo", "sla", "sli",
	"error budget", "toil", "devops", "outage",
	"chaos engineering", "load balancing", "auto-scaling", "autoscaling",
	"reliability engineering", "service mesh",
}

// GoogleCloudSRE reads the Google Cloud blog feed filtered to SRE topics.
type GoogleCloudSRE struct{ deps Deps }

func NewGoogleCloudSRE(d Deps) *GoogleCloudSRE { return &GoogleCloudSRE{deps: d} }

func (g *GoogleCloudSRE) Name() string { return "Google Cloud SRE" }

func (g *GoogleCloudSRE) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://cloudblog.withgoogle.com/rss/", ctx)
	if err != nil {
		return nil, fmt.Errorf("rss: %w", err)
	}

	var entries []feed.Entry
	for _, item := range parsed.Items {
		if item.Title == "" {
			continue
		}
		description := article.StripTags(item.Description)
		haystack := item.Title + " " + description + " " + strings.Join(item.Categories, " ")
		if !containsAny(haystack, sreKeywords) {
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
			Source:      g.Name(),
		})
	}
	g.deps.Log.Infow("fetched", "source", g.Name(), "count", len(entries))
	return entries, nil
}

// DZoneDevOps reads the DZone DevOps zone feed.
type DZoneDevOps struct{ deps Deps }

func NewDZoneDevOps(d Deps) *DZoneDevOps { return &DZoneDevOps{deps: d} }

func (z *DZoneDevOps) Name() string { return "DZone DevOps" }

func (z *DZoneDevOps) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	parsed, err := newFeedParser().ParseURLWithContext("https://feeds.dzone.com/devops", ctx)
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
		description := firstNonEmpty(article.StripTags(item.Description), item.Title)
		entries = append(entries, feed.Entry{
			Title:       strings.TrimSpace(item.Title),
			Description: article.Truncate(description, maxDescriptionLen),
			Link:        item.Link,
			PublishedAt: published,
			Source:      z.Name(),
		})
	}
	z.deps.Log.Infow("fetched", "source", z.Name(), "count", len(entries))
	return entries, nil
}
