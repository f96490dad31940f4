package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/gocolly/colly/v2"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/article"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/classify"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/dateutil"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/httpx"
)

// KubernetesExtractors builds the Kubernetes-ecosystem source set.
func KubernetesExtractors(d Deps) *Registry {
	return NewRegistry(
		NewK8sBlog(d),
		NewK8sReleases(d),
		NewCNCFBlog(d),
	)
}

// blogPathRE matches the dated blog paths the kubernetes.io sidebar links
// to; the date in the path is the publication date.
var blogPathRE = regexp.MustCompile(`^/blog/(\d{4})/(\d{2})/(\d{2})/`)

// K8sBlog scrapes the kubernetes.io blog sidebar navigation.
type K8sBlog struct{ deps Deps }

func NewK8sBlog(d Deps) *K8sBlog { return &K8sBlog{deps: d} }

func (k *K8sBlog) Name() string { return "K8s Blog" }

func (k *K8sBlog) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	type post struct {
		title string
		link  string
		date  time.Time
	}
	var posts []post
	seen := make(map[string]bool)

	c := newCollector("kubernetes.io")
	handleLink := func(el *colly.HTMLElement) {
		href := el.Attr("href")
		m := blogPathRE.FindStringSubmatch(href)
		if m == nil {
			return
		}
		link := "https://kubernetes.io" + href
		if seen[link] {
			return
		}
		title := strings.TrimSpace(el.ChildText("span"))
		if title == "" {
			title = strings.TrimSpace(el.Text)
		}
		if len(title) < 5 {
			return
		}
		seen[link] = true
		posts = append(posts, post{
			title: title,
			link:  link,
			date:  dateutil.Parse(fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), now),
		})
	}
	c.OnHTML("nav#td-section-nav a[href]", handleLink)
	c.OnHTML("a[href]", handleLink)
	if err := c.Visit("https://kubernetes.io/blog/"); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}

	var entries []feed.Entry
	for _, p := range posts {
		if p.date.Before(cutoff) {
			continue
		}
		e := feed.Entry{
			Title:       p.title,
			Link:        p.link,
			PublishedAt: p.date,
			Source:      k.Name(),
		}
		k.deps.fillFromArticle(ctx, &e, p.title)
		e.Category = classify.Category(e.Title, e.Description)
		e.Version = extractVersion(e.Title + " " + e.Description)
		entries = append(entries, e)
	}
	k.deps.Log.Infow("fetched", "source", k.Name(), "count", len(entries))
	return entries, nil
}

// K8sReleases pulls kubernetes/kubernetes GitHub releases and swaps each
// release's thin API body for the real windowed CHANGELOG section.
type K8sReleases struct {
	deps      Deps
	client    *resty.Client
	changelog *changelogCache
}

func NewK8sReleases(d Deps) *K8sReleases {
	return &K8sReleases{
		deps:      d,
		client:    httpx.NewAPIClient(time.Second),
		changelog: newChangelogCache(),
	}
}

func (k *K8sReleases) Name() string { return "GitHub Releases" }

func (k *K8sReleases) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	releases, err := githubReleases(ctx, k.client, "kubernetes/kubernetes", 30)
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

		body, err := k.changelog.versionNotes(ctx, rel.TagName)
		if err != nil || len(body) < 50 {
			if err != nil {
				k.deps.Log.Debugw("changelog section unavailable", "tag", rel.TagName, "err", err)
			}
			body = fmt.Sprintf("Kubernetes %s surumu yayinlandi. Detaylar icin CHANGELOG'a bakiniz.", name)
		}

		category := "release"
		if rel.Prerelease {
			category = "feature"
		}
		entries = append(entries, feed.Entry{
			Title:       fmt.Sprintf("Kubernetes %s Released", name),
			Description: article.Truncate(body, maxReleaseNotesLen),
			Link:        rel.HTMLURL,
			PublishedAt: published,
			Source:      k.Name(),
			Category:    category,
			Version:     rel.TagName,
			EntryType:   "release",
		})
	}
	k.deps.Log.Infow("fetched", "source", k.Name(), "count", len(entries))
	return entries, nil
}

var continueReadingRE = regexp.MustCompile(`(?i)\s*(Continue reading|Read more).*$`)

// CNCFBlog reads the CNCF WordPress REST API.
type CNCFBlog struct {
	deps   Deps
	client *resty.Client
}

func NewCNCFBlog(d Deps) *CNCFBlog {
	return &CNCFBlog{deps: d, client: httpx.NewAPIClient(time.Second)}
}

func (c *CNCFBlog) Name() string { return "CNCF Blog" }

type wpPost struct {
	Date  string `json:"date"`
	Link  string `json:"link"`
	Title struct {
		Rendered string `json:"rendered"`
	} `json:"title"`
	Excerpt struct {
		Rendered string `json:"rendered"`
	} `json:"excerpt"`
	Content struct {
		Rendered string `json:"rendered"`
	} `json:"content"`
}

func (c *CNCFBlog) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	var posts []wpPost
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"per_page": "30",
			"orderby":  "date",
			"order":    "desc",
			"_fields":  "id,date,title,excerpt,content,link",
		}).
		SetResult(&posts).
		Get("https://www.cncf.io/wp-json/wp/v2/posts")
	if err != nil {
		return nil, fmt.Errorf("cncf: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("cncf: status %d", resp.StatusCode())
	}

	var entries []feed.Entry
	for _, post := range posts {
		published := dateutil.Parse(post.Date, now)
		if published.Before(cutoff) {
			continue
		}
		title := article.StripTags(post.Title.Rendered)
		if len(title) < 5 || post.Link == "" {
			continue
		}
		desc := wpContentText(post.Content.Rendered)
		if desc == "" {
			desc = article.StripTags(post.Excerpt.Rendered)
		}
		desc = strings.TrimSpace(continueReadingRE.ReplaceAllString(desc, ""))
		if desc == "" {
			desc = title
		}
		entries = append(entries, feed.Entry{
			Title:       title,
			Description: article.Truncate(desc, maxDescriptionLen),
			Link:        post.Link,
			PublishedAt: published,
			Source:      c.Name(),
			Category:    classify.Category(title, desc),
			Version:     extractVersion(title + " " + desc),
		})
	}
	c.deps.Log.Infow("fetched", "source", c.Name(), "count", len(entries))
	return entries, nil
}

// wpContentText keeps the substantial paragraphs of a rendered WordPress
// content payload.
func wpContentText(rendered string) string {
	if rendered == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rendered))
	if err != nil {
		return ""
	}
	doc.Find("script, style, iframe, form").Remove()
	var parts []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); len(text) > 20 {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}
