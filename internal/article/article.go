// Package article follows an entry's link to recover the real headline and
// full body when the listing page only carried a snippet.
package article

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/httpx"
)

// bodySelectors are tried in rank order; sites drift but usually keep one
// of these wrappers.
var bodySelectors = []string{
	"div.article-body", "div.post-body", "div.post-content",
	"div.entry-content", "div.blog-content", "div.content-body",
	"article", "main",
}

var boilerplateRE = regexp.MustCompile(`(?i)(share this|subscribe|sign up|related articles|read more|follow us|cookie)`)

// Fetcher pulls and cleans one linked page at a time.
type Fetcher struct {
	client *resty.Client
	log    *zap.SugaredLogger
}

func NewFetcher(log *zap.SugaredLogger) *Fetcher {
	return &Fetcher{
		client: httpx.NewClient(500 * time.Millisecond),
		log:    log,
	}
}

// Fetch returns the page's headline and body text. Readability extraction
// runs first; when it yields nothing usable the ranked selector walk over
// the raw document takes over. Both failing returns an error and the
// caller keeps its listing snippet.
func (f *Fetcher) Fetch(ctx context.Context, link string) (title, body string, err error) {
	resp, err := f.client.R().SetContext(ctx).Get(link)
	if err != nil {
		return "", "", fmt.Errorf("fetch %s: %w", link, err)
	}
	if resp.StatusCode() != 200 {
		return "", "", fmt.Errorf("fetch %s: status %d", link, resp.StatusCode())
	}
	html := string(resp.Body())

	if u, perr := url.Parse(link); perr == nil {
		if art, rerr := readability.FromReader(strings.NewReader(html), u); rerr == nil {
			body = strings.TrimSpace(art.TextContent)
			title = strings.TrimSpace(art.Title)
			if len(body) > 200 {
				return title, collapseWhitespace(body), nil
			}
		}
	}

	t, b, err := extractFromHTML(html)
	if err != nil {
		return "", "", fmt.Errorf("extract %s: %w", link, err)
	}
	if title == "" {
		title = t
	}
	return title, b, nil
}

// extractFromHTML is the selector-walk fallback shared with tests.
func extractFromHTML(html string) (title, body string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse: %w", err)
	}

	title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	if title == "" {
		title = doc.Find("h1").First().Text()
	}
	if title == "" {
		title = doc.Find("title").First().Text()
	}
	title = strings.TrimSpace(title)

	doc.Find("script, style, nav, footer, aside, form").Remove()

	for _, sel := range bodySelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		var parts []string
		node.Find("p").Each(func(_ int, p *goquery.Selection) {
			text := strings.TrimSpace(p.Text())
			if len(text) > 20 && !boilerplateRE.MatchString(text) {
				parts = append(parts, text)
			}
		})
		if len(parts) > 0 {
			return title, strings.Join(parts, "\n\n"), nil
		}
	}
	return title, "", fmt.Errorf("no readable body")
}

var (
	tagRE   = regexp.MustCompile(`<[^>]+>`)
	multiWS = regexp.MustCompile(`\s+`)
)

// StripTags flattens an embedded HTML fragment (feed descriptions,
// content:encoded payloads) into plain text.
func StripTags(fragment string) string {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment)); err == nil {
		return collapseWhitespace(doc.Text())
	}
	return collapseWhitespace(tagRE.ReplaceAllString(fragment, " "))
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(multiWS.ReplaceAllString(s, " "))
}

// Truncate clips s to at most n runes, cutting at a word boundary.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	clipped := string(runes[:n])
	if i := strings.LastIndex(clipped, " "); i > n/2 {
		clipped = clipped[:i]
	}
	return clipped + "…"
}
