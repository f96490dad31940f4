package article

import (
	"strings"
	"testing"
)

const samplePage = `<html><head>
<title>Fallback Title | Site</title>
<meta property="og:title" content="Real Headline">
</head><body>
<nav><p>navigation links that are long enough to look like text</p></nav>
<div class="article-body">
<p>short</p>
<p>This is the first real paragraph with enough substance to keep.</p>
<p>Share this article with your friends on all the networks!</p>
<p>This is the second real paragraph, also long enough to keep.</p>
</div>
<footer><p>footer boilerplate that should never appear in the body text</p></footer>
</body></html>`

func TestExtractFromHTML(t *testing.T) {
	title, body, err := extractFromHTML(samplePage)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if title != "Real Headline" {
		t.Fatalf("title = %q, want og:title value", title)
	}
	if !strings.Contains(body, "first real paragraph") || !strings.Contains(body, "second real paragraph") {
		t.Fatalf("body missing paragraphs: %q", body)
	}
	if strings.Contains(body, "short") {
		t.Fatalf("short paragraph must be filtered: %q", body)
	}
	if strings.Contains(body, "Share this") {
		t.Fatalf("boilerplate must be filtered: %q", body)
	}
	if strings.Contains(body, "navigation") || strings.Contains(body, "footer") {
		t.Fatalf("nav/footer must be removed: %q", body)
	}
}

func TestExtractFromHTMLNoBody(t *testing.T) {
	if _, _, err := extractFromHTML("<html><body><div>nothing here</div></body></html>"); err == nil {
		t.Fatal("want error when no readable body exists")
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags(`<p>Hello <b>world</b>,</p>  <p>again.</p>`)
	if got != "Hello world, again." {
		t.Fatalf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short text", 50); got != "short text" {
		t.Fatalf("short input must pass through, got %q", got)
	}
	got := Truncate("one two three four five six seven eight nine ten", 20)
	if len([]rune(got)) > 21 {
		t.Fatalf("too long: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("want ellipsis, got %q", got)
	}
}
