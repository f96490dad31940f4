package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/httpx"
)

// changelogCache keeps each downloaded CHANGELOG-<major.minor>.md for the
// duration of one run: one file serves every patch release of that minor.
// The fan-out may hit the same file concurrently, hence the mutex.
type changelogCache struct {
	mu     sync.Mutex
	docs   map[string]string
	client *resty.Client
}

func newChangelogCache() *changelogCache {
	return &changelogCache{
		docs:   make(map[string]string),
		client: httpx.NewClient(time.Second),
	}
}

func (c *changelogCache) get(ctx context.Context, majorMinor string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if doc, ok := c.docs[majorMinor]; ok {
		return doc, nil
	}
	url := fmt.Sprintf("https://raw.githubusercontent.com/kubernetes/kubernetes/master/CHANGELOG/CHANGELOG-%s.md", majorMinor)
	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("changelog %s: %w", majorMinor, err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("changelog %s: status %d", majorMinor, resp.StatusCode())
	}
	doc := string(resp.Body())
	c.docs[majorMinor] = doc
	return doc, nil
}

var majorMinorRE = regexp.MustCompile(`^v?(\d+\.\d+)`)

// versionNotes returns the cleaned release-note section for one tag,
// windowed out of the big per-minor changelog file.
func (c *changelogCache) versionNotes(ctx context.Context, tag string) (string, error) {
	m := majorMinorRE.FindStringSubmatch(tag)
	if m == nil {
		return "", fmt.Errorf("no version in tag %q", tag)
	}
	doc, err := c.get(ctx, m[1])
	if err != nil {
		return "", err
	}
	section := extractVersionSection(doc, tag)
	if section == "" {
		return "", fmt.Errorf("no section for %s", tag)
	}
	return cleanChangelogSection(filterChangesSection(section)), nil
}

// extractVersionSection windows the section for one version out of the
// whole changelog: from its own heading to the next version heading.
func extractVersionSection(doc, tag string) string {
	version := strings.TrimPrefix(tag, "v")
	start, bodyFrom := -1, 0
	for _, prefix := range []string{"# ", "## "} {
		re := regexp.MustCompile(`(?m)^` + prefix + `v` + regexp.QuoteMeta(version) + `\s*$`)
		if loc := re.FindStringIndex(doc); loc != nil {
			start, bodyFrom = loc[0], loc[1]
			break
		}
	}
	if start < 0 {
		return ""
	}
	rest := doc[bodyFrom:]
	if next := nextVersionHeadingRE.FindStringIndex(rest); next != nil {
		return doc[start : bodyFrom+next[0]]
	}
	return doc[start:]
}

var nextVersionHeadingRE = regexp.MustCompile(`(?m)^#{1,2} v\d+\.\d+`)

// Headings opening the binary-artifact blocks that must be dropped.
var changelogSkipHeaders = []string{
	"downloads for v",
	"source code",
	"client binaries",
	"server binaries",
	"node binaries",
	"container images",
}

// Headings that end a skipped block and reopen real content.
var changelogKeepHeaders = []string{
	"changelog since",
	"changes by kind",
	"urgent upgrade notes",
	"dependencies",
}

var changelogHeaderRE = regexp.MustCompile(`^#{1,4}\s+`)

// filterChangesSection strips the download tables and hash rows out of a
// version section, keeping the change lists.
func filterChangesSection(section string) string {
	var kept []string
	skipping := false
	for _, line := range strings.Split(section, "\n") {
		if changelogHeaderRE.MatchString(line) {
			header := strings.ToLower(strings.TrimSpace(changelogHeaderRE.ReplaceAllString(line, "")))
			switch {
			case containsAny(header, changelogSkipHeaders):
				skipping = true
				continue
			case containsAny(header, changelogKeepHeaders):
				skipping = false
			case skipping:
				continue
			}
		}
		if skipping {
			continue
		}
		if strings.Contains(line, "|") && isArtifactTableRow(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func isArtifactTableRow(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "sha512") ||
		strings.Contains(line, "----") ||
		strings.Contains(lower, "filename") ||
		strings.Contains(line, ".tar.gz") ||
		strings.Contains(line, "registry.k8s.io") ||
		strings.Contains(line, "console.cloud.google") ||
		strings.Contains(lower, "architectures")
}

var (
	clPRRefRE = regexp.MustCompile(`\(\[#(\d+)\]\([^)]+\),\s*\[@([\w-]+)\]\([^)]+\)\)\s*(\[SIG [^\]]+\])`)
)

// cleanChangelogSection rewrites markdown link noise into plain text while
// keeping the heading and bullet structure for the line-based translation
// path. PR references collapse to the (#nr, @author) [SIG ...] shape the
// protection pass recognizes.
func cleanChangelogSection(section string) string {
	text := section
	text = clPRRefRE.ReplaceAllString(text, "(#$1, @$2) $3")
	text = mdLinkRE.ReplaceAllString(text, "$1")
	text = mdBoldRE.ReplaceAllString(text, "$1")
	text = mdHTMLRE.ReplaceAllString(text, "")
	text = mdBlanksRE.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
