package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/article"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/classify"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/dateutil"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/httpx"
)

// CVEExtractors builds the vulnerability source set.
func CVEExtractors(d Deps) *Registry {
	return NewRegistry(
		NewNVD(d),
		NewGitHubAdvisory(d),
		NewCIRCL(d),
	)
}

const (
	// Descriptions shorter than this carry no analysis worth translating.
	// CIRCL shares the NVD floor; GitHub advisories always have a summary
	// so their floor is lower.
	minCVEDescLen      = 20
	minAdvisoryDescLen = 10

	maxCVEReferences = 5
)

// rejectedPhrases mark placeholder records NVD has withdrawn or parked.
var rejectedPhrases = []string{
	"rejected reason", "** reserved **", "** reject **",
	"this cve id has been rejected", "not used",
	"this candidate has been reserved",
}

var severityFromNVD = map[string]string{
	"CRITICAL": classify.SeverityCritical,
	"HIGH":     classify.SeverityHigh,
	"MEDIUM":   classify.SeverityMedium,
	"LOW":      classify.SeverityLow,
}

// NVD pulls from the NVD 2.0 REST API over a published-date window.
type NVD struct {
	deps   Deps
	client *resty.Client
}

func NewNVD(d Deps) *NVD {
	return &NVD{deps: d, client: httpx.NewAPIClient(time.Second)}
}

func (n *NVD) Name() string { return "NVD" }

type nvdResponse struct {
	Vulnerabilities []struct {
		CVE struct {
			ID           string `json:"id"`
			VulnStatus   string `json:"vulnStatus"`
			Published    string `json:"published"`
			Descriptions []struct {
				Lang  string `json:"lang"`
				Value string `json:"value"`
			} `json:"descriptions"`
			Metrics struct {
				V31 []nvdMetric `json:"cvssMetricV31"`
				V30 []nvdMetric `json:"cvssMetricV30"`
				V2  []nvdMetric `json:"cvssMetricV2"`
			} `json:"metrics"`
			References []struct {
				URL string `json:"url"`
			} `json:"references"`
			Weaknesses []struct {
				Description []struct {
					Value string `json:"value"`
				} `json:"description"`
			} `json:"weaknesses"`
		} `json:"cve"`
	} `json:"vulnerabilities"`
}

type nvdMetric struct {
	CVSSData struct {
		BaseScore    *float64 `json:"baseScore"`
		BaseSeverity string   `json:"baseSeverity"`
	} `json:"cvssData"`
}

func (n *NVD) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	start := feed.Cutoff(now, days)

	var payload nvdResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"pubStartDate":   start.Format("2006-01-02T00:00:00.000"),
			"pubEndDate":     now.Format("2006-01-02T23:59:59.999"),
			"resultsPerPage": "100",
		}).
		SetResult(&payload).
		Get("https://services.nvd.nist.gov/rest/json/cves/2.0")
	if err != nil {
		return nil, fmt.Errorf("nvd: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("nvd: status %d", resp.StatusCode())
	}

	var entries []feed.Entry
	skipped := 0
	for _, item := range payload.Vulnerabilities {
		cve := item.CVE
		if cve.ID == "" {
			continue
		}
		if cve.VulnStatus == "Rejected" || cve.VulnStatus == "Reserved" {
			skipped++
			continue
		}

		description := ""
		for _, d := range cve.Descriptions {
			if d.Lang == "en" {
				description = d.Value
				break
			}
		}
		if description == "" && len(cve.Descriptions) > 0 {
			description = cve.Descriptions[0].Value
		}
		if containsAny(description, rejectedPhrases) {
			skipped++
			continue
		}
		if len(strings.TrimSpace(description)) < minCVEDescLen {
			skipped++
			continue
		}

		score, severity, ok := nvdScore(cve.Metrics.V31, cve.Metrics.V30, cve.Metrics.V2)
		if !ok {
			// not yet analyzed
			skipped++
			continue
		}

		var refs []string
		for _, r := range cve.References {
			if r.URL != "" && len(refs) < maxCVEReferences {
				refs = append(refs, r.URL)
			}
		}
		var cwes []string
		for _, w := range cve.Weaknesses {
			for _, d := range w.Description {
				if strings.HasPrefix(d.Value, "CWE-") {
					cwes = append(cwes, d.Value)
				}
			}
		}

		entries = append(entries, feed.Entry{
			Title:       fmt.Sprintf("%s - Güvenlik Açığı", cve.ID),
			Description: article.Truncate(description, maxDescriptionLen),
			Link:        "https://nvd.nist.gov/vuln/detail/" + cve.ID,
			PublishedAt: dateutil.Parse(cve.Published, now),
			Source:      n.Name(),
			CVEID:       cve.ID,
			CVSSScore:   score,
			Severity:    severity,
			CWEIDs:      cwes,
			References:  refs,
		})
	}
	n.deps.Log.Infow("fetched", "source", n.Name(), "count", len(entries), "skipped", skipped)
	return entries, nil
}

// nvdScore applies the schema precedence: v3.1 beats v3.0 beats v2. The
// label comes from the record when present, the shared breakpoints when
// not.
func nvdScore(v31, v30, v2 []nvdMetric) (float64, string, bool) {
	pick := func(ms []nvdMetric) (*float64, string) {
		if len(ms) == 0 {
			return nil, ""
		}
		return ms[0].CVSSData.BaseScore, ms[0].CVSSData.BaseSeverity
	}
	s31, l31 := pick(v31)
	s30, l30 := pick(v30)
	s2, _ := pick(v2)

	score, ok := classify.PickCVSS(s31, s30, s2)
	if !ok {
		return 0, "", false
	}
	label := l31
	if s31 == nil {
		label = l30
	}
	if s31 == nil && s30 == nil {
		label = ""
	}
	if tr, known := severityFromNVD[label]; known {
		return score, tr, true
	}
	return score, classify.Severity(score), true
}

// advisorySeverity maps GitHub's label to the Turkish label plus a
// synthetic score used when the advisory carries no CVSS number.
var advisorySeverity = map[string]struct {
	label string
	score float64
}{
	"critical": {classify.SeverityCritical, 9.5},
	"high":     {classify.SeverityHigh, 7.5},
	"medium":   {classify.SeverityMedium, 5.5},
	"low":      {classify.SeverityLow, 2.5},
}

// GitHubAdvisory pulls reviewed advisories from the GitHub Advisory
// Database.
type GitHubAdvisory struct {
	deps   Deps
	client *resty.Client
}

func NewGitHubAdvisory(d Deps) *GitHubAdvisory {
	return &GitHubAdvisory{deps: d, client: httpx.NewAPIClient(time.Second)}
}

func (g *GitHubAdvisory) Name() string { return "GitHub Advisory" }

type ghAdvisory struct {
	CVEID          string `json:"cve_id"`
	Summary        string `json:"summary"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	HTMLURL        string `json:"html_url"`
	PublishedAt    string `json:"published_at"`
	CVSSSeverities struct {
		V3 struct {
			Score float64 `json:"score"`
		} `json:"cvss_v3"`
		V4 struct {
			Score float64 `json:"score"`
		} `json:"cvss_v4"`
	} `json:"cvss_severities"`
	CWEs []struct {
		CWEID string `json:"cwe_id"`
	} `json:"cwes"`
	References []string `json:"references"`
}

func (g *GitHubAdvisory) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	since := feed.Cutoff(now, days)

	var advisories []ghAdvisory
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"per_page":  "50",
			"type":      "reviewed",
			"sort":      "published",
			"direction": "desc",
			"published": ">=" + since.Format("2006-01-02"),
		}).
		SetResult(&advisories).
		Get("https://api.github.com/advisories")
	if err != nil {
		return nil, fmt.Errorf("github advisories: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("github advisories: status %d", resp.StatusCode())
	}

	var entries []feed.Entry
	for _, adv := range advisories {
		if !strings.HasPrefix(adv.CVEID, "CVE-") {
			continue
		}
		description := firstNonEmpty(adv.Description, adv.Summary)
		if len(strings.TrimSpace(description)) < minAdvisoryDescLen {
			continue
		}

		sev, known := advisorySeverity[strings.ToLower(adv.Severity)]
		score := adv.CVSSSeverities.V3.Score
		if score == 0 {
			score = adv.CVSSSeverities.V4.Score
		}
		if score == 0 && known {
			score = sev.score
		}
		if score == 0 {
			continue
		}
		label := classify.SeverityUnknown
		if known {
			label = sev.label
		}

		title := fmt.Sprintf("%s - Güvenlik Açığı", adv.CVEID)
		if adv.Summary != "" {
			title = fmt.Sprintf("%s - %s", adv.CVEID, article.Truncate(adv.Summary, 80))
		}

		var cwes []string
		for _, c := range adv.CWEs {
			if c.CWEID != "" {
				cwes = append(cwes, c.CWEID)
			}
		}
		refs := adv.References
		if len(refs) > maxCVEReferences {
			refs = refs[:maxCVEReferences]
		}

		entries = append(entries, feed.Entry{
			Title:       title,
			Description: article.Truncate(description, maxDescriptionLen),
			Link:        firstNonEmpty(adv.HTMLURL, "https://nvd.nist.gov/vuln/detail/"+adv.CVEID),
			PublishedAt: dateutil.Parse(adv.PublishedAt, now),
			Source:      g.Name(),
			CVEID:       adv.CVEID,
			CVSSScore:   score,
			Severity:    label,
			CWEIDs:      cwes,
			References:  refs,
		})
	}
	g.deps.Log.Infow("fetched", "source", g.Name(), "count", len(entries))
	return entries, nil
}

// CIRCL pulls the latest records from the CIRCL CVE API. Records carry a
// vector string instead of a numeric score, so the score is estimated.
type CIRCL struct {
	deps   Deps
	client *resty.Client
}

func NewCIRCL(d Deps) *CIRCL {
	return &CIRCL{deps: d, client: httpx.NewAPIClient(time.Second)}
}

func (c *CIRCL) Name() string { return "CIRCL" }

type circlItem struct {
	ID        string   `json:"id"`
	Aliases   []string `json:"aliases"`
	Details   string   `json:"details"`
	Summary   string   `json:"summary"`
	Published string   `json:"published"`
	Severity  []struct {
		Score string `json:"score"`
	} `json:"severity"`
	References []struct {
		URL string `json:"url"`
	} `json:"references"`
}

func (c *CIRCL) Fetch(ctx context.Context, days int) ([]feed.Entry, error) {
	now := time.Now()
	cutoff := feed.Cutoff(now, days)

	var items []circlItem
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&items).
		Get("https://cve.circl.lu/api/last/50")
	if err != nil {
		return nil, fmt.Errorf("circl: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("circl: status %d", resp.StatusCode())
	}

	var entries []feed.Entry
	for _, item := range items {
		cveID := item.ID
		if !strings.HasPrefix(cveID, "CVE-") {
			cveID = ""
			for _, alias := range item.Aliases {
				if strings.HasPrefix(alias, "CVE-") {
					cveID = alias
					break
				}
			}
			if cveID == "" {
				continue
			}
		}

		description := firstNonEmpty(item.Details, item.Summary)
		if len(strings.TrimSpace(description)) < minCVEDescLen {
			continue
		}
		published := dateutil.Parse(item.Published, now)
		if published.Before(cutoff) {
			continue
		}

		var score float64
		for _, sev := range item.Severity {
			if s, ok := scoreFromVector(sev.Score); ok {
				score = s
				break
			}
		}
		if score == 0 {
			continue
		}

		var refs []string
		for _, r := range item.References {
			if r.URL != "" && len(refs) < maxCVEReferences {
				refs = append(refs, r.URL)
			}
		}

		entries = append(entries, feed.Entry{
			Title:       fmt.Sprintf("%s - Güvenlik Açığı", cveID),
			Description: article.Truncate(description, maxDescriptionLen),
			Link:        "https://cve.circl.lu/cve/" + cveID,
			PublishedAt: published,
			Source:      c.Name(),
			CVEID:       cveID,
			CVSSScore:   score,
			Severity:    classify.Severity(score),
			References:  refs,
		})
	}
	c.deps.Log.Infow("fetched", "source", c.Name(), "count", len(entries))
	return entries, nil
}

var baseScoreRE = regexp.MustCompile(`baseScore[:\s]+(\d+\.?\d*)`)

// scoreFromVector estimates a base score from a CVSS vector string when no
// numeric score accompanies the record.
func scoreFromVector(vector string) (float64, bool) {
	if vector == "" {
		return 0, false
	}
	if m := baseScoreRE.FindStringSubmatch(vector); m != nil {
		if s, err := strconv.ParseFloat(m[1], 64); err == nil {
			return s, true
		}
	}
	switch {
	case strings.Contains(vector, "AV:N") && strings.Contains(vector, "AC:L"):
		switch {
		case strings.Contains(vector, "PR:N") && strings.Contains(vector, "UI:N"):
			return 9.0, true
		case strings.Contains(vector, "PR:N"):
			return 7.5, true
		case strings.Contains(vector, "PR:L"):
			return 6.5, true
		}
		return 0, false
	case strings.Contains(vector, "AV:N"):
		return 5.5, true
	case strings.Contains(vector, "AV:L"):
		return 4.0, true
	}
	return 0, false
}
