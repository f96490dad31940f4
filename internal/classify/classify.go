// Package classify holds the shared severity and category policies used by
// the topic pipelines.
package classify

import "strings"

// Turkish severity labels stored and served as-is.
const (
	SeverityCritical = "Kritik"
	SeverityHigh     = "Yüksek"
	SeverityMedium   = "Orta"
	SeverityLow      = "Düşük"
	SeverityUnknown  = "Bilinmiyor"
)

// Severity maps a CVSS base score to a label. The breakpoints are the same
// across every vulnerability source.
func Severity(score float64) string {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	default:
		return SeverityUnknown
	}
}

// PickCVSS selects a base score across schema versions, newest schema wins:
// v3.1 over v3.0 over v2. ok is false when no version carries a score.
func PickCVSS(v31, v30, v2 *float64) (float64, bool) {
	switch {
	case v31 != nil:
		return *v31, true
	case v30 != nil:
		return *v30, true
	case v2 != nil:
		return *v2, true
	default:
		return 0, false
	}
}

// categoryRules are checked in order; first match wins. Security runs
// before release on purpose: a security-flavored release note is a
// security item, not a release item.
var categoryRules = []struct {
	category string
	keywords []string
}{
	{"security", []string{"security", "vulnerability", "cve-", "exploit", "patch", "advisory", "breach", "malware", "ransomware"}},
	{"release", []string{"release", "released", "changelog", "version", " ga ", "general availability", "rc1", "rc2", "beta", "alpha"}},
	{"feature", []string{"feature", "introduce", "support for", "now available", "preview", "improvement"}},
	{"ecosystem", []string{"cncf", "community", "kubecon", "survey", "graduat", "sandbox", "incubat"}},
}

// defaultCategory tags everything the rules miss.
const defaultCategory = "blog"

// Category tags an item from its title and description.
func Category(title, description string) string {
	haystack := " " + strings.ToLower(title+" "+description) + " "
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.category
			}
		}
	}
	return defaultCategory
}
