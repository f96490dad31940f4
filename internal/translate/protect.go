package translate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Placeholders use the XTRM prefix: an unknown letter run the translation
// providers pass through unsegmented and untranslated. The counter keeps
// every protected span distinct within one call.
var (
	codeSpanRE = regexp.MustCompile("`[^`]+`")
	prRefRE    = regexp.MustCompile(`\(#\d+,\s*@[\w-]+\)\s*\[SIG [^\]]+\]`)
	sigTagRE   = regexp.MustCompile(`\[SIG [^\]]+\]`)
	urlRE      = regexp.MustCompile(`https?://\S+`)
	ghPathRE   = regexp.MustCompile(`github\.com/[\w./-]+`)
	versionRE  = regexp.MustCompile(`\bv?\d+\.\d+(?:\.\d+)*(?:-[\w.]+)?\b`)
	cveRE      = regexp.MustCompile(`CVE-\d{4}-\d{4,}`)

	// Providers sometimes inject spaces or case drift into placeholders.
	placeholderRepairRE = regexp.MustCompile(`[Xx]\s*[Tt]\s*[Rr]\s*[Mm]\s*(\d{4})\s*[Xx]`)
)

type termMap struct {
	repl map[string]string
	n    int
}

func newTermMap() *termMap {
	return &termMap{repl: make(map[string]string)}
}

func (m *termMap) add(original string) string {
	m.n++
	ph := fmt.Sprintf("XTRM%04dX", m.n)
	m.repl[ph] = original
	return ph
}

func (m *termMap) sub(re *regexp.Regexp, text string) string {
	return re.ReplaceAllStringFunc(text, m.add)
}

// protect swaps every span that must survive translation for a placeholder
// and returns the reverse map. Pass order matters: structured spans (code,
// PR refs, URLs, versions, CVE IDs) go first so the term list never fires
// inside them; the term list itself runs longest term first.
func protect(text string) (string, *termMap) {
	m := newTermMap()
	result := text
	result = m.sub(codeSpanRE, result)
	result = m.sub(prRefRE, result)
	result = m.sub(sigTagRE, result)
	result = m.sub(urlRE, result)
	result = m.sub(ghPathRE, result)
	result = m.sub(versionRE, result)
	result = m.sub(cveRE, result)
	for _, re := range termPatterns {
		result = m.sub(re, result)
	}
	return result, m
}

// restore reverses protect. Keys are replaced longest first so the text of
// one restored span can never be clipped by a shorter key inside it.
func restore(text string, m *termMap) string {
	text = placeholderRepairRE.ReplaceAllString(text, "XTRM${1}X")
	keys := make([]string, 0, len(m.repl))
	for k := range m.repl {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		text = strings.ReplaceAll(text, k, m.repl[k])
	}
	return text
}
