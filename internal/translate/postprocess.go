package translate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// translationFixes undo the providers' habitual mistranslations of jargon.
// Git and infrastructure vocabulary is kept in English in Turkish tech
// writing, so the Turkish calque is turned back.
var translationFixes = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\bKabuk\b`), "Shell"},
	{regexp.MustCompile(`\bkabuk\b`), "shell"},
	{regexp.MustCompile(`\byığın\b`), "stack"},
	{regexp.MustCompile(`\bYığın\b`), "Stack"},
	{regexp.MustCompile(`\bağ geçidi\b`), "gateway"},
	{regexp.MustCompile(`\bAğ geçidi\b`), "Gateway"},
	{regexp.MustCompile(`\bişlem hattı\b`), "pipeline"},
	{regexp.MustCompile(`\bİşlem hattı\b`), "Pipeline"},
	{regexp.MustCompile(`\bgörev\b`), "task"},
	{regexp.MustCompile(`\bdepo\b`), "repository"},
	{regexp.MustCompile(`\bDepo\b`), "Repository"},
	{regexp.MustCompile(`\btaahhüt\b`), "commit"},
	{regexp.MustCompile(`\bTaahhüt\b`), "Commit"},
	{regexp.MustCompile(`\bdallanma\b`), "branch"},
	{regexp.MustCompile(`\bDallanma\b`), "Branch"},
	{regexp.MustCompile(`\bbirleştirme\b`), "merge"},
	{regexp.MustCompile(`\bBirleştirme\b`), "Merge"},
}

// turkishCharFixes repairs double-encoded UTF-8 the providers occasionally
// return for Turkish letters.
var turkishCharFixes = [][2]string{
	{"Ä±", "ı"},
	{"Ã¶", "ö"},
	{"Ã¼", "ü"},
	{"ÅŸ", "ş"},
	{"Ã§", "ç"},
	{"ÄŸ", "ğ"},
	{"Ä°", "İ"},
}

var monthNames = []struct {
	re *regexp.Regexp
	tr string
}{
	{regexp.MustCompile(`\bJanuary\b`), "Ocak"},
	{regexp.MustCompile(`\bFebruary\b`), "Şubat"},
	{regexp.MustCompile(`\bMarch\b`), "Mart"},
	{regexp.MustCompile(`\bApril\b`), "Nisan"},
	{regexp.MustCompile(`\bMay\b`), "Mayıs"},
	{regexp.MustCompile(`\bJune\b`), "Haziran"},
	{regexp.MustCompile(`\bJuly\b`), "Temmuz"},
	{regexp.MustCompile(`\bAugust\b`), "Ağustos"},
	{regexp.MustCompile(`\bSeptember\b`), "Eylül"},
	{regexp.MustCompile(`\bOctober\b`), "Ekim"},
	{regexp.MustCompile(`\bNovember\b`), "Kasım"},
	{regexp.MustCompile(`\bDecember\b`), "Aralık"},
}

var (
	ppURLRE     = regexp.MustCompile(`https?://\S+`)
	ppEmailRE   = regexp.MustCompile(`\S+@\S+\.\S+`)
	ppVersionRE = regexp.MustCompile(`\bv?\d+\.\d+(?:\.\d+)*(?:[+\-][\w.]+)?\b`)
	ppExtRE     = regexp.MustCompile(`\.\w{2,5}\b`)

	spaceBeforePunctRE = regexp.MustCompile(`\s+([.,;:!?)])`)
	punctNoSpaceRE     = regexp.MustCompile(`([.,;:!?])([A-Za-zÀ-ÿĞğİıÖöÜüŞşÇç])`)
	openParenSpaceRE   = regexp.MustCompile(`\(\s+`)
	closeParenSpaceRE  = regexp.MustCompile(`\s+\)`)
	multiSpaceRE       = regexp.MustCompile(`[ \t]+`)
	newlineSpaceRE     = regexp.MustCompile(` *\n *`)
	multiNewlineRE     = regexp.MustCompile(`\n{3,}`)
	afterStopLowerRE   = regexp.MustCompile(`[.!?]\s+[a-zğüşöçı]`)
	lineStartLowerRE   = regexp.MustCompile(`\n[a-zğüşöçı]`)
	k8sUpperRE         = regexp.MustCompile(`\bK\s*8\s*s\b`)
	k8sLowerRE         = regexp.MustCompile(`\bk\s*8\s*s\b`)
)

func upperTurkish(r rune) rune {
	switch r {
	case 'i':
		return 'İ'
	case 'ı':
		return 'I'
	}
	return unicode.ToUpper(r)
}

func capitalizeLastRune(m string) string {
	r, size := utf8.DecodeLastRuneInString(m)
	return m[:len(m)-size] + string(upperTurkish(r))
}

// PostProcess applies Turkish orthography fixes to translated text. URLs,
// email addresses, version numbers and file extensions are swapped out
// first: the punctuation rules would otherwise insert spaces around their
// dots.
func PostProcess(text string) string {
	if text == "" {
		return text
	}
	result := text

	shelter := make(map[string]string)
	n := 0
	hide := func(m string) string {
		n++
		ph := fmt.Sprintf("XPPX%04dXPPX", n)
		shelter[ph] = m
		return ph
	}
	result = ppURLRE.ReplaceAllStringFunc(result, hide)
	result = ppEmailRE.ReplaceAllStringFunc(result, hide)
	result = ppVersionRE.ReplaceAllStringFunc(result, hide)
	result = ppExtRE.ReplaceAllStringFunc(result, hide)

	result = placeholderRepairRE.ReplaceAllString(result, "XTRM${1}X")

	for _, f := range turkishCharFixes {
		result = strings.ReplaceAll(result, f[0], f[1])
	}
	for _, f := range translationFixes {
		result = f.re.ReplaceAllString(result, f.repl)
	}

	result = spaceBeforePunctRE.ReplaceAllString(result, "$1")
	result = punctNoSpaceRE.ReplaceAllString(result, "$1 $2")
	result = openParenSpaceRE.ReplaceAllString(result, "(")
	result = closeParenSpaceRE.ReplaceAllString(result, ")")

	result = multiSpaceRE.ReplaceAllString(result, " ")
	result = newlineSpaceRE.ReplaceAllString(result, "\n")
	result = multiNewlineRE.ReplaceAllString(result, "\n\n")

	result = afterStopLowerRE.ReplaceAllStringFunc(result, capitalizeLastRune)
	result = lineStartLowerRE.ReplaceAllStringFunc(result, capitalizeLastRune)
	if r, size := utf8.DecodeRuneInString(result); size > 0 && unicode.IsLower(r) {
		result = string(upperTurkish(r)) + result[size:]
	}

	for _, m := range monthNames {
		result = m.re.ReplaceAllString(result, m.tr)
	}
	result = k8sUpperRE.ReplaceAllString(result, "K8s")
	result = k8sLowerRE.ReplaceAllString(result, "K8s")

	keys := make([]string, 0, len(shelter))
	for k := range shelter {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	for _, k := range keys {
		result = strings.ReplaceAll(result, k, shelter[k])
	}

	return strings.TrimSpace(result)
}
