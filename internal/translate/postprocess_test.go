package translate

import (
	"strings"
	"testing"
)

func TestPostProcessJargonFixes(t *testing.T) {
	got := PostProcess("Depo güncellendi ve taahhüt geri alındı")
	if !strings.Contains(got, "Repository") {
		t.Fatalf("Depo not restored to Repository: %q", got)
	}
	if !strings.Contains(got, "commit") {
		t.Fatalf("taahhüt not restored to commit: %q", got)
	}
}

func TestPostProcessMojibakeRepair(t *testing.T) {
	got := PostProcess("GÃ¼venlik aÃ§Ä±ÄŸÄ± bulundu")
	if strings.Contains(got, "Ã") || strings.Contains(got, "Ä") {
		t.Fatalf("mojibake survived: %q", got)
	}
	if !strings.Contains(got, "Güvenlik") {
		t.Fatalf("got %q, want repaired Güvenlik", got)
	}
}

func TestPostProcessPunctuationSpacing(t *testing.T) {
	got := PostProcess("Sürüm yayınlandı .Detaylar açıklandı ( yakında )")
	if strings.Contains(got, " .") || strings.Contains(got, "( ") || strings.Contains(got, " )") {
		t.Fatalf("punctuation spacing not normalized: %q", got)
	}
	if !strings.Contains(got, ". Detaylar") {
		t.Fatalf("missing space after stop: %q", got)
	}
}

func TestPostProcessSheltersURLsAndVersions(t *testing.T) {
	in := "Ayrıntılar için https://example.com/duyuru.html adresine bakın. Sürüm v1.28.3 hazır."
	got := PostProcess(in)
	if !strings.Contains(got, "https://example.com/duyuru.html") {
		t.Fatalf("URL mangled: %q", got)
	}
	if !strings.Contains(got, "v1.28.3") {
		t.Fatalf("version mangled: %q", got)
	}
	if strings.Contains(got, "XPPX") {
		t.Fatalf("shelter placeholder leaked: %q", got)
	}
}

func TestPostProcessTurkishCapitalization(t *testing.T) {
	got := PostProcess("istemci güncellendi. ikinci cümle burada.")
	if !strings.HasPrefix(got, "İstemci") {
		t.Fatalf("dotted capital İ not applied at start: %q", got)
	}
	if !strings.Contains(got, ". İkinci") {
		t.Fatalf("sentence start not capitalized with İ: %q", got)
	}
}

func TestPostProcessMonthsAndK8s(t *testing.T) {
	got := PostProcess("January ayında k 8 s güncellemesi geldi")
	if !strings.Contains(got, "Ocak") {
		t.Fatalf("month not localized: %q", got)
	}
	if !strings.Contains(got, "K8s") {
		t.Fatalf("K8s not repaired: %q", got)
	}
}

func TestPostProcessEmptyInput(t *testing.T) {
	if got := PostProcess(""); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
