package translate

import (
	"strings"
	"testing"
)

func TestProtectRestoreRoundTrip(t *testing.T) {
	// Identity provider: restore(protect(x)) must return x byte-for-byte.
	inputs := []string{
		"Kubernetes 1.30 ships a new kubelet flag",
		"See https://example.com/post.html and run `kubectl get pods` now",
		"CVE-2024-12345 affects PostgreSQL and MySQL v16.2",
		"(#123456, @someone) [SIG Node] fixed the race",
		"[SIG Network and Windows] adjusted winkernel proxy",
		"plain text with no protected spans at all",
	}
	for _, in := range inputs {
		protected, m := protect(in)
		if got := restore(protected, m); got != in {
			t.Fatalf("round trip changed text:\n in: %q\nout: %q", in, got)
		}
	}
}

func TestProtectCoverageIsTotal(t *testing.T) {
	in := "Elasticsearch and Redis handle HTTP on Linux, see CVE-2024-0001 at https://ex.io/a"
	protected, m := protect(in)
	// translator mangles nothing here; the restored text must carry no
	// placeholder tokens
	out := restore(protected, m)
	if strings.Contains(out, "XTRM") {
		t.Fatalf("placeholder leaked into output: %q", out)
	}
	if out != in {
		t.Fatalf("restore not total:\n in: %q\nout: %q", in, out)
	}
}

func TestProtectLongestMatchWins(t *testing.T) {
	in := "Upgrading Elasticsearch is routine"
	protected, m := protect(in)
	if strings.Contains(protected, "Elasticsearch") {
		t.Fatalf("term not protected: %q", protected)
	}
	full := 0
	for _, original := range m.repl {
		if original == "Elasticsearch" {
			full++
		}
		if original != "Elasticsearch" && strings.Contains("Elasticsearch", original) {
			t.Fatalf("partial span %q protected inside longer term", original)
		}
	}
	if full != 1 {
		t.Fatalf("want exactly one placeholder for the full term, got %d", full)
	}
}

func TestProtectDistinctPlaceholders(t *testing.T) {
	in := "Redis talks to Redis over TCP and TCP again"
	_, m := protect(in)
	seen := map[string]bool{}
	for ph := range m.repl {
		if seen[ph] {
			t.Fatalf("placeholder %q reused", ph)
		}
		seen[ph] = true
	}
	if len(m.repl) != 4 {
		t.Fatalf("want 4 protected spans, got %d", len(m.repl))
	}
}

func TestRestoreRepairsMangledPlaceholders(t *testing.T) {
	m := newTermMap()
	ph := m.add("Kubernetes")
	if ph != "XTRM0001X" {
		t.Fatalf("unexpected placeholder %q", ph)
	}
	// providers sometimes inject spaces into the token
	got := restore("çalışan X trm 0001 x kümesi", m)
	if !strings.Contains(got, "Kubernetes") {
		t.Fatalf("mangled placeholder not repaired: %q", got)
	}
}
