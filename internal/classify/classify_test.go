package classify

import "testing"

func TestSeverityBreakpoints(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{9.8, SeverityCritical},
		{9.0, SeverityCritical},
		{8.9, SeverityHigh},
		{7.0, SeverityHigh},
		{6.9, SeverityMedium},
		{4.0, SeverityMedium},
		{3.9, SeverityLow},
		{0.1, SeverityLow},
		{0, SeverityUnknown},
	}
	for _, c := range cases {
		if got := Severity(c.score); got != c.want {
			t.Fatalf("Severity(%.1f) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestPickCVSSPrecedence(t *testing.T) {
	v31, v30, v2 := 9.8, 8.1, 6.5
	if s, ok := PickCVSS(&v31, &v30, &v2); !ok || s != 9.8 {
		t.Fatalf("v3.1 must win, got %.1f ok=%v", s, ok)
	}
	if s, ok := PickCVSS(nil, &v30, &v2); !ok || s != 8.1 {
		t.Fatalf("v3.0 must win over v2, got %.1f ok=%v", s, ok)
	}
	if s, ok := PickCVSS(nil, nil, &v2); !ok || s != 6.5 {
		t.Fatalf("v2 must be used last, got %.1f ok=%v", s, ok)
	}
	if _, ok := PickCVSS(nil, nil, nil); ok {
		t.Fatalf("no score must report ok=false")
	}
}

func TestCategoryOrdering(t *testing.T) {
	// A release note about a vulnerability is security, not release.
	if got := Category("Redis 7.2.5 released", "fixes a security vulnerability in ACL handling"); got != "security" {
		t.Fatalf("got %q, want security", got)
	}
	if got := Category("MongoDB 8.0 released", "new version with changelog"); got != "release" {
		t.Fatalf("got %q, want release", got)
	}
	if got := Category("New dashboard feature", "support for dark mode now available"); got != "feature" {
		t.Fatalf("got %q, want feature", got)
	}
	if got := Category("Project graduates", "CNCF community update"); got != "ecosystem" {
		t.Fatalf("got %q, want ecosystem", got)
	}
	if got := Category("Random musings", "nothing notable"); got != "blog" {
		t.Fatalf("got %q, want blog", got)
	}
}
