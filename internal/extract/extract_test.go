package extract

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

type namedExtractor struct{ name string }

func (n *namedExtractor) Name() string { return n.name }

func (n *namedExtractor) Fetch(context.Context, int) ([]feed.Entry, error) { return nil, nil }

func TestRegistrySelectKeepsOrder(t *testing.T) {
	r := NewRegistry(
		&namedExtractor{name: "a"},
		&namedExtractor{name: "b"},
		&namedExtractor{name: "c"},
	)

	if got := r.Names(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Names() = %v", got)
	}

	// selection order does not matter, registry order does
	sel := r.Select([]string{"c", "a"})
	var names []string
	for _, e := range sel {
		names = append(names, e.Name())
	}
	if !reflect.DeepEqual(names, []string{"a", "c"}) {
		t.Fatalf("Select = %v, want [a c]", names)
	}

	if got := r.Select(nil); len(got) != 3 {
		t.Fatalf("empty selection returned %d extractors, want all 3", len(got))
	}

	if got := r.Select([]string{"nope"}); len(got) != 0 {
		t.Fatalf("unknown name returned %d extractors, want 0", len(got))
	}
}

func TestMarkdownToText(t *testing.T) {
	md := "## What's New\n\n- **Faster** uploads via [the docs](https://example.com/docs)\n- `mc admin` fixes\n\n---\n"
	got := markdownToText(md)
	if got == "" {
		t.Fatalf("empty output")
	}
	for _, banned := range []string{"##", "**", "](", "`", "---"} {
		if strings.Contains(got, banned) {
			t.Fatalf("markdown artifact %q survived: %q", banned, got)
		}
	}
	if !strings.Contains(got, "the docs") {
		t.Fatalf("link text lost: %q", got)
	}
}

func TestExtractVersion(t *testing.T) {
	cases := map[string]string{
		"PostgreSQL 16.3 released":  "16.3",
		"MinIO RELEASE v2.1 notes":  "v2.1",
		"Redis 7.2.5 is out":        "7.2.5",
		"no version in this string": "",
	}
	for in, want := range cases {
		if got := extractVersion(in); got != want {
			t.Fatalf("extractVersion(%q) = %q, want %q", in, got, want)
		}
	}
}
