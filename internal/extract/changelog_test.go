package extract

import (
	"strings"
	"testing"
)

const sampleChangelog = `# v1.33.2

## Downloads for v1.33.2

### Source Code

filename | sha512 hash
-------- | -----------
[kubernetes.tar.gz](https://dl.k8s.io/v1.33.2/kubernetes.tar.gz) | deadbeef

### Client Binaries

filename | sha512 hash
-------- | -----------
[kubernetes-client-linux-amd64.tar.gz](https://dl.k8s.io/x.tar.gz) | cafebabe

## Changelog since v1.33.1

## Changes by Kind

### Bug or Regression

- Fixed a scheduler race during preemption. ([#123456](https://github.com/kubernetes/kubernetes/pull/123456), [@someone](https://github.com/someone)) [SIG Scheduling]
- Reverted a kubelet cgroup change. ([#123457](https://github.com/kubernetes/kubernetes/pull/123457), [@other](https://github.com/other)) [SIG Node]

## Dependencies

- golang.org/x/net: bumped.

# v1.33.1

## Changes by Kind

- Older release content.
`

func TestExtractVersionSection(t *testing.T) {
	section := extractVersionSection(sampleChangelog, "v1.33.2")
	if section == "" {
		t.Fatal("section not found")
	}
	if !strings.Contains(section, "scheduler race") {
		t.Fatalf("section missing change items: %q", section)
	}
	if strings.Contains(section, "Older release content") {
		t.Fatalf("section bleeds into next version: %q", section)
	}
	if !strings.HasPrefix(section, "# v1.33.2") {
		t.Fatalf("section must start at the version heading: %q", section[:40])
	}
}

func TestExtractVersionSectionMissing(t *testing.T) {
	if got := extractVersionSection(sampleChangelog, "v9.99.9"); got != "" {
		t.Fatalf("want empty for unknown version, got %q", got)
	}
}

func TestFilterChangesSection(t *testing.T) {
	section := extractVersionSection(sampleChangelog, "v1.33.2")
	filtered := filterChangesSection(section)

	for _, banned := range []string{"sha512", "deadbeef", ".tar.gz", "Client Binaries", "Source Code"} {
		if strings.Contains(filtered, banned) {
			t.Fatalf("artifact content %q survived filtering:\n%s", banned, filtered)
		}
	}
	for _, wanted := range []string{"Changes by Kind", "Bug or Regression", "scheduler race", "Dependencies"} {
		if !strings.Contains(filtered, wanted) {
			t.Fatalf("real content %q lost in filtering:\n%s", wanted, filtered)
		}
	}
}

func TestCleanChangelogSection(t *testing.T) {
	section := cleanChangelogSection(filterChangesSection(extractVersionSection(sampleChangelog, "v1.33.2")))
	if !strings.Contains(section, "(#123456, @someone) [SIG Scheduling]") {
		t.Fatalf("PR reference not normalized:\n%s", section)
	}
	if strings.Contains(section, "](http") {
		t.Fatalf("markdown links survived cleaning:\n%s", section)
	}
	if !strings.Contains(section, "### Bug or Regression") {
		t.Fatalf("heading structure lost:\n%s", section)
	}
}
