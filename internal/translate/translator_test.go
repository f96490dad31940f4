package translate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestTranslator(chunkSize int, call func(ctx context.Context, text string) (string, error)) *Translator {
	tr := New(zap.NewNop().Sugar())
	tr.chunkSize = chunkSize
	tr.call = call
	return tr
}

func TestTranslateFailureReturnsOriginal(t *testing.T) {
	tr := newTestTranslator(DefaultChunkSize, func(context.Context, string) (string, error) {
		return "", fmt.Errorf("provider down")
	})
	in := "Something broke in the cluster today."
	if got := tr.Translate(context.Background(), in); got != in {
		t.Fatalf("failed translation must return original, got %q", got)
	}
}

func TestTranslateEmptyInput(t *testing.T) {
	tr := newTestTranslator(DefaultChunkSize, func(context.Context, string) (string, error) {
		t.Fatal("provider must not be called for empty input")
		return "", nil
	})
	if got := tr.Translate(context.Background(), "   "); got != "" {
		t.Fatalf("want empty, got %q", got)
	}
}

func TestTranslateLongFailedChunkDegradesAlone(t *testing.T) {
	calls := 0
	tr := newTestTranslator(60, func(_ context.Context, text string) (string, error) {
		calls++
		if calls == 2 {
			return "", fmt.Errorf("throttled")
		}
		return strings.ToUpper(text), nil
	})
	in := "First part of the report covers outages. Second part covers incident reviews. Third part covers the postmortem backlog."
	got := tr.TranslateLong(context.Background(), in)

	if calls != 3 {
		t.Fatalf("want 3 chunk calls, got %d", calls)
	}
	if got == "" {
		t.Fatal("output must not be empty when one chunk fails")
	}
	if !strings.Contains(got, "FIRST PART OF THE REPORT COVERS OUTAGES.") {
		t.Fatalf("first chunk not translated: %q", got)
	}
	if !strings.Contains(got, "Second part covers incident reviews.") {
		t.Fatalf("failed chunk must keep original text: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Fatalf("chunks must join with single spaces: %q", got)
	}
}

func TestTranslateLongShortTextSingleCall(t *testing.T) {
	calls := 0
	tr := newTestTranslator(DefaultChunkSize, func(_ context.Context, text string) (string, error) {
		calls++
		return text, nil
	})
	tr.TranslateLong(context.Background(), "Short enough to go in one call.")
	if calls != 1 {
		t.Fatalf("want 1 call, got %d", calls)
	}
}

func TestSplitChunksSentenceBoundaries(t *testing.T) {
	text := "Alpha beta gamma. Delta epsilon zeta. Eta theta iota."
	chunks := splitChunks(text, 25)
	if len(chunks) != 3 {
		t.Fatalf("want 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for _, c := range chunks {
		if !strings.HasSuffix(c, ".") {
			t.Fatalf("chunk must end at a sentence boundary: %q", c)
		}
		if len(c) > 25 {
			t.Fatalf("chunk exceeds ceiling: %q", c)
		}
	}
}

func TestSplitChunksOversizedSentenceFallsBackToNewlines(t *testing.T) {
	text := "line one of a huge block\nline two of a huge block\nline three of a huge block"
	chunks := splitChunks(text, 30)
	if len(chunks) < 2 {
		t.Fatalf("oversized sentence must sub-split on newlines, got %v", chunks)
	}
	for _, c := range chunks {
		if len(c) > 30 {
			t.Fatalf("chunk exceeds ceiling: %q", c)
		}
	}
}

func TestTranslateChangelogKeepsStructure(t *testing.T) {
	tr := newTestTranslator(DefaultChunkSize, func(_ context.Context, text string) (string, error) {
		return text, nil
	})
	in := "### Bug Fixes\n\n- Fixed the scheduler race.\n- Fixed the restart loop."
	got := tr.TranslateChangelog(context.Background(), in)
	if !strings.HasPrefix(got, "### ") {
		t.Fatalf("heading marker lost: %q", got)
	}
	if strings.Count(got, "- ") != 2 {
		t.Fatalf("bullet markers lost: %q", got)
	}
}
