// Package aggregate runs one topic's extractors, merges their output and
// turns the merged entries into translated, classified records.
package aggregate

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/article"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/classify"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/extract"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/translate"
)

// minPerSource is the floor of the per-source share: a small global cap
// never starves a source below this many items.
const minPerSource = 5

// Translator is the slice of translate.Translator the pipeline needs.
// A nil Translator leaves entries untranslated.
type Translator interface {
	Translate(ctx context.Context, text string) string
	TranslateLong(ctx context.Context, text string) string
	TranslateChangelog(ctx context.Context, text string) string
}

// Pipeline fetches, merges and processes one topic.
type Pipeline struct {
	Topic      string
	Registry   *extract.Registry
	Translator Translator
	Log        *zap.SugaredLogger
}

// BuildPipelines wires the five topic pipelines over a shared article
// fetcher and translator.
func BuildPipelines(log *zap.SugaredLogger, tr *translate.Translator) map[string]*Pipeline {
	deps := extract.Deps{Log: log, Article: article.NewFetcher(log)}
	var t Translator
	if tr != nil {
		t = tr
	}
	build := func(topic string, reg *extract.Registry) *Pipeline {
		return &Pipeline{Topic: topic, Registry: reg, Translator: t, Log: log.With("topic", topic)}
	}
	return map[string]*Pipeline{
		feed.TopicNews:       build(feed.TopicNews, extract.NewsExtractors(deps)),
		feed.TopicCVE:        build(feed.TopicCVE, extract.CVEExtractors(deps)),
		feed.TopicKubernetes: build(feed.TopicKubernetes, extract.KubernetesExtractors(deps)),
		feed.TopicSRE:        build(feed.TopicSRE, extract.SREExtractors(deps)),
		feed.TopicDevTools:   build(feed.TopicDevTools, extract.DevToolsExtractors(deps)),
	}
}

// Sources lists the topic's source names in registry order.
func (p *Pipeline) Sources() []string {
	return p.Registry.Names()
}

// FetchAll runs the selected extractors concurrently and merges their
// output. Each source keeps at most max(5, maxTotal/sourceCount) of its
// newest entries, the merged list is sorted newest first, deduplicated
// by link keeping the first occurrence, then capped at maxTotal. A
// failing source contributes nothing; the others are unaffected.
func (p *Pipeline) FetchAll(ctx context.Context, days int, sources []string, maxTotal int) []feed.Entry {
	extractors := p.Registry.Select(sources)
	if len(extractors) == 0 {
		return nil
	}

	perSource := maxTotal / len(extractors)
	if perSource < minPerSource {
		perSource = minPerSource
	}

	results := make([][]feed.Entry, len(extractors))
	var wg sync.WaitGroup
	for i, ex := range extractors {
		wg.Add(1)
		go func(i int, ex feed.Extractor) {
			defer wg.Done()
			entries, err := ex.Fetch(ctx, days)
			if err != nil {
				p.Log.Warnw("source failed", "source", ex.Name(), "err", err)
				return
			}
			sort.SliceStable(entries, func(a, b int) bool {
				return entries[a].PublishedAt.After(entries[b].PublishedAt)
			})
			if len(entries) > perSource {
				entries = entries[:perSource]
			}
			results[i] = entries
		}(i, ex)
	}
	wg.Wait()

	merged := lo.Flatten(results)
	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].PublishedAt.After(merged[b].PublishedAt)
	})
	merged = lo.UniqBy(merged, func(e feed.Entry) string { return e.Link })
	if maxTotal > 0 && len(merged) > maxTotal {
		merged = merged[:maxTotal]
	}
	p.Log.Infow("merged", "count", len(merged), "sources", len(extractors))
	return merged
}

// ProcessAll translates and classifies the merged entries. Translation
// failures degrade per item to the original text; they never drop the
// entry.
func (p *Pipeline) ProcessAll(ctx context.Context, entries []feed.Entry) []feed.ProcessedEntry {
	out := make([]feed.ProcessedEntry, 0, len(entries))
	for _, e := range entries {
		pe := feed.ProcessedEntry{Entry: e}
		if pe.Category == "" {
			pe.Category = classify.Category(e.Title, e.Description)
		}
		if pe.CVSSScore > 0 && pe.Severity == "" {
			pe.Severity = classify.Severity(pe.CVSSScore)
		}
		pe.TranslatedTitle = e.Title
		pe.TranslatedDescription = e.Description
		if p.Translator != nil {
			pe.TranslatedTitle = p.Translator.Translate(ctx, e.Title)
			if isChangelogShaped(e) {
				pe.TranslatedDescription = p.Translator.TranslateChangelog(ctx, e.Description)
			} else {
				pe.TranslatedDescription = p.Translator.TranslateLong(ctx, e.Description)
			}
		}
		out = append(out, pe)
	}
	return out
}

// Run is FetchAll followed by ProcessAll.
func (p *Pipeline) Run(ctx context.Context, days int, sources []string, maxTotal int) []feed.ProcessedEntry {
	return p.ProcessAll(ctx, p.FetchAll(ctx, days, sources, maxTotal))
}

// isChangelogShaped reports whether the description is structured
// release notes rather than prose.
func isChangelogShaped(e feed.Entry) bool {
	if e.EntryType != "release" {
		return false
	}
	return strings.Contains(e.Description, "\n") &&
		(strings.Contains(e.Description, "#") || strings.Contains(e.Description, "- "))
}
