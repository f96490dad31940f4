// Package translate turns source text into Turkish while keeping technical
// terms, code spans, URLs, versions and CVE IDs verbatim. Every provider
// failure degrades to the original text; nothing in this package returns an
// error to its caller.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/httpx"
)

const (
	googleEndpoint   = "https://translate.googleapis.com/translate_a/single"
	myMemoryEndpoint = "https://api.mymemory.translated.net/get"

	// DefaultChunkSize is the provider call ceiling; longer text is split
	// on sentence boundaries.
	DefaultChunkSize = 4500

	// providerInterval spaces successive provider calls. The public
	// endpoints are informally rate limited and ban bursty clients.
	providerInterval = 300 * time.Millisecond
)

var sentenceEndRE = regexp.MustCompile(`[.!?]\s+`)

// Translator is the single path to the translation providers. One instance
// is shared by every pipeline so the limiter paces all calls together.
type Translator struct {
	client    *resty.Client
	limiter   *rate.Limiter
	log       *zap.SugaredLogger
	target    string
	chunkSize int

	// call invokes the provider chain for one protected chunk. Replaced in
	// tests.
	call func(ctx context.Context, text string) (string, error)
}

// New builds a Translator targeting Turkish.
func New(log *zap.SugaredLogger) *Translator {
	t := &Translator{
		client:    httpx.NewClient(0),
		limiter:   rate.NewLimiter(rate.Every(providerInterval), 1),
		log:       log,
		target:    "tr",
		chunkSize: DefaultChunkSize,
	}
	t.call = t.callProviders
	return t
}

// Translate converts one short text. Protected spans are swapped out before
// the provider call and swapped back after; a provider failure returns the
// input unchanged.
func (t *Translator) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	protected, terms := protect(text)
	translated, err := t.call(ctx, protected)
	if err != nil || translated == "" {
		t.log.Warnw("translation failed, keeping original", "err", err, "len", len(text))
		return text
	}
	return PostProcess(restore(translated, terms))
}

// TranslateLong splits text exceeding the chunk ceiling on sentence
// boundaries and translates each piece independently, so one failed chunk
// costs only that chunk. Post-processing runs once more on the joined
// result to catch artifacts at chunk seams.
func (t *Translator) TranslateLong(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if len(text) <= t.chunkSize {
		return t.Translate(ctx, text)
	}
	chunks := splitChunks(text, t.chunkSize)
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, t.Translate(ctx, chunk))
	}
	return PostProcess(strings.Join(parts, " "))
}

// TranslateChangelog translates structured release-note text line by line,
// keeping heading markers and bullet markers in place.
func (t *Translator) TranslateChangelog(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			out = append(out, "")
		case strings.HasPrefix(stripped, "#"):
			i := strings.IndexFunc(stripped, func(r rune) bool { return r != '#' && r != ' ' })
			if i < 0 {
				out = append(out, stripped)
				continue
			}
			out = append(out, stripped[:i]+t.Translate(ctx, stripped[i:]))
		case strings.HasPrefix(stripped, "- ") || strings.HasPrefix(stripped, "* "):
			out = append(out, stripped[:2]+t.Translate(ctx, stripped[2:]))
		default:
			out = append(out, t.Translate(ctx, stripped))
		}
	}
	return PostProcess(strings.Join(out, "\n"))
}

// splitChunks breaks text into pieces of at most size bytes, preferring
// sentence boundaries and falling back to newlines when a single sentence
// is itself oversized.
func splitChunks(text string, size int) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceEndRE.FindAllStringIndex(text, -1) {
		// split after the stop character, dropping the boundary whitespace
		sentences = append(sentences, text[last:loc[0]+1])
		last = loc[1]
	}
	if last < len(text) {
		sentences = append(sentences, text[last:])
	}

	var chunks []string
	current := ""
	flush := func() {
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
	}
	for _, s := range sentences {
		switch {
		case len(current)+len(s)+1 <= size:
			if current == "" {
				current = s
			} else {
				current += " " + s
			}
		case len(s) > size:
			flush()
			for _, part := range strings.Split(s, "\n") {
				if len(current)+len(part)+1 <= size {
					if current == "" {
						current = part
					} else {
						current += "\n" + part
					}
				} else {
					flush()
					current = part
				}
			}
		default:
			flush()
			current = s
		}
	}
	flush()
	return chunks
}

// callProviders tries the free Google endpoint and falls back to MyMemory.
// The limiter gate runs before each provider attempt.
func (t *Translator) callProviders(ctx context.Context, text string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, gerr := t.viaGoogle(ctx, text)
	if gerr == nil && out != "" {
		return out, nil
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, merr := t.viaMyMemory(ctx, text)
	if merr == nil && out != "" {
		return out, nil
	}
	return "", fmt.Errorf("google: %v; mymemory: %v", gerr, merr)
}

// viaGoogle uses the public gtx endpoint. The response is a nested JSON
// array whose first element lists translated segments.
func (t *Translator) viaGoogle(ctx context.Context, text string) (string, error) {
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     "auto",
			"tl":     t.target,
			"dt":     "t",
			"q":      text,
		}).
		Get(googleEndpoint)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}

	var payload []any
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty payload")
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected payload shape")
	}
	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no segments")
	}
	return b.String(), nil
}

func (t *Translator) viaMyMemory(ctx context.Context, text string) (string, error) {
	var payload struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus any `json:"responseStatus"`
	}
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParam("q", text).
		SetQueryParam("langpair", "en|"+t.target).
		SetResult(&payload).
		Get(myMemoryEndpoint)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}
	out := strings.TrimSpace(payload.ResponseData.TranslatedText)
	if out == "" {
		return "", fmt.Errorf("empty translation")
	}
	// MyMemory returns the error text in the translation field on quota
	// exhaustion.
	if strings.Contains(strings.ToUpper(out), "MYMEMORY WARNING") {
		return "", fmt.Errorf("quota exhausted")
	}
	return out, nil
}
