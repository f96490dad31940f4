package config

import (
	"os"
	"testing"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

func TestLoadDefaults(t *testing.T) {
	_ = os.Unsetenv("APP_PORT")
	_ = os.Unsetenv("FETCH_DAYS")

	cfg := Load()
	if cfg.AppPort != "9000" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "9000")
	}
	if cfg.FetchDays != 7 {
		t.Fatalf("FetchDays = %d, want 7", cfg.FetchDays)
	}
	if !cfg.TranslateEnabled {
		t.Fatalf("TranslateEnabled = false, want true by default")
	}
	for _, topic := range []string{feed.TopicNews, feed.TopicCVE, feed.TopicKubernetes, feed.TopicSRE, feed.TopicDevTools} {
		if cfg.CronSpecs[topic] == "" {
			t.Fatalf("no default cron spec for topic %q", topic)
		}
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	_ = os.Setenv("APP_PORT", "1234")
	_ = os.Setenv("MAX_ITEMS", "50")
	_ = os.Setenv("CRON_NEWS", "*/15 * * * *")
	defer func() {
		_ = os.Unsetenv("APP_PORT")
		_ = os.Unsetenv("MAX_ITEMS")
		_ = os.Unsetenv("CRON_NEWS")
	}()

	cfg := Load()
	if cfg.AppPort != "1234" {
		t.Fatalf("AppPort = %q, want %q", cfg.AppPort, "1234")
	}
	if cfg.MaxItems != 50 {
		t.Fatalf("MaxItems = %d, want 50", cfg.MaxItems)
	}
	if got := cfg.CronSpecs[feed.TopicNews]; got != "*/15 * * * *" {
		t.Fatalf("CronSpecs[news] = %q, want %q", got, "*/15 * * * *")
	}
}
