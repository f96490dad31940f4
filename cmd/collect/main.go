package main

import (
	"flag"
	"log"
	"strings"

	"go.uber.org/zap"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/aggregate"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/config"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/scheduler"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/storage"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/translate"
)

// One-shot collection entry point for manual refreshes and cron-less
// deployments.
func main() {
	topics := flag.String("topics", "", "comma-separated topics to refresh; empty refreshes all")
	flag.Parse()

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr, sugar)
	if err != nil {
		sugar.Fatalw("init store failed", "err", err)
	}

	var translator *translate.Translator
	if cfg.TranslateEnabled {
		translator = translate.New(sugar)
	}
	pipelines := aggregate.BuildPipelines(sugar, translator)

	sched, err := scheduler.New(pipelines, store, cfg, sugar)
	if err != nil {
		sugar.Fatalw("init scheduler failed", "err", err)
	}

	selected := []string{feed.TopicNews, feed.TopicCVE, feed.TopicKubernetes, feed.TopicSRE, feed.TopicDevTools}
	if *topics != "" {
		selected = strings.Split(*topics, ",")
	}
	for _, topic := range selected {
		sched.RunOnce(strings.TrimSpace(topic))
	}
}
