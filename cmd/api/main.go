package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/aggregate"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/api"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/config"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/scheduler"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/storage"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/translate"
)

func main() {
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
	sched.Start()
	defer sched.Stop()

	r := gin.Default()
	api.NewServer(store, pipelines, cfg, sugar).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	sugar.Infow("starting api server", "addr", addr)
	if err := r.Run(addr); err != nil {
		sugar.Fatalw("server exit", "err", err)
	}
}
