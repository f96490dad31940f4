// Package scheduler drives the periodic topic refreshes.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/aggregate"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/config"
	"github.com/AdanedhelWrites/teknoloji-radar/internal/storage"
)

type Scheduler struct {
	cron      *cron.Cron
	pipelines map[string]*aggregate.Pipeline
	store     *storage.Store
	cfg       *config.Config
	log       *zap.SugaredLogger
}

// New registers one cron job per topic using the topic's spec from the
// config. An empty spec leaves that topic manual-only.
func New(pipelines map[string]*aggregate.Pipeline, store *storage.Store, cfg *config.Config, log *zap.SugaredLogger) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		pipelines: pipelines,
		store:     store,
		cfg:       cfg,
		log:       log,
	}
	for topic := range pipelines {
		spec := cfg.CronSpecs[topic]
		if spec == "" {
			continue
		}
		topic := topic
		if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(topic) }); err != nil {
			return nil, fmt.Errorf("cron %s %q: %w", topic, spec, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// First round is delayed so startup traffic gets the process to itself.
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		for topic := range s.pipelines {
			go s.RunOnce(topic)
		}
	})
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce refreshes one topic: fetch, process, persist, recache.
func (s *Scheduler) RunOnce(topic string) {
	p, ok := s.pipelines[topic]
	if !ok {
		s.log.Warnw("unknown topic", "topic", topic)
		return
	}
	start := time.Now()
	ctx := context.Background()

	items := p.Run(ctx, s.cfg.FetchDays, nil, s.cfg.MaxItems)
	if len(items) == 0 {
		s.log.Infow("refresh produced nothing", "topic", topic)
		return
	}
	if err := s.store.SaveBatch(ctx, topic, items); err != nil {
		s.log.Errorw("save failed", "topic", topic, "err", err)
		return
	}
	s.store.CacheItems(ctx, topic, items)
	s.log.Infow("refresh done", "topic", topic, "count", len(items), "took", time.Since(start))
}
