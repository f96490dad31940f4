package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

// cacheTTL bounds staleness when the scheduler stops refreshing a topic.
const cacheTTL = time.Hour

func itemsKey(topic string) string {
	return fmt.Sprintf("radar:%s:items", topic)
}

func lastUpdateKey(topic string) string {
	return fmt.Sprintf("radar:%s:last_update", topic)
}

// CacheItems replaces the topic's serving cache and stamps the refresh
// time. Cache failures are logged and swallowed; the database remains
// the source of truth.
func (s *Store) CacheItems(ctx context.Context, topic string, items []feed.ProcessedEntry) {
	if s.Redis == nil {
		return
	}
	bs, err := json.Marshal(items)
	if err != nil {
		s.Log.Warnw("cache marshal failed", "topic", topic, "err", err)
		return
	}
	if err := s.Redis.Set(ctx, itemsKey(topic), bs, cacheTTL).Err(); err != nil {
		s.Log.Warnw("cache write failed", "topic", topic, "err", err)
		return
	}
	now := time.Now().Format(time.RFC3339)
	if err := s.Redis.Set(ctx, lastUpdateKey(topic), now, cacheTTL).Err(); err != nil {
		s.Log.Warnw("cache stamp failed", "topic", topic, "err", err)
	}
}

// CachedItems returns the topic's cached entries. ok is false on a miss
// or any cache error.
func (s *Store) CachedItems(ctx context.Context, topic string) ([]feed.ProcessedEntry, bool) {
	if s.Redis == nil {
		return nil, false
	}
	bs, err := s.Redis.Get(ctx, itemsKey(topic)).Bytes()
	if err != nil {
		return nil, false
	}
	var items []feed.ProcessedEntry
	if err := json.Unmarshal(bs, &items); err != nil {
		s.Log.Warnw("cache decode failed", "topic", topic, "err", err)
		return nil, false
	}
	return items, true
}

// LastUpdate returns the topic's last refresh time, zero when unknown.
func (s *Store) LastUpdate(ctx context.Context, topic string) time.Time {
	if s.Redis == nil {
		return time.Time{}
	}
	v, err := s.Redis.Get(ctx, lastUpdateKey(topic)).Result()
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ClearCache drops the topic's cached entries and refresh stamp.
func (s *Store) ClearCache(ctx context.Context, topic string) error {
	if s.Redis == nil {
		return nil
	}
	if err := s.Redis.Del(ctx, itemsKey(topic), lastUpdateKey(topic)).Err(); err != nil {
		return fmt.Errorf("clear cache %s: %w", topic, err)
	}
	return nil
}
