// Package storage persists processed entries to Postgres and keeps the
// per-topic serving cache in Redis.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

// itemColumns are the columns shared by every topic table.
type itemColumns struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Title                 string    `gorm:"size:512" json:"title"`
	TranslatedTitle       string    `gorm:"size:512" json:"translatedTitle"`
	Description           string    `gorm:"type:text" json:"description"`
	TranslatedDescription string    `gorm:"type:text" json:"translatedDescription"`
	Link                  string    `gorm:"size:1024;uniqueIndex" json:"link"`
	Source                string    `gorm:"size:64;index" json:"source"`
	Category              string    `gorm:"size:32;index" json:"category"`
	EntryType             string    `gorm:"size:32" json:"entryType"`
	Version               string    `gorm:"size:64" json:"version"`
	PublishedAt           time.Time `gorm:"index" json:"publishedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewsArticle struct{ itemColumns }

type KubernetesEntry struct{ itemColumns }

type SREEntry struct{ itemColumns }

type DevToolsEntry struct{ itemColumns }

// CVERecord adds the vulnerability columns. CVEID is the natural key for
// this table since the same CVE shows up under different advisory links.
type CVERecord struct {
	itemColumns
	CVEID      string         `gorm:"size:32;uniqueIndex" json:"cveId"`
	CVSSScore  float64        `gorm:"index" json:"cvssScore"`
	Severity   string         `gorm:"size:16;index" json:"severity"`
	CWEIDs     datatypes.JSON `gorm:"type:jsonb" json:"cweIds"`
	References datatypes.JSON `gorm:"type:jsonb" json:"references"`
}

var topicTables = map[string]string{
	feed.TopicNews:       "news_articles",
	feed.TopicCVE:        "cve_records",
	feed.TopicKubernetes: "kubernetes_entries",
	feed.TopicSRE:        "sre_entries",
	feed.TopicDevTools:   "dev_tools_entries",
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
	Log   *zap.SugaredLogger
}

func NewStore(dsn, redisAddr string, log *zap.SugaredLogger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&NewsArticle{}, &CVERecord{}, &KubernetesEntry{}, &SREEntry{}, &DevToolsEntry{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnw("redis ping failed, cache disabled until it recovers", "err", err)
	}

	return &Store{DB: db, Redis: rdb, Log: log}, nil
}

// toValidUTF8 keeps malformed source bytes from breaking Postgres inserts.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunes caps a string by rune count so varchar columns never
// overflow on upstream surprises.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func columnsFromEntry(e feed.ProcessedEntry) itemColumns {
	return itemColumns{
		Title:                 truncateRunes(toValidUTF8(e.Title), 512),
		TranslatedTitle:       truncateRunes(toValidUTF8(e.TranslatedTitle), 512),
		Description:           toValidUTF8(e.Description),
		TranslatedDescription: toValidUTF8(e.TranslatedDescription),
		Link:                  e.Link,
		Source:                e.Source,
		Category:              e.Category,
		EntryType:             e.EntryType,
		Version:               truncateRunes(e.Version, 64),
		PublishedAt:           e.PublishedAt,
	}
}

func entryFromColumns(c itemColumns) feed.ProcessedEntry {
	return feed.ProcessedEntry{
		Entry: feed.Entry{
			Title:       c.Title,
			Description: c.Description,
			Link:        c.Link,
			PublishedAt: c.PublishedAt,
			Source:      c.Source,
			Category:    c.Category,
			EntryType:   c.EntryType,
			Version:     c.Version,
		},
		TranslatedTitle:       c.TranslatedTitle,
		TranslatedDescription: c.TranslatedDescription,
	}
}

// SaveBatch upserts a batch into the topic's table. Existing rows are
// matched by link (cve_id for vulnerabilities) and refreshed in place.
func (s *Store) SaveBatch(ctx context.Context, topic string, items []feed.ProcessedEntry) error {
	if _, ok := topicTables[topic]; !ok {
		return fmt.Errorf("unknown topic %q", topic)
	}
	for _, it := range items {
		if it.Link == "" {
			continue
		}
		var err error
		if topic == feed.TopicCVE {
			err = s.saveCVE(ctx, it)
		} else {
			err = s.saveItem(ctx, topic, it)
		}
		if err != nil {
			return fmt.Errorf("save %s: %w", it.Link, err)
		}
	}
	return nil
}

func (s *Store) saveItem(ctx context.Context, topic string, it feed.ProcessedEntry) error {
	cols := columnsFromEntry(it)
	record := recordWith(topic, cols)
	if err := s.DB.WithContext(ctx).Where("link = ?", it.Link).FirstOrCreate(record).Error; err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(record).Where("link = ?", it.Link).Updates(map[string]any{
		"title":                  cols.Title,
		"translated_title":       cols.TranslatedTitle,
		"description":            cols.Description,
		"translated_description": cols.TranslatedDescription,
		"source":                 cols.Source,
		"category":               cols.Category,
		"entry_type":             cols.EntryType,
		"version":                cols.Version,
		"published_at":           cols.PublishedAt,
	}).Error
}

func (s *Store) saveCVE(ctx context.Context, it feed.ProcessedEntry) error {
	key := it.CVEID
	if key == "" {
		key = it.Link
	}
	cwes, _ := json.Marshal(it.CWEIDs)
	refs, _ := json.Marshal(it.References)
	record := &CVERecord{
		itemColumns: columnsFromEntry(it),
		CVEID:       key,
		CVSSScore:   it.CVSSScore,
		Severity:    it.Severity,
		CWEIDs:      datatypes.JSON(cwes),
		References:  datatypes.JSON(refs),
	}
	if err := s.DB.WithContext(ctx).Where("cve_id = ?", key).FirstOrCreate(record).Error; err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Model(record).Where("cve_id = ?", key).Updates(map[string]any{
		"title":                  record.Title,
		"translated_title":       record.TranslatedTitle,
		"description":            record.Description,
		"translated_description": record.TranslatedDescription,
		"source":                 record.Source,
		"severity":               record.Severity,
		"cvss_score":             record.CVSSScore,
		"cwe_ids":                record.CWEIDs,
		"references":             record.References,
		"published_at":           record.PublishedAt,
	}).Error
}

// recordWith returns a typed record for the topic's table carrying the
// given columns.
func recordWith(topic string, cols itemColumns) any {
	switch topic {
	case feed.TopicNews:
		return &NewsArticle{itemColumns: cols}
	case feed.TopicKubernetes:
		return &KubernetesEntry{itemColumns: cols}
	case feed.TopicSRE:
		return &SREEntry{itemColumns: cols}
	default:
		return &DevToolsEntry{itemColumns: cols}
	}
}

// listRow covers the superset of topic columns; topics without the CVE
// columns scan them as zero values.
type listRow struct {
	itemColumns
	CVEID      string         `json:"cveId"`
	CVSSScore  float64        `json:"cvssScore"`
	Severity   string         `json:"severity"`
	CWEIDs     datatypes.JSON `json:"cweIds"`
	References datatypes.JSON `json:"references"`
}

func (r listRow) entry() feed.ProcessedEntry {
	pe := entryFromColumns(r.itemColumns)
	pe.CVEID = r.CVEID
	pe.CVSSScore = r.CVSSScore
	pe.Severity = r.Severity
	if len(r.CWEIDs) > 0 {
		_ = json.Unmarshal(r.CWEIDs, &pe.CWEIDs)
	}
	if len(r.References) > 0 {
		_ = json.Unmarshal(r.References, &pe.References)
	}
	return pe
}

// List serves the topic's entries cache-first, newest first, falling back
// to the database on a cold cache. A source filter narrows the result.
func (s *Store) List(ctx context.Context, topic string, limit int, source string) ([]feed.ProcessedEntry, error) {
	table, ok := topicTables[topic]
	if !ok {
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	if source == "" {
		if cached, ok := s.CachedItems(ctx, topic); ok {
			if len(cached) > limit {
				cached = cached[:limit]
			}
			return cached, nil
		}
	}

	db := s.DB.WithContext(ctx).Table(table)
	if source != "" {
		db = db.Where("source = ?", source)
	}
	var rows []listRow
	if err := db.Order("published_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", topic, err)
	}
	out := make([]feed.ProcessedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
	}
	return out, nil
}

// Export returns the topic's full archive, newest first.
func (s *Store) Export(ctx context.Context, topic string) ([]feed.ProcessedEntry, error) {
	table, ok := topicTables[topic]
	if !ok {
		return nil, fmt.Errorf("unknown topic %q", topic)
	}
	var rows []listRow
	if err := s.DB.WithContext(ctx).Table(table).Order("published_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("export %s: %w", topic, err)
	}
	out := make([]feed.ProcessedEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.entry())
	}
	return out, nil
}

// Clear removes the topic's archived rows. The serving cache is dropped
// separately via ClearCache.
func (s *Store) Clear(ctx context.Context, topic string) error {
	table, ok := topicTables[topic]
	if !ok {
		return fmt.Errorf("unknown topic %q", topic)
	}
	if err := s.DB.WithContext(ctx).Exec("DELETE FROM " + table).Error; err != nil {
		return fmt.Errorf("clear %s: %w", topic, err)
	}
	return nil
}

// Stats describes one topic's archive and cache state.
type Stats struct {
	Topic      string           `json:"topic"`
	Total      int64            `json:"total"`
	Cached     int              `json:"cached"`
	LastUpdate time.Time        `json:"lastUpdate"`
	BySource   map[string]int64 `json:"bySource"`
	// Populated for the vulnerability topic only.
	BySeverity map[string]int64 `json:"bySeverity,omitempty"`
}

func (s *Store) Stats(ctx context.Context, topic string) (Stats, error) {
	table, ok := topicTables[topic]
	if !ok {
		return Stats{}, fmt.Errorf("unknown topic %q", topic)
	}
	st := Stats{Topic: topic, BySource: make(map[string]int64)}
	if err := s.DB.WithContext(ctx).Table(table).Count(&st.Total).Error; err != nil {
		return Stats{}, fmt.Errorf("stats %s: %w", topic, err)
	}
	var rows []struct {
		Source string
		N      int64
	}
	if err := s.DB.WithContext(ctx).Table(table).
		Select("source, count(*) as n").
		Group("source").
		Scan(&rows).Error; err != nil {
		return Stats{}, fmt.Errorf("stats %s: %w", topic, err)
	}
	for _, r := range rows {
		st.BySource[r.Source] = r.N
	}
	if topic == feed.TopicCVE {
		var sevRows []struct {
			Severity string
			N        int64
		}
		if err := s.DB.WithContext(ctx).Table(table).
			Select("severity, count(*) as n").
			Group("severity").
			Scan(&sevRows).Error; err != nil {
			return Stats{}, fmt.Errorf("stats %s: %w", topic, err)
		}
		st.BySeverity = make(map[string]int64)
		for _, r := range sevRows {
			st.BySeverity[r.Severity] = r.N
		}
	}
	if cached, ok := s.CachedItems(ctx, topic); ok {
		st.Cached = len(cached)
	}
	st.LastUpdate = s.LastUpdate(ctx, topic)
	return st, nil
}
