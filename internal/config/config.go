// Package config loads runtime settings from the environment with sane
// local-development defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/AdanedhelWrites/teknoloji-radar/internal/feed"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	// Collection window and caps shared by every topic.
	FetchDays int
	MaxItems  int

	// One cron spec per topic; empty disables that topic's job.
	CronSpecs map[string]string

	TranslateEnabled bool
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app_port", "9000")
	v.SetDefault("postgres_dsn", "host=localhost user=radar password=radar dbname=radar port=5432 sslmode=disable TimeZone=UTC")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("fetch_days", 7)
	v.SetDefault("max_items", 30)
	v.SetDefault("translate_enabled", true)
	v.SetDefault("cron_news", "0 */2 * * *")
	v.SetDefault("cron_cve", "30 */4 * * *")
	v.SetDefault("cron_kubernetes", "0 6 * * *")
	v.SetDefault("cron_sre", "15 7 * * *")
	v.SetDefault("cron_devtools", "45 7 * * *")

	return &Config{
		AppPort:     v.GetString("app_port"),
		PostgresDSN: v.GetString("postgres_dsn"),
		RedisAddr:   v.GetString("redis_addr"),
		FetchDays:   v.GetInt("fetch_days"),
		MaxItems:    v.GetInt("max_items"),
		CronSpecs: map[string]string{
			feed.TopicNews:       v.GetString("cron_news"),
			feed.TopicCVE:        v.GetString("cron_cve"),
			feed.TopicKubernetes: v.GetString("cron_kubernetes"),
			feed.TopicSRE:        v.GetString("cron_sre"),
			feed.TopicDevTools:   v.GetString("cron_devtools"),
		},
		TranslateEnabled: v.GetBool("translate_enabled"),
	}
}
