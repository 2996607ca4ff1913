package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	InferenceBase string
	InferenceKey  string
	WebhookSecret string
	Workers       int
	TopK          int
	CacheTTL      time.Duration
	SessionTTL    time.Duration
	HistoryWindow int
	ChatTimeout   time.Duration
	QuickTimeout  time.Duration
	CacheTimeout  time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/lodgechat?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		InferenceBase: env("INFERENCE_BASE_URL", "http://localhost:9001/v1"),
		InferenceKey:  env("INFERENCE_API_KEY", ""),
		WebhookSecret: env("REINDEX_WEBHOOK_SECRET", ""),
		Workers:       atoi("INDEX_WORKERS", 8),
		TopK:          atoi("RETRIEVAL_TOP_K", 5),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SessionTTL:    time.Duration(atoi("SESSION_TTL_SECONDS", 1800)) * time.Second,
		HistoryWindow: atoi("SESSION_HISTORY_WINDOW", 10),
		ChatTimeout:   time.Duration(atoi("CHAT_TIMEOUT_MS", 8000)) * time.Millisecond,
		QuickTimeout:  time.Duration(atoi("QUICK_TIMEOUT_MS", 800)) * time.Millisecond,
		CacheTimeout:  time.Duration(atoi("CACHE_TIMEOUT_MS", 250)) * time.Millisecond,
	}
	if c.InferenceKey == "" {
		log.Warn().Msg("INFERENCE_API_KEY is empty")
	}
	if c.WebhookSecret == "" {
		log.Warn().Msg("REINDEX_WEBHOOK_SECRET is empty; reindex webhook disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
