package config

import (
	"os"
	"strconv"
)

// Config holds all Sawmill configuration.
type Config struct {
	Server ServerConfig
	Engine EngineConfig
	Store  StoreConfig
	Notify NotifyConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr string
}

// EngineConfig holds analysis pipeline settings.
type EngineConfig struct {
	TaxonomyPath        string // empty means the built-in default taxonomy
	ConfidenceThreshold float64
	EnableStatistical   bool
	MaxEvents           int // most-recent event cap applied by the normalizer
}

// StoreConfig holds build record store settings.
type StoreConfig struct {
	Backend string // "memory" or "sqlite"
	DBPath  string
}

// NotifyConfig holds notification sink settings. Sinks is a comma-separated
// list of enabled sinks ("file", "webhook"); empty disables notification.
type NotifyConfig struct {
	Sinks      string
	FilePath   string
	WebhookURL string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: getenv("SAWMILL_LISTEN_ADDR", "127.0.0.1:8000"),
		},
		Engine: EngineConfig{
			TaxonomyPath:        os.Getenv("SAWMILL_TAXONOMY_PATH"),
			ConfidenceThreshold: getenvFloat("SAWMILL_CONFIDENCE_THRESHOLD", 0.55),
			EnableStatistical:   getenv("SAWMILL_ENABLE_STATISTICAL", "0") == "1",
			MaxEvents:           getenvInt("SAWMILL_MAX_EVENTS", 2000),
		},
		Store: StoreConfig{
			Backend: getenv("SAWMILL_STORE", "memory"),
			DBPath:  getenv("SAWMILL_DB_PATH", "sawmill.db"),
		},
		Notify: NotifyConfig{
			Sinks:      os.Getenv("SAWMILL_NOTIFY"),
			FilePath:   getenv("SAWMILL_NOTIFY_FILE", "sawmill-notices.ndjson"),
			WebhookURL: os.Getenv("SAWMILL_NOTIFY_WEBHOOK_URL"),
		},
		Log: LogConfig{
			Level: getenv("SAWMILL_LOG_LEVEL", "info"),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
