package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Notifier  NotifierConfig
	Realtime  RealtimeConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Host                    string
	Port                    int
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	GracefulShutdownTimeout time.Duration
	PublicRateLimitRPM      int
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type RedisConfig struct {
	URL string
}

type SchedulerConfig struct {
	Interval     time.Duration
	FetchTimeout time.Duration
	FeedURLs     []string
	Keywords     []string
	WorkerCount  int
	RateLimit    float64
}

type NotifierConfig struct {
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	FromAddress    string
	WhatsAppAPIURL string
	WhatsAppToken  string
	CountryCode    string
	PreviewLength  int
}

type RealtimeConfig struct {
	NATSURL string
	Subject string
}

type LoggingConfig struct {
	Level  string
	Format string // json or text
}

type MetricsConfig struct {
	Enabled bool
	Port    int
	Path    string
}

type AdminConfig struct {
	AdminSecret string
}

// defaultKeywords is the baseline watch list; override with SCHEDULER_KEYWORDS.
const defaultKeywords = "attack,killed,kidnap,gunmen,violence,clash,riot,bomb,herdsmen,banditry,insurgent,massacre"

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:                    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:                    getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:             getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:            getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:             getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			GracefulShutdownTimeout: getEnvDuration("SERVER_GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
			PublicRateLimitRPM:      getEnvInt("SERVER_PUBLIC_RATE_LIMIT_RPM", 30),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvDuration("DB_MAX_CONN_LIFETIME", 1*time.Hour),
			MaxConnIdleTime: getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Scheduler: SchedulerConfig{
			Interval:     getEnvDuration("SCHEDULER_INTERVAL", 60*time.Second),
			FetchTimeout: getEnvDuration("SCHEDULER_FETCH_TIMEOUT", 10*time.Second),
			FeedURLs:     getEnvList("SCHEDULER_FEED_URLS", "https://rss.punchng.com/v1/category/latest_news,https://www.vanguardngr.com/feed,https://guardian.ng/feed"),
			Keywords:     getEnvList("SCHEDULER_KEYWORDS", defaultKeywords),
			WorkerCount:  getEnvInt("SCHEDULER_WORKER_COUNT", 4),
			RateLimit:    getEnvFloat("SCHEDULER_RATE_LIMIT", 5.0),
		},
		Notifier: NotifierConfig{
			SMTPHost:       getEnv("SMTP_HOST", ""),
			SMTPPort:       getEnvInt("SMTP_PORT", 587),
			SMTPUsername:   getEnv("SMTP_USERNAME", ""),
			SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
			FromAddress:    getEnv("SMTP_FROM", "alerts@peacewatch.local"),
			WhatsAppAPIURL: getEnv("WHATSAPP_API_URL", ""),
			WhatsAppToken:  getEnv("WHATSAPP_TOKEN", ""),
			CountryCode:    getEnv("NOTIFIER_COUNTRY_CODE", "+234"),
			PreviewLength:  getEnvInt("NOTIFIER_PREVIEW_LENGTH", 200),
		},
		Realtime: RealtimeConfig{
			NATSURL: getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_SUBJECT", "peacewatch.alerts"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Port:    getEnvInt("METRICS_PORT", 9090),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		Admin: AdminConfig{
			AdminSecret: getEnv("ADMIN_SECRET", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}
	if c.Scheduler.Interval < time.Second {
		return fmt.Errorf("scheduler interval must be at least 1s")
	}
	if c.Scheduler.WorkerCount < 1 {
		return fmt.Errorf("scheduler worker count must be at least 1")
	}
	if len(c.Scheduler.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	if !strings.HasPrefix(c.Notifier.CountryCode, "+") {
		return fmt.Errorf("country code must start with '+': %s", c.Notifier.CountryCode)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated env var, trimming whitespace and
// lowercasing nothing; empty entries are dropped.
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
