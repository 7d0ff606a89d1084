package config

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/logtrends/pkg/plural"
)

// Config holds all configuration for the logtrends server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
	Tracing   TracingConfig
}

type ServerConfig struct {
	Port        int
	Env         string
	LogLevel    slog.Level
	CORSOrigins []string
	// TrustProxy trusts X-Forwarded-For for client identification.
	TrustProxy bool
}

type DatabaseConfig struct {
	URL              string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	StatementTimeout time.Duration
	AutoMigrate      bool
}

// RedisConfig is optional. An empty URL disables the response cache and rate limiting.
type RedisConfig struct {
	URL            string
	CacheTTL       time.Duration
	RequestsPerMin int
}

type AnalyticsConfig struct {
	// ReferenceTime pins "now" for every request when set.
	ReferenceTime *time.Time
	Locale        string
	MaxHours      float64
}

type TracingConfig struct {
	Endpoint    string
	ServiceName string
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        envInt("LOGTRENDS_PORT", 8080),
			Env:         envString("LOGTRENDS_ENV", "development"),
			CORSOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			TrustProxy:  envBool("TRUST_PROXY_HEADERS", false),
		},
		Database: DatabaseConfig{
			URL:              databaseURL(),
			MaxOpenConns:     envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			StatementTimeout: envDuration("DATABASE_STATEMENT_TIMEOUT", 30*time.Second),
			AutoMigrate:      envBool("DATABASE_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			URL:            os.Getenv("REDIS_URL"),
			CacheTTL:       envDuration("CACHE_TTL", 30*time.Second),
			RequestsPerMin: envInt("RATE_LIMIT_RPM", 120),
		},
		Analytics: AnalyticsConfig{
			Locale:   envString("LOGTRENDS_LOCALE", plural.DefaultLocale),
			MaxHours: envFloat("LOGTRENDS_MAX_HOURS", 720),
		},
		Tracing: TracingConfig{
			Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			ServiceName: envString("OTEL_SERVICE_NAME", "logtrends"),
		},
	}

	level, err := parseLevel(envString("LOGTRENDS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.Server.LogLevel = level

	if v := os.Getenv("LOGTRENDS_REFERENCE_TIME"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("LOGTRENDS_REFERENCE_TIME must be an RFC3339 timestamp, got %q", v)
		}
		t = t.UTC()
		cfg.Analytics.ReferenceTime = &t
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required (or HOST, USER, PASSWORD and DBNAME)")
	}
	if !strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DATABASE_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns)
	}

	if c.Redis.URL != "" && !strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://, got %q", c.Redis.URL)
	}

	if _, ok := plural.Lookup(c.Analytics.Locale); !ok {
		return fmt.Errorf("LOGTRENDS_LOCALE must be one of ru, en; got %q", c.Analytics.Locale)
	}
	if math.IsNaN(c.Analytics.MaxHours) || math.IsInf(c.Analytics.MaxHours, 0) || c.Analytics.MaxHours <= 0 {
		return fmt.Errorf("LOGTRENDS_MAX_HOURS must be a positive finite number, got %v", c.Analytics.MaxHours)
	}

	return nil
}

// databaseURL prefers DATABASE_URL and falls back to the discrete
// HOST/USER/PASSWORD/DBNAME (plus optional DBPORT, SSLMODE) variables.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host, name := os.Getenv("HOST"), os.Getenv("DBNAME")
	if host == "" || name == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(os.Getenv("USER"), os.Getenv("PASSWORD")),
		Host:   host + ":" + envString("DBPORT", "5432"),
		Path:   "/" + name,
	}
	if mode := os.Getenv("SSLMODE"); mode != "" {
		u.RawQuery = url.Values{"sslmode": {mode}}.Encode()
	}
	return u.String()
}

func parseLevel(v string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("LOGTRENDS_LOG_LEVEL must be one of debug, info, warn, error; got %q", v)
	}
	return level, nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
