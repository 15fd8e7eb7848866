// Package config loads service configuration from DELETEOP_* environment
// variables.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"deleteop/internal/domain/kind"
	"deleteop/internal/domain/settings"
)

// EnvProduction is the DELETEOP_ENV value that turns on production checks.
const EnvProduction = "production"

// labelEnv maps each label override variable to its settings key.
var labelEnv = map[string]string{
	"DELETEOP_DELETE_LABEL":       settings.KeyDeleteLabel,
	"DELETEOP_DELETE_LABEL_PAST":  settings.KeyDeleteLabelPast,
	"DELETEOP_PURGE_LABEL":        settings.KeyPurgeLabel,
	"DELETEOP_PURGE_LABEL_FUTURE": settings.KeyPurgeLabelFuture,
	"DELETEOP_PURGE_LABEL_PAST":   settings.KeyPurgeLabelPast,
}

// Config holds everything main needs to start the service.
type Config struct {
	Addr   string
	Env    string
	DBPath string

	// CSRFKey is 32 bytes. CSRFKeyGenerated reports a random per-process key.
	CSRFKey          []byte
	CSRFKeyGenerated bool
	TrustedOrigins   []string

	// LifecycleKinds is the explicit opt-in mapping; empty keeps stored flags.
	LifecycleKinds map[string]bool
	// LabelOverrides are settings written at startup, keyed by settings key.
	LabelOverrides map[string]string

	ResendKey    string
	ResendFrom   string
	NotifyEmails []string

	KindCacheTTL  time.Duration
	KindCacheSize int
	SessionTTL    time.Duration

	SlowQueryMs   int
	SlowRequestMs int
	RateLimit     int // requests per second per IP; 0 disables

	LogLevel  slog.Level
	LogFormat string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	ShutdownTimeout  time.Duration
}

// IsProduction reports whether DELETEOP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configuration from the environment.
// PRE: none
// POST: Returns a fully defaulted Config, or an error naming the bad variable
func Load() (*Config, error) {
	cfg := &Config{
		Addr:       getEnvDefault("DELETEOP_ADDR", ":8080"),
		Env:        getEnvDefault("DELETEOP_ENV", "development"),
		DBPath:     getEnvDefault("DELETEOP_DB_PATH", "deleteop.db"),
		ResendKey:  os.Getenv("DELETEOP_RESEND_KEY"),
		ResendFrom: getEnvDefault("DELETEOP_RESEND_FROM", "deleteop <noreply@example.com>"),
	}
	var err error

	cfg.CSRFKey, cfg.CSRFKeyGenerated, err = loadCSRFKey(os.Getenv("DELETEOP_CSRF_KEY"), cfg.IsProduction(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("DELETEOP_CSRF_KEY: %w", err)
	}
	cfg.TrustedOrigins = splitList(getEnvDefault("DELETEOP_TRUSTED_ORIGINS", "localhost:8080,127.0.0.1:8080"))
	cfg.NotifyEmails = splitList(os.Getenv("DELETEOP_NOTIFY_EMAIL"))

	cfg.LifecycleKinds, err = kind.ParseLifecycleKinds(os.Getenv("DELETEOP_LIFECYCLE_KINDS"))
	if err != nil {
		return nil, fmt.Errorf("DELETEOP_LIFECYCLE_KINDS: %w", err)
	}

	cfg.LabelOverrides = make(map[string]string)
	for env, key := range labelEnv {
		v := strings.TrimSpace(os.Getenv(env))
		if v == "" {
			continue
		}
		s := settings.Setting{Key: key, Value: v}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", env, err)
		}
		cfg.LabelOverrides[key] = v
	}

	if cfg.KindCacheTTL, err = getEnvDuration("DELETEOP_KIND_CACHE_TTL", time.Minute); err != nil {
		return nil, fmt.Errorf("DELETEOP_KIND_CACHE_TTL: %w", err)
	}
	if cfg.KindCacheSize, err = getEnvInt("DELETEOP_KIND_CACHE_SIZE", 256); err != nil {
		return nil, fmt.Errorf("DELETEOP_KIND_CACHE_SIZE: %w", err)
	}
	if cfg.SessionTTL, err = getEnvDuration("DELETEOP_SESSION_TTL", 24*time.Hour); err != nil {
		return nil, fmt.Errorf("DELETEOP_SESSION_TTL: %w", err)
	}
	if cfg.SlowQueryMs, err = getEnvInt("DELETEOP_SLOW_QUERY_MS", 50); err != nil {
		return nil, fmt.Errorf("DELETEOP_SLOW_QUERY_MS: %w", err)
	}
	if cfg.SlowRequestMs, err = getEnvInt("DELETEOP_SLOW_REQUEST_MS", 200); err != nil {
		return nil, fmt.Errorf("DELETEOP_SLOW_REQUEST_MS: %w", err)
	}
	if cfg.RateLimit, err = getEnvInt("DELETEOP_RATE_LIMIT", 10); err != nil {
		return nil, fmt.Errorf("DELETEOP_RATE_LIMIT: %w", err)
	}

	if cfg.LogLevel, err = parseLogLevel(getEnvDefault("DELETEOP_LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("DELETEOP_LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = getEnvDefault("DELETEOP_LOG_FORMAT", "text")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("DELETEOP_LOG_FORMAT: invalid format %q, want json or text", cfg.LogFormat)
	}

	if cfg.HTTPReadTimeout, err = getEnvDuration("DELETEOP_HTTP_READ_TIMEOUT", 15*time.Second); err != nil {
		return nil, fmt.Errorf("DELETEOP_HTTP_READ_TIMEOUT: %w", err)
	}
	if cfg.HTTPWriteTimeout, err = getEnvDuration("DELETEOP_HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, fmt.Errorf("DELETEOP_HTTP_WRITE_TIMEOUT: %w", err)
	}
	if cfg.HTTPIdleTimeout, err = getEnvDuration("DELETEOP_HTTP_IDLE_TIMEOUT", 120*time.Second); err != nil {
		return nil, fmt.Errorf("DELETEOP_HTTP_IDLE_TIMEOUT: %w", err)
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("DELETEOP_SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, fmt.Errorf("DELETEOP_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// SetupLogger installs the global slog logger described by cfg.
func SetupLogger(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// loadCSRFKey decodes a 64-hex-character key. Outside production an empty
// value yields a random key.
func loadCSRFKey(keyHex string, production bool, random io.Reader) ([]byte, bool, error) {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			return nil, false, fmt.Errorf("must be 64 hex characters (32 bytes)")
		}
		return key, false, nil
	}
	if production {
		return nil, false, fmt.Errorf("required in production")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(random, key); err != nil {
		return nil, false, fmt.Errorf("generate key: %w", err)
	}
	return key, true, nil
}

func getEnvDefault(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", val)
	}
	if n < 0 {
		return 0, fmt.Errorf("must be >= 0, got %d", n)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (use Go format: 30s, 1h, 15m)", val)
	}
	return d, nil
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid level %q, want debug, info, warn or error", level)
	}
}
