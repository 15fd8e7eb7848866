package config

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"deleteop/internal/domain/settings"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "deleteop.db" || cfg.Env != "development" {
		t.Errorf("server defaults = %q %q %q", cfg.Addr, cfg.DBPath, cfg.Env)
	}
	if len(cfg.CSRFKey) != 32 || !cfg.CSRFKeyGenerated {
		t.Errorf("dev CSRF key: len=%d generated=%v", len(cfg.CSRFKey), cfg.CSRFKeyGenerated)
	}
	if len(cfg.LifecycleKinds) != 0 || len(cfg.LabelOverrides) != 0 {
		t.Error("no kinds or overrides expected by default")
	}
	if cfg.KindCacheTTL != time.Minute || cfg.SlowQueryMs != 50 || cfg.RateLimit != 10 {
		t.Errorf("tuning defaults = %v %d %d", cfg.KindCacheTTL, cfg.SlowQueryMs, cfg.RateLimit)
	}
	if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
		t.Errorf("log defaults = %v %s", cfg.LogLevel, cfg.LogFormat)
	}
	if len(cfg.TrustedOrigins) != 2 {
		t.Errorf("TrustedOrigins = %v", cfg.TrustedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DELETEOP_ADDR", ":9090")
	t.Setenv("DELETEOP_LIFECYCLE_KINDS", "article, Page ,")
	t.Setenv("DELETEOP_PURGE_LABEL_PAST", "removed")
	t.Setenv("DELETEOP_NOTIFY_EMAIL", "a@example.com, b@example.com")
	t.Setenv("DELETEOP_KIND_CACHE_TTL", "30s")
	t.Setenv("DELETEOP_LOG_LEVEL", "DEBUG")
	t.Setenv("DELETEOP_LOG_FORMAT", "json")
	t.Setenv("DELETEOP_CSRF_KEY", strings.Repeat("ab", 32))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if !cfg.LifecycleKinds["article"] || !cfg.LifecycleKinds["page"] || len(cfg.LifecycleKinds) != 2 {
		t.Errorf("LifecycleKinds = %v", cfg.LifecycleKinds)
	}
	if cfg.LabelOverrides[settings.KeyPurgeLabelPast] != "removed" {
		t.Errorf("LabelOverrides = %v", cfg.LabelOverrides)
	}
	if len(cfg.NotifyEmails) != 2 || cfg.NotifyEmails[1] != "b@example.com" {
		t.Errorf("NotifyEmails = %v", cfg.NotifyEmails)
	}
	if cfg.KindCacheTTL != 30*time.Second {
		t.Errorf("KindCacheTTL = %v", cfg.KindCacheTTL)
	}
	if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
		t.Errorf("log = %v %s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.CSRFKeyGenerated || cfg.CSRFKey[0] != 0xab {
		t.Error("explicit CSRF key should be decoded")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		env, value, want string
	}{
		{"DELETEOP_LIFECYCLE_KINDS", "article,Bad-Kind", "DELETEOP_LIFECYCLE_KINDS"},
		{"DELETEOP_SLOW_QUERY_MS", "fast", "DELETEOP_SLOW_QUERY_MS"},
		{"DELETEOP_RATE_LIMIT", "-1", "DELETEOP_RATE_LIMIT"},
		{"DELETEOP_KIND_CACHE_TTL", "soon", "DELETEOP_KIND_CACHE_TTL"},
		{"DELETEOP_LOG_LEVEL", "verbose", "DELETEOP_LOG_LEVEL"},
		{"DELETEOP_LOG_FORMAT", "xml", "DELETEOP_LOG_FORMAT"},
		{"DELETEOP_CSRF_KEY", "short", "DELETEOP_CSRF_KEY"},
		{"DELETEOP_DELETE_LABEL", strings.Repeat("x", settings.MaxValueLength+1), "DELETEOP_DELETE_LABEL"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestLoad_ProductionRequiresCSRFKey(t *testing.T) {
	t.Setenv("DELETEOP_ENV", "production")
	if _, err := Load(); err == nil {
		t.Error("expected error without DELETEOP_CSRF_KEY in production")
	}

	t.Setenv("DELETEOP_CSRF_KEY", strings.Repeat("0f", 32))
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction = false")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestLoadCSRFKey_RandomFailure(t *testing.T) {
	if _, _, err := loadCSRFKey("", false, failingReader{}); err == nil {
		t.Error("expected error when randomness fails")
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	SetupLogger(&Config{LogLevel: slog.LevelWarn, LogFormat: "json"}, &buf)
	slog.Info("hidden")
	slog.Warn("record_event", "event", "record_deleted")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info line should be filtered at warn level")
	}
	if !strings.Contains(out, `"event":"record_deleted"`) {
		t.Errorf("output = %q, want JSON warn line", out)
	}
}
