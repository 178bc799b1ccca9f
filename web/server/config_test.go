package server

import (
	"strings"
	"testing"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/log"
)

var configKeys = []string{
	"TRACER_ADDR", "TRACER_SCENES_DIR", "TRACER_STATIC_DIR", "TRACER_ALLOWED_ORIGINS",
	"TRACER_MAX_WIDTH", "TRACER_MAX_HEIGHT", "TRACER_MAX_SAMPLES", "TRACER_MAX_PASSES",
	"TRACER_WORKERS", "TRACER_PING_INTERVAL", "TRACER_MAX_PAYLOAD_BYTES", "TRACER_LOG_LEVEL",
}

func clearConfigEnv(t *testing.T) {
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.Address != DefaultAddr {
		t.Fatalf("expected default addr %q, got %q", DefaultAddr, cfg.Address)
	}
	if cfg.ScenesDir != DefaultScenesDir {
		t.Fatalf("expected default scenes dir %q, got %q", DefaultScenesDir, cfg.ScenesDir)
	}
	if cfg.AllowedOrigins != nil {
		t.Fatalf("expected no allowed origins, got %#v", cfg.AllowedOrigins)
	}
	if cfg.MaxWidth != DefaultMaxWidth || cfg.MaxHeight != DefaultMaxHeight {
		t.Fatalf("expected default max size %dx%d, got %dx%d", DefaultMaxWidth, DefaultMaxHeight, cfg.MaxWidth, cfg.MaxHeight)
	}
	if cfg.PingInterval != DefaultPingInterval {
		t.Fatalf("expected default ping interval %v, got %v", DefaultPingInterval, cfg.PingInterval)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %v, got %v", DefaultLogLevel, cfg.LogLevel)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TRACER_ADDR", "127.0.0.1:9000")
	t.Setenv("TRACER_SCENES_DIR", "/srv/scenes")
	t.Setenv("TRACER_ALLOWED_ORIGINS", "https://example.com, https://demo.local")
	t.Setenv("TRACER_MAX_WIDTH", "640")
	t.Setenv("TRACER_MAX_SAMPLES", "256")
	t.Setenv("TRACER_WORKERS", "3")
	t.Setenv("TRACER_PING_INTERVAL", "45s")
	t.Setenv("TRACER_MAX_PAYLOAD_BYTES", "1024")
	t.Setenv("TRACER_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("unexpected address: %q", cfg.Address)
	}
	if cfg.ScenesDir != "/srv/scenes" {
		t.Fatalf("unexpected scenes dir: %q", cfg.ScenesDir)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://example.com" || cfg.AllowedOrigins[1] != "https://demo.local" {
		t.Fatalf("unexpected allowed origins: %#v", cfg.AllowedOrigins)
	}
	if cfg.MaxWidth != 640 || cfg.MaxHeight != DefaultMaxHeight {
		t.Fatalf("unexpected max size %dx%d", cfg.MaxWidth, cfg.MaxHeight)
	}
	if cfg.MaxSamples != 256 || cfg.NumWorkers != 3 {
		t.Fatalf("unexpected limits: samples=%d workers=%d", cfg.MaxSamples, cfg.NumWorkers)
	}
	if cfg.PingInterval != 45*time.Second {
		t.Fatalf("unexpected ping interval: %v", cfg.PingInterval)
	}
	if cfg.MaxPayloadBytes != 1024 {
		t.Fatalf("unexpected max payload: %d", cfg.MaxPayloadBytes)
	}
	if cfg.LogLevel != log.Debug {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestLoadConfigReportsEveryProblem(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TRACER_MAX_WIDTH", "-5")
	t.Setenv("TRACER_WORKERS", "many")
	t.Setenv("TRACER_PING_INTERVAL", "soon")
	t.Setenv("TRACER_LOG_LEVEL", "loud")

	_, err := LoadConfig()
	if err == nil {
		t.Fatal("expected error for invalid overrides")
	}
	for _, key := range []string{"TRACER_MAX_WIDTH", "TRACER_WORKERS", "TRACER_PING_INTERVAL", "TRACER_LOG_LEVEL"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("expected error to mention %s, got %v", key, err)
		}
	}
}
