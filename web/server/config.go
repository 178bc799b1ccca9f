package server

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/log"
)

const (
	// DefaultAddr is the TCP address the server listens on
	DefaultAddr = ":8080"
	// DefaultScenesDir is scanned for JSON and compiled scene files
	DefaultScenesDir = "scenes"
	// DefaultStaticDir holds the browser viewer
	DefaultStaticDir = "web/static"
	// DefaultMaxWidth and DefaultMaxHeight bound requested resolutions
	DefaultMaxWidth  = 2000
	DefaultMaxHeight = 2000
	// DefaultMaxSamples bounds the samples per pixel of one render
	DefaultMaxSamples = 10000
	// DefaultMaxPasses bounds the passes of one render
	DefaultMaxPasses = 10000
	// DefaultPingInterval is the keepalive cadence of render sockets
	DefaultPingInterval = 30 * time.Second
	// DefaultMaxPayloadBytes limits inbound websocket command size
	DefaultMaxPayloadBytes int64 = 4096
	// DefaultLogLevel controls verbosity of server logs
	DefaultLogLevel = log.Notice
)

// Config captures the runtime tunables of the web server
type Config struct {
	Address         string
	ScenesDir       string
	StaticDir       string
	AllowedOrigins  []string
	MaxWidth        int
	MaxHeight       int
	MaxSamples      int
	MaxPasses       int
	NumWorkers      int
	PingInterval    time.Duration
	MaxPayloadBytes int64
	LogLevel        log.Level
}

// DefaultConfig returns the configuration used when no overrides are set
func DefaultConfig() *Config {
	return &Config{
		Address:         DefaultAddr,
		ScenesDir:       DefaultScenesDir,
		StaticDir:       DefaultStaticDir,
		MaxWidth:        DefaultMaxWidth,
		MaxHeight:       DefaultMaxHeight,
		MaxSamples:      DefaultMaxSamples,
		MaxPasses:       DefaultMaxPasses,
		PingInterval:    DefaultPingInterval,
		MaxPayloadBytes: DefaultMaxPayloadBytes,
		LogLevel:        DefaultLogLevel,
	}
}

// LoadConfig reads the server configuration from TRACER_* environment
// variables, applying defaults and reporting every invalid override.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Address = getString("TRACER_ADDR", DefaultAddr)
	cfg.ScenesDir = getString("TRACER_SCENES_DIR", DefaultScenesDir)
	cfg.StaticDir = getString("TRACER_STATIC_DIR", DefaultStaticDir)
	cfg.AllowedOrigins = parseList(os.Getenv("TRACER_ALLOWED_ORIGINS"))

	var problems []string

	positiveInts := []struct {
		key    string
		target *int
	}{
		{"TRACER_MAX_WIDTH", &cfg.MaxWidth},
		{"TRACER_MAX_HEIGHT", &cfg.MaxHeight},
		{"TRACER_MAX_SAMPLES", &cfg.MaxSamples},
		{"TRACER_MAX_PASSES", &cfg.MaxPasses},
	}
	for _, item := range positiveInts {
		if raw := strings.TrimSpace(os.Getenv(item.key)); raw != "" {
			value, err := strconv.Atoi(raw)
			if err != nil || value <= 0 {
				problems = append(problems, fmt.Sprintf("%s must be a positive integer, got %q", item.key, raw))
			} else {
				*item.target = value
			}
		}
	}

	if raw := strings.TrimSpace(os.Getenv("TRACER_WORKERS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("TRACER_WORKERS must be a non-negative integer, got %q", raw))
		} else {
			cfg.NumWorkers = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("TRACER_PING_INTERVAL")); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil || duration <= 0 {
			problems = append(problems, fmt.Sprintf("TRACER_PING_INTERVAL must be a positive duration, got %q", raw))
		} else {
			cfg.PingInterval = duration
		}
	}

	if raw := strings.TrimSpace(os.Getenv("TRACER_MAX_PAYLOAD_BYTES")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("TRACER_MAX_PAYLOAD_BYTES must be a positive integer, got %q", raw))
		} else {
			cfg.MaxPayloadBytes = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("TRACER_LOG_LEVEL")); raw != "" {
		level, err := log.ParseLevel(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("TRACER_LOG_LEVEL must be one of debug, info, notice, warning, error, got %q", raw))
		} else {
			cfg.LogLevel = level
		}
	}

	if len(problems) > 0 {
		return nil, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			values = append(values, item)
		}
	}
	return values
}
