// Package config centralizes the agent's configuration. Everything is read
// from environment variables with documented defaults; invalid values are
// fatal at startup, never discovered mid-call.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Artifact backend names accepted by TRYON_ARTIFACT_BACKEND.
const (
	BackendFS     = "fs"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Error reports an invalid or missing configuration value. It is fatal at
// startup.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
}

// Config holds every tunable the agent consumes.
type Config struct {
	// AnthropicKey is the API key for the conversational model.
	AnthropicKey string

	// GeminiKey is the API key for the image-generation model.
	GeminiKey string

	// GeminiModel is the image-generation model identifier.
	GeminiModel string

	// Cooldown is the minimum interval between accepted generation calls.
	Cooldown time.Duration

	// ArtifactBackend selects the artifact store: fs, redis or memory.
	ArtifactBackend string

	// ArtifactDir is the fs backend's directory.
	ArtifactDir string

	// RedisAddr is the redis backend's address.
	RedisAddr string

	// CatalogDir holds the garment catalog images.
	CatalogDir string

	// ReferencePrefix and ResultPrefix override the artifact class names.
	ReferencePrefix string
	ResultPrefix    string

	// RatioExactPct and RatioAcceptPct are the aspect-ratio tolerances.
	RatioExactPct  float64
	RatioAcceptPct float64

	// GenerationTimeout bounds each external generation call.
	GenerationTimeout time.Duration

	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string

	// MaxTurns bounds the model conversation loop per user message.
	MaxTurns int
}

// Load reads the environment, applying defaults. Unparseable or out-of-range
// values return a *Error.
func Load() (Config, error) {
	cfg := Config{
		AnthropicKey:    os.Getenv("ANTHROPIC_API_KEY"),
		GeminiKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("TRYON_GEMINI_MODEL", "gemini-2.5-flash-image-preview"),
		ArtifactBackend: envOr("TRYON_ARTIFACT_BACKEND", BackendFS),
		ArtifactDir:     envOr("TRYON_ARTIFACT_DIR", "artifacts"),
		RedisAddr:       envOr("TRYON_REDIS_ADDR", "localhost:6379"),
		CatalogDir:      envOr("TRYON_CATALOG_DIR", "catalog"),
		ReferencePrefix: envOr("TRYON_REFERENCE_PREFIX", "reference_image"),
		ResultPrefix:    envOr("TRYON_RESULT_PREFIX", "tryon_result"),
		MetricsAddr:     os.Getenv("TRYON_METRICS_ADDR"),
	}

	cooldownSec, err := envFloat("RATE_LIMIT_COOLDOWN", 5.0)
	if err != nil {
		return Config{}, err
	}
	if cooldownSec < 0 {
		return Config{}, &Error{Key: "RATE_LIMIT_COOLDOWN", Reason: "must not be negative"}
	}
	cfg.Cooldown = time.Duration(cooldownSec * float64(time.Second))

	cfg.RatioExactPct, err = envFloat("TRYON_RATIO_EXACT_PCT", 2.0)
	if err != nil {
		return Config{}, err
	}
	cfg.RatioAcceptPct, err = envFloat("TRYON_RATIO_ACCEPT_PCT", 15.0)
	if err != nil {
		return Config{}, err
	}
	if cfg.RatioExactPct < 0 || cfg.RatioAcceptPct < cfg.RatioExactPct {
		return Config{}, &Error{Key: "TRYON_RATIO_EXACT_PCT", Reason: "must satisfy 0 <= exact <= acceptable"}
	}

	cfg.GenerationTimeout, err = envDuration("TRYON_GENERATION_TIMEOUT", 90*time.Second)
	if err != nil {
		return Config{}, err
	}

	cfg.MaxTurns, err = envInt("TRYON_MAX_TURNS", 8)
	if err != nil {
		return Config{}, err
	}
	if cfg.MaxTurns < 1 {
		return Config{}, &Error{Key: "TRYON_MAX_TURNS", Reason: "must be at least 1"}
	}

	switch cfg.ArtifactBackend {
	case BackendFS, BackendRedis, BackendMemory:
	default:
		return Config{}, &Error{Key: "TRYON_ARTIFACT_BACKEND", Reason: fmt.Sprintf("unknown backend %q (want fs, redis or memory)", cfg.ArtifactBackend)}
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &Error{Key: key, Reason: fmt.Sprintf("not a number: %q", v)}
	}
	return f, nil
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &Error{Key: key, Reason: fmt.Sprintf("not an integer: %q", v)}
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, &Error{Key: key, Reason: fmt.Sprintf("not a duration: %q", v)}
	}
	if d < 0 {
		return 0, &Error{Key: key, Reason: "must not be negative"}
	}
	return d, nil
}
