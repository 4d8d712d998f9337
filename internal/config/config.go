// Package config parses the environment variables spec.md §6 lists into a
// validated Config, following the teacher's FromEnv/Validate/parseEnvX
// convention from its own config package.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every environment-variable-driven tunable the core consults.
// Defaults match spec.md's component-level defaults (§4.3, §4.5).
type Config struct {
	// Timeout is the per-task timeout. CODEX_TIMEOUT is interpreted as
	// seconds, except values > 10000 which are treated as already being
	// milliseconds (spec.md §6).
	Timeout time.Duration

	SkipPermissions bool
	MaxParallelWorkers int
	Quiet           bool
	ASCIIMode       bool
	BackendOutput   bool
	Debug           bool
	Backend         string
	Model           string

	StderrBufferSize int

	LoggerFlushInterval time.Duration
	LoggerQueueSize     int
	LoggerCloseTimeout  time.Duration

	PerformanceMetrics bool

	// MaxSpawnPerSec optionally throttles how fast new backend children are
	// forked, via CODEAGENT_MAX_SPAWN_PER_SEC. Zero means unthrottled.
	MaxSpawnPerSec float64

	// ValidateResume enables the optional Anthropic API reachability check
	// before a claude resume is attempted, via CODEAGENT_VALIDATE_RESUME.
	// Off by default: it is a diagnostic aid, not a requirement for resume
	// to work, since the CLI child performs its own session resolution.
	ValidateResume bool
}

// Default returns the zero-config baseline: no timeout, the scheduler's own
// default worker bound (MaxParallelWorkers 0), full env passthrough, default
// logger tunables.
func Default() Config {
	return Config{
		MaxParallelWorkers:  0,
		StderrBufferSize:    64 * 1024,
		LoggerFlushInterval: 200 * time.Millisecond,
		LoggerQueueSize:     100,
		LoggerCloseTimeout:  5 * time.Second,
	}
}

// FromEnv builds a Config from the environment variables spec.md §6 lists,
// layered on top of Default().
func FromEnv() (Config, error) {
	cfg := Default()

	if err := parseEnvTimeout("CODEX_TIMEOUT", &cfg.Timeout); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("CODEAGENT_SKIP_PERMISSIONS", &cfg.SkipPermissions); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("CODEAGENT_MAX_PARALLEL_WORKERS", &cfg.MaxParallelWorkers); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("CODEAGENT_QUIET", &cfg.Quiet); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("CODEAGENT_ASCII_MODE", &cfg.ASCIIMode); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("CODEAGENT_BACKEND_OUTPUT", &cfg.BackendOutput); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("CODEAGENT_DEBUG", &cfg.Debug); err != nil {
		return cfg, err
	}
	if err := parseEnvString("CODEAGENT_BACKEND", &cfg.Backend); err != nil {
		return cfg, err
	}
	if err := parseEnvString("CODEAGENT_MODEL", &cfg.Model); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("CODEAGENT_STDERR_BUFFER_SIZE", &cfg.StderrBufferSize); err != nil {
		return cfg, err
	}
	if err := parseEnvDurationMillis("CODEAGENT_LOGGER_FLUSH_INTERVAL_MS", &cfg.LoggerFlushInterval); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("CODEAGENT_LOGGER_QUEUE_SIZE", &cfg.LoggerQueueSize); err != nil {
		return cfg, err
	}
	if err := parseEnvDurationMillis("CODEAGENT_LOGGER_CLOSE_TIMEOUT_MS", &cfg.LoggerCloseTimeout); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("CODEAGENT_PERFORMANCE_METRICS", &cfg.PerformanceMetrics); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("CODEAGENT_MAX_SPAWN_PER_SEC", &cfg.MaxSpawnPerSec); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("CODEAGENT_VALIDATE_RESUME", &cfg.ValidateResume); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

// Validate checks invariants across the parsed values. Per spec.md §9,
// validation runs synchronously, before any child is spawned.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.MaxParallelWorkers < 0 {
		return fmt.Errorf("max_parallel_workers cannot be negative")
	}
	if c.StderrBufferSize <= 0 {
		return fmt.Errorf("stderr_buffer_size must be positive")
	}
	if c.LoggerQueueSize <= 0 {
		return fmt.Errorf("logger_queue_size must be positive")
	}
	if c.MaxSpawnPerSec < 0 {
		return fmt.Errorf("max_spawn_per_sec cannot be negative")
	}
	return nil
}

// parseEnvTimeout implements CODEX_TIMEOUT's dual units: values > 10000 are
// milliseconds, everything else is seconds, per spec.md §6.
func parseEnvTimeout(key string, dest *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if n > 10000 {
		*dest = time.Duration(n) * time.Millisecond
		return nil
	}
	*dest = time.Duration(n) * time.Second
	return nil
}

func parseEnvDurationMillis(key string, dest *time.Duration) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = time.Duration(n) * time.Millisecond
	return nil
}

func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = n
	return nil
}

func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = b
	return nil
}

func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = f
	return nil
}

func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	*dest = value
	return nil
}
