package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix  = "APP_"
	defaultDir = "configs"
)

// Option adjusts Load.
type Option func(*loader)

type loader struct {
	dir string
}

// WithDir reads base.yaml and the profile file from dir instead of
// ./configs.
func WithDir(dir string) Option {
	return func(l *loader) { l.dir = dir }
}

// Load layers, lowest precedence first: built-in defaults, base.yaml, the
// profile's <profile>.yaml, then APP_ environment variables. Missing files
// are skipped.
//
// Environment names map onto existing keys, so APP_TREE_REDIS_DIAL_TIMEOUT
// sets tree.redis.dial_timeout. Names matching no key split on every
// underscore.
func Load(profile string, opts ...Option) (*Config, error) {
	l := loader{dir: defaultDir}
	for _, opt := range opts {
		opt(&l)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	layers := []string{"base"}
	if profile != "" {
		layers = append(layers, profile)
	}

	for _, name := range layers {
		if err := l.loadFile(k, name); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}

func (l loader) loadFile(k *koanf.Koanf, name string) error {
	path := filepath.Join(l.dir, name+".yaml")

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	return nil
}

// envKeyMapper turns APP_A_B_C into the known key whose dots and
// underscores flatten to a_b_c.
func envKeyMapper(known []string) func(string) string {
	flat := make(map[string]string, len(known))
	for _, key := range known {
		flat[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(name string) string {
		name = strings.ToLower(strings.TrimPrefix(name, envPrefix))
		if key, ok := flat[name]; ok {
			return key
		}

		return strings.ReplaceAll(name, "_", ".")
	}
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotehub-sync",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "15s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.level":       "",
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotehub-sync",
		"telemetry.sampling_rate": 1.0,

		"auth.subject_header": "X-User-ID",
		"auth.email_header":   "X-User-Email",
		"auth.jwt.enabled":    false,
		"auth.jwt.secret":     "",
		"auth.jwt.issuer":     "quotehub",

		"client.timeout":                         "5s",
		"client.retry.max_attempts":              DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":          "100ms",
		"client.retry.max_interval":              "2s",
		"client.retry.multiplier":                DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":             DefaultClientRetryJitterFactor,
		"client.circuit_breaker.max_failures":    DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":         "30s",
		"client.circuit_breaker.half_open_limit": DefaultClientCircuitHalfOpenLimit,

		"tree.backend":            "memory",
		"tree.bus":                "local",
		"tree.sqlite.path":        "./data/tree.db",
		"tree.redis.addr":         "localhost:6379",
		"tree.redis.password":     "",
		"tree.redis.db":           0,
		"tree.redis.prefix":       "quotehub:",
		"tree.redis.channel":      "quotehub.changes",
		"tree.redis.dial_timeout": "5s",
		"tree.nats.url":           "nats://localhost:4222",
		"tree.nats.subject":       "quotehub.changes",
		"tree.nats.timeout":       "5s",

		"seeding.enabled":     true,
		"seeding.concurrency": DefaultSeedingConcurrency,

		"likes.view_buffer":   DefaultLikesViewBuffer,
		"likes.ready_timeout": "2s",

		"activity.recent_limit": DefaultActivityRecentLimit,
		"activity.page_size":    DefaultActivityPageSize,
	}
}
