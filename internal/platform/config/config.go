// Package config loads the service configuration with koanf and checks it
// with validator struct tags.
package config

import "time"

// Defaults referenced outside the defaults map.
const (
	DefaultServerPort                 = 8080
	DefaultMaxRequestSize             = 1 << 20
	DefaultClientRetryMaxAttempts     = 3
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3
	DefaultSeedingConcurrency         = 8
	DefaultLikesViewBuffer            = 16
	DefaultActivityRecentLimit        = 5
	DefaultActivityPageSize           = 20
	DefaultLogFileMaxSizeMB           = 100
	DefaultLogFileMaxBackups          = 3
	DefaultLogFileMaxAgeDays          = 28
)

// Config is the root of the configuration tree. Keys are snake_case in
// YAML and APP_-prefixed upper case in the environment.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"      validate:"required"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Tree      TreeConfig      `koanf:"tree"      validate:"required"`
	Seeding   SeedingConfig   `koanf:"seeding"`
	Likes     LikesConfig     `koanf:"likes"     validate:"required"`
	Activity  ActivityConfig  `koanf:"activity"  validate:"required"`
}

type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig tunes the HTTP listener. RequestTimeout bounds non-stream
// handlers; streams are exempt.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig adds a rotating JSON file sink. An empty Level follows the
// terminal level.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Level      string `koanf:"level"       validate:"omitempty,oneof=trace debug info warn error"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig resolves the session user. A verified bearer token wins over
// the gateway's SubjectHeader.
type AuthConfig struct {
	SubjectHeader string    `koanf:"subject_header" validate:"required"`
	EmailHeader   string    `koanf:"email_header"`
	JWT           JWTConfig `koanf:"jwt"`
}

// JWTConfig enables HS256 bearer tokens.
type JWTConfig struct {
	Enabled bool   `koanf:"enabled"`
	Secret  string `koanf:"secret"  validate:"required_if=Enabled true,omitempty,min=32"`
	Issuer  string `koanf:"issuer"`
}

// ClientConfig governs every call the tree client makes: a per-attempt
// timeout, retries for reads, and a breaker shared by reads and writes.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
}

type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig: MaxFailures consecutive failures open the circuit
// for Timeout; HalfOpenLimit probes must then succeed to close it.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TreeConfig picks the store behind the remote tree and the bus that
// carries change notifications. Validate rejects pairings whose bus cannot
// see the store's writes.
type TreeConfig struct {
	Backend string       `koanf:"backend" validate:"required,oneof=memory sqlite redis"`
	Bus     string       `koanf:"bus"     validate:"required,oneof=local redis nats"`
	SQLite  SQLiteConfig `koanf:"sqlite"`
	Redis   RedisConfig  `koanf:"redis"`
	NATS    NATSConfig   `koanf:"nats"`
}

type SQLiteConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// RedisConfig is shared by the redis store and the redis bus; when both
// are selected they use one client.
type RedisConfig struct {
	Addr        string        `koanf:"addr"         validate:"required"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"           validate:"min=0,max=15"`
	Prefix      string        `koanf:"prefix"`
	Channel     string        `koanf:"channel"      validate:"required"`
	DialTimeout time.Duration `koanf:"dial_timeout" validate:"required,min=100ms"`
}

type NATSConfig struct {
	URL     string        `koanf:"url"     validate:"required"`
	Subject string        `koanf:"subject" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"required,min=100ms"`
}

// SeedingConfig controls the default quote catalog written per category.
type SeedingConfig struct {
	Enabled     bool `koanf:"enabled"`
	Concurrency int  `koanf:"concurrency" validate:"min=1,max=64"`
}

// LikesConfig tunes per-user like views. ReadyTimeout bounds how long a
// request waits for a new view's first snapshot.
type LikesConfig struct {
	ViewBuffer   int           `koanf:"view_buffer"   validate:"min=1,max=1024"`
	ReadyTimeout time.Duration `koanf:"ready_timeout" validate:"required,min=10ms"`
}

type ActivityConfig struct {
	RecentLimit int `koanf:"recent_limit" validate:"min=1,max=100"`
	PageSize    int `koanf:"page_size"    validate:"min=1,max=100"`
}
