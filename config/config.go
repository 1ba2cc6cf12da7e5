// =============================================================================
// 📦 brigade Configuration
// =============================================================================
// Unified configuration: YAML file + environment variable overlay.
// Priority: defaults -> YAML file -> environment variables.
// =============================================================================
package config

import "time"

// Config is brigade's complete configuration structure.
type Config struct {
	// Job is the run's input/checkpoint/concurrency surface (spec.md §3).
	Job JobConfig `yaml:"job" env:"JOB"`

	// Store selects and configures the checkpoint backend.
	Store StoreConfig `yaml:"store" env:"STORE"`

	// Server configures the supervising bridge HTTP surface used by the
	// `serve` subcommand.
	Server ServerConfig `yaml:"server" env:"SERVER"`

	// Telemetry configures OpenTelemetry tracing.
	Telemetry TelemetryConfig `yaml:"telemetry" env:"TELEMETRY"`
}

// JobConfig is exactly spec.md §3's Configuration surface, plus the
// ambient rate-limit knobs the Invoker optionally honors.
type JobConfig struct {
	// InputPath points at a JSON file holding the ordered array of raw
	// item payloads a fresh run is seeded from. Ignored when resuming an
	// existing checkpoint.
	InputPath string `yaml:"input_path" env:"INPUT_PATH"`
	// CheckpointPath is where the durable checkpoint (and, for FileStore,
	// the job.log file beside it) lives.
	CheckpointPath string `yaml:"checkpoint_path" env:"CHECKPOINT_PATH"`
	// Concurrency bounds in-flight worker invocations. Positive, default 1.
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
	// MaxRetries bounds attempts before a failed item is terminal for the
	// run. Default 3.
	MaxRetries int `yaml:"max_retries" env:"MAX_RETRIES"`
	// ItemTimeout bounds a single invocation; zero means no timeout.
	ItemTimeout time.Duration `yaml:"item_timeout" env:"ITEM_TIMEOUT"`
	// RateLimitRPS, if positive, throttles dispatch via a token bucket
	// (golang.org/x/time/rate). Zero disables the limiter.
	RateLimitRPS float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	// RateLimitBurst is the token bucket's burst size; defaults to 1 when
	// RateLimitRPS is set and this is left at zero.
	RateLimitBurst int `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
}

// StoreConfig selects the checkpoint.Store backend and its parameters.
type StoreConfig struct {
	// Backend is one of "file", "redis", "sql".
	Backend string      `yaml:"backend" env:"BACKEND"`
	Redis   RedisConfig `yaml:"redis" env:"REDIS"`
	SQL     SQLConfig   `yaml:"sql" env:"SQL"`
}

// RedisConfig configures checkpoint.RedisStore.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	PoolSize int           `yaml:"pool_size" env:"POOL_SIZE"`
	LockTTL  time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
}

// SQLConfig configures checkpoint.SQLStore.
type SQLConfig struct {
	// Dialect is one of "postgres", "mysql", "sqlite".
	Dialect         string `yaml:"dialect" env:"DIALECT"`
	DSN             string `yaml:"dsn" env:"DSN"`
	MigrationsTable string `yaml:"migrations_table" env:"MIGRATIONS_TABLE"`
}

// ServerConfig configures the bridge HTTP surface (brigade/api) started by
// the `serve` subcommand.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// TelemetryConfig configures the OTel SDK (internal/telemetry).
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled" env:"ENABLED"`
	OTLPEndpoint string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	ServiceName  string  `yaml:"service_name" env:"SERVICE_NAME"`
	SampleRate   float64 `yaml:"sample_rate" env:"SAMPLE_RATE"`
}
