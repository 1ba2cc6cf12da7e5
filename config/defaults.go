// =============================================================================
// 🎛️  brigade Configuration Defaults
// =============================================================================
package config

import "time"

// DefaultConfig returns brigade's zero-config defaults: a single local
// worker driving a file-backed checkpoint, telemetry disabled.
func DefaultConfig() *Config {
	return &Config{
		Job:       DefaultJobConfig(),
		Store:     DefaultStoreConfig(),
		Server:    DefaultServerConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultJobConfig returns the default job surface.
func DefaultJobConfig() JobConfig {
	return JobConfig{
		CheckpointPath: "brigade-checkpoint.json",
		Concurrency:    1,
		MaxRetries:     3,
		ItemTimeout:    30 * time.Second,
	}
}

// DefaultStoreConfig returns the default checkpoint store: a local file.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Backend: "file",
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 10,
			LockTTL:  30 * time.Second,
		},
		SQL: SQLConfig{
			Dialect:         "postgres",
			MigrationsTable: "brigade_schema_migrations",
		},
	}
}

// DefaultServerConfig returns the default bridge HTTP surface settings.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8089,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultTelemetryConfig returns telemetry defaults: disabled, local collector.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4318",
		ServiceName:  "brigade",
		SampleRate:   1.0,
	}
}
