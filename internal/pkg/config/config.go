// Package config loads application configuration from environment variables
// using kelseyhightower/envconfig. All variables share the WALLETCORE prefix.
package config

import "github.com/kelseyhightower/envconfig"

// Config holds every runtime setting of the walletcore application.
//
// Example environment:
//
//	WALLETCORE_LOG_LEVEL=debug
//	WALLETCORE_REDIS_ADDR=localhost:6379
//	WALLETCORE_TELEMETRY_ENABLED=true
type Config struct {
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// TelemetryEnabled toggles OTLP metrics/traces/logs export.
	TelemetryEnabled bool `envconfig:"TELEMETRY_ENABLED" default:"false"`

	// ServiceName identifies this service in the observability backend.
	ServiceName string `envconfig:"SERVICE_NAME" default:"walletcore"`

	// Redis connection settings for the row store and the view cache.
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisUsername string `envconfig:"REDIS_USERNAME"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// ChainlistURL optionally points at a chainid.network style JSON document
	// used to cross-check the built-in network registry. Empty disables the
	// check.
	ChainlistURL string `envconfig:"CHAINLIST_URL"`
}

// Load reads the configuration from the environment, applying defaults for
// unset variables. It returns an error when a variable cannot be parsed into
// its field type.
func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("walletcore", &cfg)
	return cfg, err
}
