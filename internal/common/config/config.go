// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	API           APIConfig           `mapstructure:"api"`
	Contracts     ContractsConfig     `mapstructure:"contracts"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Violations    ViolationsConfig    `mapstructure:"violations"`
	RequestLimits RequestLimitsConfig `mapstructure:"request_limits"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required,slug"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type APIConfig struct {
	Port         string `mapstructure:"port" validate:"required"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
	BodyLimit    int    `mapstructure:"body_limit"`    // bytes
}

// ContractsConfig controls response contract checking. Enabled is the
// process-wide switch; it is read once per response build.
type ContractsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Tag           string `mapstructure:"tag" validate:"required,startswith=@"`
	RegistryPath  string `mapstructure:"registry_path"`
	WatchRegistry bool   `mapstructure:"watch_registry"`
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ViolationsConfig holds settings for the violation recorder.
type ViolationsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	BufferSize    int  `mapstructure:"buffer_size" validate:"gte=0"`
	MaxPerHandler int  `mapstructure:"max_per_handler" validate:"gte=0"`
	TTL           int  `mapstructure:"ttl"` // seconds
}

// RequestLimitsConfig caps the number of request parameters accepted.
type RequestLimitsConfig struct {
	MaxQueryParams int `mapstructure:"max_query_params" validate:"gte=0"`
	MaxFormParams  int `mapstructure:"max_form_params" validate:"gte=0"`
	MaxCookies     int `mapstructure:"max_cookies" validate:"gte=0"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
