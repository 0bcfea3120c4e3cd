// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"response-guard/internal/common/validation"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top,
// applies environment overrides and defaults, then validates the result.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	setDefaults(v)

	// CONTRACTS_ENABLED overrides contracts.enabled
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory, so tests in nested packages see the same environment.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string settings.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// setDefaults registers defaults viper needs to know about up front, either
// because the zero value is meaningful (booleans) or so env overrides apply.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "response-guard")
	v.SetDefault("api.port", ":8080")
	v.SetDefault("contracts.enabled", true)
	v.SetDefault("contracts.tag", "@require_type")
	v.SetDefault("contracts.registry_path", "")
	v.SetDefault("contracts.watch_registry", false)
	v.SetDefault("violations.enabled", false)
	v.SetDefault("database.redis.address", "")
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.API.ReadTimeout == 0 {
		cfg.API.ReadTimeout = 10000
	}
	if cfg.API.WriteTimeout == 0 {
		cfg.API.WriteTimeout = 10000
	}
	if cfg.API.BodyLimit == 0 {
		cfg.API.BodyLimit = 4 * 1024 * 1024
	}

	if cfg.Violations.BufferSize == 0 {
		cfg.Violations.BufferSize = 256
	}
	if cfg.Violations.MaxPerHandler == 0 {
		cfg.Violations.MaxPerHandler = 50
	}
	if cfg.Violations.TTL == 0 {
		cfg.Violations.TTL = 86400
	}

	if cfg.RequestLimits.MaxQueryParams == 0 {
		cfg.RequestLimits.MaxQueryParams = 200
	}
	if cfg.RequestLimits.MaxFormParams == 0 {
		cfg.RequestLimits.MaxFormParams = 200
	}
	if cfg.RequestLimits.MaxCookies == 0 {
		cfg.RequestLimits.MaxCookies = 50
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if errs := validation.New().Validate(cfg); len(errs) > 0 {
		return fmt.Errorf("%s", validation.Join(errs, "%s failed on '%s'"))
	}

	if cfg.Violations.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when violations.enabled is set")
	}
	if cfg.Contracts.WatchRegistry && cfg.Contracts.RegistryPath == "" {
		return fmt.Errorf("contracts.registry_path is required when contracts.watch_registry is set")
	}

	return nil
}
