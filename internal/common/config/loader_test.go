package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: issues-api
api:
  port: ":9090"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "issues-api", cfg.App.Name)
	assert.Equal(t, ":9090", cfg.API.Port)
	assert.True(t, cfg.Contracts.Enabled)
	assert.Equal(t, "@require_type", cfg.Contracts.Tag)
	assert.Equal(t, 200, cfg.RequestLimits.MaxQueryParams)
	assert.Equal(t, 200, cfg.RequestLimits.MaxFormParams)
	assert.Equal(t, 50, cfg.RequestLimits.MaxCookies)
	assert.Equal(t, 256, cfg.Violations.BufferSize)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_DisableContracts(t *testing.T) {
	path := writeConfig(t, `
contracts:
  enabled: false
  tag: "@returns"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.Contracts.Enabled)
	assert.Equal(t, "@returns", cfg.Contracts.Tag)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("CONTRACTS_ENABLED", "false")
	t.Setenv("REDIS_PASSWORD_FOR_TEST", "s3cret")

	path := writeConfig(t, `
database:
  redis:
    address: "localhost:6379"
    password: "${REDIS_PASSWORD_FOR_TEST}"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.False(t, cfg.Contracts.Enabled)
	assert.Equal(t, "s3cret", cfg.Database.Redis.Password)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "tag without marker",
			body: "contracts:\n  tag: require_type\n",
		},
		{
			name: "app name is not a slug",
			body: "app:\n  name: Issues API\n",
		},
		{
			name: "unknown log level",
			body: "logging:\n  level: loud\n",
		},
		{
			name: "violations without redis",
			body: "violations:\n  enabled: true\n",
		},
		{
			name: "watch without registry",
			body: "contracts:\n  watch_registry: true\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
