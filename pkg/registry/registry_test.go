package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "response-guard/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "version": "1.0.0",
  "lastUpdated": "2024-03-01T00:00:00Z",
  "contracts": [
    {"handler": "issues.get", "description": "one issue", "contract": {"issue": {"id": 0, "title": ""}}},
    {"handler": "issues.list", "contract": "{\"issues\":[],\"total\":0}"}
  ]
}`

const sampleYAML = `
version: "1.0.0"
contracts:
  - handler: issues.get
    contract:
      issue:
        id: 0
        title: ""
        labels: []
  - handler: users.list
    contract: []
    tags: [people]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr), "want StandardError, got %v", err)
	assert.Equal(t, code, stdErr.Code)
}

func TestLoadRegistry_JSON(t *testing.T) {
	reg, err := LoadRegistry(writeFile(t, "contracts.json", sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", reg.Version)
	require.Len(t, reg.Contracts, 2)

	literals, err := reg.Literals()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"issues.get":  `{"issue":{"id":0,"title":""}}`,
		"issues.list": `{"issues":[],"total":0}`,
	}, literals)
}

func TestLoadRegistry_YAML(t *testing.T) {
	reg, err := LoadRegistry(writeFile(t, "contracts.yaml", sampleYAML))
	require.NoError(t, err)

	entry, ok := reg.Find("issues.get")
	require.True(t, ok)
	lit, err := entry.Literal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"issue":{"id":0,"title":"","labels":[]}}`, lit)

	users, ok := reg.Find("users.list")
	require.True(t, ok)
	assert.Equal(t, []string{"people"}, users.Tags)
}

func TestLoadRegistry_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		code    apperrors.ErrorCode
	}{
		{
			name:    "malformed json",
			file:    "c.json",
			content: `{"version":`,
			code:    apperrors.ErrCodeRegistryInvalid,
		},
		{
			name:    "missing version",
			file:    "c.json",
			content: `{"contracts":[]}`,
			code:    apperrors.ErrCodeRegistryInvalid,
		},
		{
			name:    "bad handler id",
			file:    "c.json",
			content: `{"version":"1","contracts":[{"handler":"Issues Get","contract":{}}]}`,
			code:    apperrors.ErrCodeRegistryInvalid,
		},
		{
			name:    "null contract",
			file:    "c.json",
			content: `{"version":"1","contracts":[{"handler":"issues.get","contract":null}]}`,
			code:    apperrors.ErrCodeRegistryInvalid,
		},
		{
			name:    "unknown field",
			file:    "c.yaml",
			content: "version: '1'\ncontracts:\n  - handler: a\n    contract: {}\n    shape: {}\n",
			code:    apperrors.ErrCodeRegistryInvalid,
		},
		{
			name:    "duplicate handler",
			file:    "c.json",
			content: `{"version":"1","contracts":[{"handler":"a","contract":{}},{"handler":"a","contract":[]}]}`,
			code:    apperrors.ErrCodeRegistryInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(writeFile(t, tt.file, tt.content))
			requireCode(t, err, tt.code)
		})
	}
}

func TestLoadRegistry_NotFound(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	requireCode(t, err, apperrors.ErrCodeRegistryNotFound)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveRegistry_PreservesFormat(t *testing.T) {
	for _, name := range []string{"out.json", "nested/out.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			reg := NewContractRegistry()
			require.NoError(t, reg.Add(ContractEntry{Handler: "issues.get", Contract: map[string]interface{}{"id": 0}}))
			assert.Error(t, reg.Add(ContractEntry{Handler: "issues.get", Contract: []interface{}{}}))
			require.NoError(t, SaveRegistry(reg, path))

			loaded, err := LoadRegistry(path)
			require.NoError(t, err)
			literals, err := loaded.Literals()
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"issues.get": `{"id":0}`}, literals)
			assert.NotEmpty(t, loaded.LastUpdated)
		})
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("a/b.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("b.YML"))
	assert.Equal(t, FormatJSON, FormatOf("b.json"))
	assert.Equal(t, FormatJSON, FormatOf("b"))
}
