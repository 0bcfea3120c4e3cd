// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "response-guard/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a registry document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the file extension; anything that is not
// .yaml or .yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

var schemaLoader = gojsonschema.NewStringLoader(metaSchema)

func NewContractRegistry() *ContractRegistry {
	return &ContractRegistry{
		Version:     "1.0.0",
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Contracts:   []ContractEntry{},
	}
}

func LoadRegistry(path string) (*ContractRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewRegistryNotFoundError(path, err)
	}
	return Parse(data, FormatOf(path))
}

// Parse decodes and validates a registry document.
func Parse(data []byte, format Format) (*ContractRegistry, error) {
	var doc interface{}
	var err error
	if format == FormatYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, apperrors.NewRegistryInvalidError("decode "+string(format), err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, apperrors.NewRegistryInvalidError("schema validation error", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, apperrors.NewRegistryInvalidError(strings.Join(errs, "; "), nil)
	}

	// round-trip through JSON so both formats decode with the same tags
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, apperrors.NewRegistryInvalidError("normalize document", err)
	}
	var reg ContractRegistry
	if err := json.Unmarshal(normalized, &reg); err != nil {
		return nil, apperrors.NewRegistryInvalidError("decode document", err)
	}

	seen := make(map[string]bool, len(reg.Contracts))
	for _, e := range reg.Contracts {
		if seen[e.Handler] {
			return nil, apperrors.NewRegistryInvalidError(fmt.Sprintf("handler %s declared twice", e.Handler), nil)
		}
		seen[e.Handler] = true
	}
	return &reg, nil
}

// SaveRegistry writes reg to path in the format chosen by its extension and
// stamps LastUpdated.
func SaveRegistry(reg *ContractRegistry, path string) error {
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	var data []byte
	var err error
	if FormatOf(path) == FormatYAML {
		data, err = yaml.Marshal(reg)
	} else {
		data, err = json.MarshalIndent(reg, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create registry dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Find returns the entry declared for handler.
func (r *ContractRegistry) Find(handler string) (*ContractEntry, bool) {
	for i := range r.Contracts {
		if r.Contracts[i].Handler == handler {
			return &r.Contracts[i], true
		}
	}
	return nil, false
}

// Add appends entry, refusing duplicates.
func (r *ContractRegistry) Add(entry ContractEntry) error {
	if _, exists := r.Find(entry.Handler); exists {
		return fmt.Errorf("contract for handler %s already exists", entry.Handler)
	}
	r.Contracts = append(r.Contracts, entry)
	return nil
}

// Literal renders the entry's contract as a compact JSON literal.
func (e ContractEntry) Literal() (string, error) {
	if s, ok := e.Contract.(string); ok {
		return s, nil
	}
	raw, err := json.Marshal(e.Contract)
	if err != nil {
		return "", fmt.Errorf("encode contract for %s: %w", e.Handler, err)
	}
	return string(raw), nil
}

// Literals maps every handler to its contract literal.
func (r *ContractRegistry) Literals() (map[string]string, error) {
	out := make(map[string]string, len(r.Contracts))
	for _, e := range r.Contracts {
		lit, err := e.Literal()
		if err != nil {
			return nil, err
		}
		out[e.Handler] = lit
	}
	return out, nil
}
