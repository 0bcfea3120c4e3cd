// pkg/registry/schema.go
package registry

// ContractRegistry is a document declaring response contracts outside the
// code. An entry overrides the contract found in the handler's route doc.
type ContractRegistry struct {
	Version     string          `json:"version" yaml:"version"`
	LastUpdated string          `json:"lastUpdated" yaml:"lastUpdated"`
	Contracts   []ContractEntry `json:"contracts" yaml:"contracts"`
}

// ContractEntry binds a contract to a handler id. Contract is either the
// template value itself or a string holding the JSON literal.
type ContractEntry struct {
	Handler     string      `json:"handler" yaml:"handler"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Contract    interface{} `json:"contract" yaml:"contract"`
	Tags        []string    `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// metaSchema is the JSON Schema every registry document must satisfy.
const metaSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "contracts"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "lastUpdated": {"type": "string"},
    "contracts": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["handler", "contract"],
        "properties": {
          "handler": {"type": "string", "pattern": "^[a-z][a-z0-9._-]*$"},
          "description": {"type": "string"},
          "contract": {"type": ["object", "array", "string", "number", "boolean"]},
          "tags": {"type": "array", "items": {"type": "string"}}
        },
        "additionalProperties": false
      }
    }
  }
}`
