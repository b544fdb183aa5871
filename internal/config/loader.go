package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"
)

//go:embed scribe.v1.schema.json
var schemaJSON string

// LoadAndValidate loads the tunables overlay and validates it against the
// embedded schema before decoding.
func LoadAndValidate(path string) (*Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read overlay: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: invalid YAML: %w", err)
	}

	schema, err := jsonschema.CompileString("scribe.v1.schema.json", schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("config: failed to compile schema: %w", err)
	}

	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("config: overlay validation failed: %w", err)
	}

	var tunables Tunables
	if err := yaml.Unmarshal(data, &tunables); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal into Tunables struct: %w", err)
	}

	tunables.applyDefaults()
	return &tunables, nil
}
