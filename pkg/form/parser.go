package form

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a form definition from YAML bytes. Unknown
// keys are rejected.
func Parse(yamlBytes []byte) (*Definition, error) {
	if len(bytes.TrimSpace(yamlBytes)) == 0 {
		return nil, errors.New("empty YAML input")
	}

	dec := yaml.NewDecoder(bytes.NewReader(yamlBytes))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadFile reads a form definition from disk, checks it against the form
// schema and parses it.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := ValidateAgainstSchema(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Marshal encodes a definition as YAML
func Marshal(def *Definition) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(def); err != nil {
		return nil, fmt.Errorf("failed to marshal form to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal form to YAML: %w", err)
	}
	return buf.Bytes(), nil
}
