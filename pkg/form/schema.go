package form

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema/form.schema.json
var schemaJSON []byte

// ErrSchema is wrapped by ValidateAgainstSchema when the document does not
// match the form schema
var ErrSchema = errors.New("schema validation failed")

// Schema returns the JSON schema form definitions are checked against
func Schema() []byte {
	return append([]byte(nil), schemaJSON...)
}

// ValidateAgainstSchema validates form YAML bytes against the form schema
func ValidateAgainstSchema(yamlBytes []byte) error {
	if len(yamlBytes) == 0 {
		return errors.New("empty YAML input")
	}

	// gojsonschema works with plain Go data structures
	var data any
	if err := yaml.Unmarshal(yamlBytes, &data); err != nil {
		return fmt.Errorf("failed to parse YAML for validation: %w", err)
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
	}

	return nil
}
