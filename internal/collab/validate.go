package collab

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrResponseInvalid marks a collaborator reply that could not be decoded or
// did not match its schema.
var ErrResponseInvalid = errors.New("response invalid")

// compileSchema compiles a schema map once so replies can be validated cheaply.
func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// validateJSON validates data against a compiled schema.
func validateJSON(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: unmarshal data: %w", ErrResponseInvalid, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: json does not match schema: %w", ErrResponseInvalid, err)
	}
	return nil
}
