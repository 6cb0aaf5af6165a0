package lessonplan

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// ErrInvalidPlan indicates a plan document that is not valid JSON or
// does not conform to the plan schema.
type ErrInvalidPlan struct {
	Err error
}

func (e *ErrInvalidPlan) Error() string {
	return fmt.Sprintf("invalid lesson plan: %v", e.Err)
}

func (e *ErrInvalidPlan) Unwrap() error { return e.Err }

// Validate checks raw against the plan schema.
// Returns *ErrInvalidPlan on failure.
func Validate(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidPlan{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	compiled, err := compiledSchema(planSchemaName, planSchema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", planSchemaName, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidPlan{Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(name string, definition map[string]any) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a generic JSON value, so round-trip the Go map.
	defBytes, err := json.Marshal(definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(name, compiled)
	return compiled, nil
}
