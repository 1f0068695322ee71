package question

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// fixtureSchema defines the JSON schema every grading-unit fixture
// must satisfy.
var fixtureSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"title": map[string]any{
			"type": "string",
		},
		"multi_file": map[string]any{
			"type": "boolean",
		},
		"starter":  sideSchema,
		"solution": sideSchema,
	},
	"required":             []any{"id", "starter", "solution"},
	"additionalProperties": false,
}

var sideSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"entry": map[string]any{
			"type": "string",
		},
		"files": map[string]any{
			"type":          "object",
			"minProperties": 1,
			"additionalProperties": map[string]any{
				"type": "string",
			},
		},
	},
	"required":             []any{"files"},
	"additionalProperties": false,
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// validate checks raw fixture JSON against the schema.
func validate(raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := getCompiledSchema()
	if err != nil {
		return fmt.Errorf("compile fixture schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("fixture validation failed: %w", err)
	}
	return nil
}

// getCompiledSchema compiles the fixture schema once and caches it.
func getCompiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The jsonschema library expects a parsed JSON value, not raw
		// bytes. Marshal then unmarshal for a clean representation.
		defBytes, err := json.Marshal(fixtureSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var defParsed any
		if err := json.Unmarshal(defBytes, &defParsed); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		const schemaURL = "schema://grading-unit.json"
		if err := c.AddResource(schemaURL, defParsed); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}
