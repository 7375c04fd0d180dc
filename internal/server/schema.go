package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var schemaCache sync.Map // tool name -> *jsonschema.Schema

// compileSchema compiles a tool's input schema once and caches it. The
// catalogue is static, so the tool name alone is a sufficient cache key.
func compileSchema(toolName string, schema json.RawMessage) (*jsonschema.Schema, error) {
	if v, ok := schemaCache.Load(toolName); ok {
		return v.(*jsonschema.Schema), nil
	}
	s, err := jsonschema.CompileString(toolName+".json", string(schema))
	if err != nil {
		return nil, err
	}
	schemaCache.Store(toolName, s)
	return s, nil
}

func firstLeafValidationError(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	if err == nil {
		return nil
	}
	if len(err.Causes) == 0 {
		return err
	}
	for _, c := range err.Causes {
		if leaf := firstLeafValidationError(c); leaf != nil {
			return leaf
		}
	}
	return err
}

// validateArgs checks raw call arguments against a tool's input schema,
// reporting the first leaf violation.
func validateArgs(toolName string, schema, args json.RawMessage) error {
	if len(schema) == 0 {
		return nil
	}
	s, err := compileSchema(toolName, schema)
	if err != nil {
		return fmt.Errorf("invalid tool inputSchema for %s: %w", toolName, err)
	}

	var instance any
	dec := json.NewDecoder(bytes.NewReader(args))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("arguments are not valid JSON: %w", err)
	}

	if err := s.Validate(instance); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			leaf := firstLeafValidationError(ve)
			loc := leaf.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msg := leaf.Message
			if msg == "" {
				msg = leaf.Error()
			}
			return fmt.Errorf("invalid arguments for %s at %s: %s", toolName, loc, msg)
		}
		return fmt.Errorf("invalid arguments for %s: %v", toolName, err)
	}
	return nil
}
