package jsonstore

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed routine.schema.json
var routineSchema string

const routineSchemaURL = "mem://routine.schema.json"

// SchemaError is the first violation found in a routine file.
type SchemaError struct {
	Path    string // e.g. "[2].duration"
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Validate checks the routine file against the routine schema. Unlike Load
// it reports an absent file as an error.
func (s *RoutineStore) Validate() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return ValidateRoutine(b)
}

// ValidateRoutine checks raw routine JSON against the routine schema.
func ValidateRoutine(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(routineSchemaURL, strings.NewReader(routineSchema)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(routineSchemaURL)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return &SchemaError{Message: "invalid JSON: " + err.Error()}
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return &SchemaError{Message: err.Error()}
		}
		return firstLeaf(ve)
	}
	return nil
}

func firstLeaf(ve *jsonschema.ValidationError) *SchemaError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &SchemaError{Path: pointerToPath(ve.InstanceLocation), Message: ve.Message}
}

// pointerToPath turns "/2/duration" into "[2].duration".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		if part != "" && strings.Trim(part, "0123456789") == "" {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}
