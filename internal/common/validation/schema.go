// Package validation checks decoded JSON documents against JSON schemas.
package validation

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON schema, safe for concurrent use.
type Schema struct {
	compiled *gojsonschema.Schema
}

// Compile parses a schema given as a Go value (usually map[string]interface{}).
func Compile(schema interface{}) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(schema interface{}) *Schema {
	s, err := Compile(schema)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a decoded document. Errors are sorted by field for stable output.
func (s *Schema) Validate(document interface{}) (*ValidationResult, error) {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool {
		return out.Errors[i].Field < out.Errors[j].Field
	})
	return out, nil
}

// Messages flattens the errors into "field: message" strings.
func (r *ValidationResult) Messages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return msgs
}
