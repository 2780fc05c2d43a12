// Package schema validates JSON documents against JSON Schema documents.
package schema

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidSchema is returned when a schema document cannot be parsed.
var ErrInvalidSchema = errors.New("schema is not valid")

// Schema is a parsed JSON Schema.
type Schema struct {
	compiled *gojsonschema.Schema
}

// Result is the outcome of validating one document.
type Result struct {
	Valid  bool
	Errors []string
}

// Parse parses schema text. Syntax errors and documents that are not valid
// schemas are both reported as ErrInvalidSchema.
func Parse(text string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate parses document and checks it against the schema. A document
// that is not JSON yields an invalid result carrying the parse error.
func (s *Schema) Validate(document string) Result {
	res, err := s.compiled.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("document is not valid JSON: %v", err)}}
	}

	if res.Valid() {
		return Result{Valid: true}
	}

	messages := make([]string, 0, len(res.Errors()))
	for _, desc := range res.Errors() {
		messages = append(messages, desc.String())
	}
	return Result{Errors: messages}
}
