package model

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed resume.schema.json
var schemaJSON string

// Schema validates raw JSON against the Document shape.
type Schema struct {
	schema *gojsonschema.Schema
}

// ValidationError lists every schema violation found in a document.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "resume schema: " + strings.Join(e.Issues, "; ")
}

// LoadSchema compiles the embedded document schema.
func LoadSchema() (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile resume schema: %w", err)
	}
	return &Schema{schema: compiled}, nil
}

// Validate checks raw against the schema. It returns *ValidationError for violations
// and a plain error when raw is not JSON at all.
func (s *Schema) Validate(raw []byte) error {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate resume: %w", err)
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, e.String())
	}
	return &ValidationError{Issues: issues}
}
