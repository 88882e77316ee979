package integrations

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fruitctl/fruitctl/internal/apperr"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON Schema that keeps its source for display.
type Schema struct {
	source   string
	compiled *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema document identified by name.
func CompileSchema(name, source string) (*Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://fruitctl.local/schemas/%s.schema.json", name)
	if err := c.AddResource(url, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("schema %s load failed: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s compile failed: %w", name, err)
	}
	return &Schema{source: source, compiled: compiled}, nil
}

// MustCompileSchema is CompileSchema for package-level schema literals.
func MustCompileSchema(name, source string) *Schema {
	s, err := CompileSchema(name, source)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a JSON document against the schema. An empty body is
// treated as an empty object. On success it returns a copy of the document,
// so callers may pass request buffers that are reused after the handler.
func (s *Schema) Validate(body []byte) (json.RawMessage, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		body = []byte("{}")
	} else {
		body = append([]byte(nil), body...)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperr.Validation("request body is not valid JSON").
			WithDetails(map[string]any{"reason": err.Error()})
	}
	if s == nil {
		return json.RawMessage(body), nil
	}
	if err := s.compiled.Validate(doc); err != nil {
		return nil, apperr.Validation("params do not match schema").
			WithDetails(map[string]any{"reason": err.Error()})
	}
	return json.RawMessage(body), nil
}

// ValidateValue validates an already-decoded value, such as query parameters.
func (s *Schema) ValidateValue(v map[string]any) error {
	if s == nil {
		return nil
	}
	if err := s.compiled.Validate(v); err != nil {
		return apperr.Validation("params do not match schema").
			WithDetails(map[string]any{"reason": err.Error()})
	}
	return nil
}

func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return json.RawMessage(s.source), nil
}
