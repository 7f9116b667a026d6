// Package schema defines the declarative output contracts imposed on
// generative-model responses. A Schema is both the shape sent to the
// provider as a response constraint and the validator applied to the
// text that comes back: parsing and validation failures are fatal for
// the call that triggered them.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind is the primitive shape of a schema node.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Schema describes one node of an expected response shape.
type Schema struct {
	Kind        Kind
	Description string
	Enum        []string
	Items       *Schema
	Properties  map[string]*Schema
	Required    []string
}

// String returns a string schema.
func String(description string) *Schema {
	return &Schema{Kind: KindString, Description: description}
}

// StringEnum returns a string schema restricted to the given values.
func StringEnum(description string, values ...string) *Schema {
	return &Schema{Kind: KindString, Description: description, Enum: values}
}

// Number returns a number schema.
func Number(description string) *Schema {
	return &Schema{Kind: KindNumber, Description: description}
}

// Object returns an object schema with the given properties. Fields
// listed in required must be present and non-null in any valid value.
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{Kind: KindObject, Properties: properties, Required: required}
}

// Array returns an array schema whose elements match items.
func Array(description string, items *Schema) *Schema {
	return &Schema{Kind: KindArray, Description: description, Items: items}
}

// MarshalJSON renders the schema as standard JSON Schema, the form
// providers accept as a structured-output constraint.
func (s *Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.asMap())
}

func (s *Schema) asMap() map[string]interface{} {
	m := map[string]interface{}{"type": string(s.Kind)}
	if s.Description != "" {
		m["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		m["enum"] = s.Enum
	}
	if s.Items != nil {
		m["items"] = s.Items.asMap()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]interface{}, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = prop.asMap()
		}
		m["properties"] = props
	}
	if len(s.Required) > 0 {
		m["required"] = s.Required
	}
	return m
}

// Validate parses data as JSON and checks it against the schema.
// Any violation (invalid JSON, missing required field, kind mismatch,
// out-of-enum value) returns an error.
func (s *Schema) Validate(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return s.validate(value, "")
}

func (s *Schema) validate(value interface{}, path string) error {
	if value == nil {
		return fmt.Errorf("%s: unexpected null", describe(path))
	}

	switch s.Kind {
	case KindString:
		str, ok := value.(string)
		if !ok {
			return kindError(path, s.Kind, value)
		}
		if len(s.Enum) > 0 && !containsString(s.Enum, str) {
			return fmt.Errorf("%s: value %q not in enum [%s]", describe(path), str, strings.Join(s.Enum, ", "))
		}

	case KindNumber:
		if _, ok := value.(float64); !ok {
			return kindError(path, s.Kind, value)
		}

	case KindInteger:
		num, ok := value.(float64)
		if !ok || num != math.Trunc(num) {
			return kindError(path, s.Kind, value)
		}

	case KindBoolean:
		if _, ok := value.(bool); !ok {
			return kindError(path, s.Kind, value)
		}

	case KindObject:
		obj, ok := value.(map[string]interface{})
		if !ok {
			return kindError(path, s.Kind, value)
		}
		for _, name := range s.Required {
			if v, present := obj[name]; !present || v == nil {
				return fmt.Errorf("%s: missing required field %q", describe(path), name)
			}
		}
		for name, v := range obj {
			prop, known := s.Properties[name]
			if !known || v == nil {
				// Unknown fields are tolerated; optional nulls are
				// equivalent to absence.
				continue
			}
			if err := prop.validate(v, joinPath(path, name)); err != nil {
				return err
			}
		}

	case KindArray:
		arr, ok := value.([]interface{})
		if !ok {
			return kindError(path, s.Kind, value)
		}
		if s.Items != nil {
			for i, item := range arr {
				if err := s.Items.validate(item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return err
				}
			}
		}

	default:
		return fmt.Errorf("%s: unknown schema kind %q", describe(path), s.Kind)
	}

	return nil
}

func kindError(path string, want Kind, got interface{}) error {
	return fmt.Errorf("%s: expected %s, got %T", describe(path), want, got)
}

func describe(path string) string {
	if path == "" {
		return "response"
	}
	return path
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
