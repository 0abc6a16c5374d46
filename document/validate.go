package document

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformed is returned when a base document is not an
// object-of-objects-of-primitives. It is the only fatal condition in
// compilation.
var ErrMalformed = errors.New("malformed base document")

const sectionsSchemaURL = "mem://layerstack/sections.json"

const sectionsSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"additionalProperties": {
			"oneOf": [
				{"$ref": "#/$defs/primitive"},
				{"type": "array", "items": {"$ref": "#/$defs/primitive"}}
			]
		}
	},
	"$defs": {
		"primitive": {"type": ["string", "number", "boolean"]}
	}
}`

var sectionsValidator = jsonschema.MustCompileString(sectionsSchemaURL, sectionsSchema)

// Validate checks that d is a usable base document. It fails fast and never
// tries to repair the input.
func Validate(d *BaseDocument) error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrMalformed)
	}
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformed)
	}
	if d.Sections == nil {
		return fmt.Errorf("%w: %q has no sections", ErrMalformed, d.ID)
	}
	if err := ValidateSections(d.Sections); err != nil {
		return fmt.Errorf("document %q: %w", d.ID, err)
	}
	return nil
}

// ValidateSections checks the section → field → primitive shape. Besides
// the schema, which sees the JSON encoding of s, every field must hold a Go
// value that IsValue accepts: arrays are []any and typed slices such as
// []int are rejected.
func ValidateSections(s Sections) error {
	instance, err := toJSONValue(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validateInstance(sectionsValidator, instance); err != nil {
		return err
	}
	for _, section := range s.SectionNames() {
		for _, field := range s.FieldNames(section) {
			if v := s[section][field]; !IsValue(v) {
				return fmt.Errorf("%w: at /%s/%s: unsupported value %T", ErrMalformed, section, field, v)
			}
		}
	}
	return nil
}

// ValidateRaw checks an already decoded value (for example the result of
// decoding arbitrary JSON) against the sections shape. It rejects anything
// that is not an object of objects of primitives.
func ValidateRaw(v any) error {
	instance, err := toJSONValue(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return validateInstance(sectionsValidator, instance)
}

// IsValue reports whether v can be stored as a field value.
func IsValue(v any) bool {
	if IsPrimitive(v) {
		return true
	}
	elems, ok := v.([]any)
	if !ok {
		return false
	}
	for _, e := range elems {
		if !IsPrimitive(e) {
			return false
		}
	}
	return true
}

// IsPrimitive reports whether v is a string, a bool or a number.
func IsPrimitive(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func validateInstance(schema *jsonschema.Schema, instance any) error {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	leaf := firstLeaf(ve)
	location := leaf.InstanceLocation
	if location == "" {
		location = "/"
	}
	return fmt.Errorf("%w: at %s: %s", ErrMalformed, location, leaf.Message)
}

// firstLeaf returns the deepest first cause, which names the offending value.
func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

// toJSONValue converts v into the generic form produced by encoding/json,
// which is what the schema validator walks.
func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
