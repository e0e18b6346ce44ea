// Package schema checks provider output against declared JSON shapes.
//
// A Shape lists fields with their kind and constraints. Validate walks a
// decoded JSON value and reports every offending field in one pass; nothing is
// coerced, so "40" is not a number and 40.5 is not an integer.
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Kind is the JSON type a field must carry.
type Kind int

const (
	String Kind = iota + 1
	Number
	Integer
	Boolean
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Field declares one member of an object, or the element of an array when used as Elem.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	// NotEmpty rejects blank strings and empty arrays.
	NotEmpty bool
	// MaxLen bounds string length in characters; zero means unbounded.
	MaxLen int
	Min      *float64
	Max      *float64
	Elem     *Field
	Fields   []Field
}

// Shape is a named top-level object.
type Shape struct {
	Name   string
	Fields []Field
}

// FieldError is one offending path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError lists every field of a value that does not match its shape.
type ValidationError struct {
	Shape  string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Path + ": " + f.Message
	}
	return fmt.Sprintf("%s does not match schema: %s", e.Shape, strings.Join(parts, "; "))
}

// MalformedError means the provider text could not be parsed as JSON at all.
type MalformedError struct {
	Shape string
	Err   error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s response is not valid JSON: %v", e.Shape, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Validate checks a decoded JSON value (as produced by encoding/json into any)
// against shape. It returns nil or a *ValidationError.
func Validate(shape Shape, value any) error {
	var errs []FieldError

	obj, ok := value.(map[string]any)
	if !ok {
		errs = append(errs, FieldError{Path: "$", Message: "expected object, got " + typeName(value)})
	} else {
		checkObject("", shape.Fields, obj, &errs)
	}

	if len(errs) > 0 {
		return &ValidationError{Shape: shape.Name, Fields: errs}
	}
	return nil
}

// Decode parses text, validates it against shape and decodes it into T.
func Decode[T any](shape Shape, text string) (T, error) {
	var out T

	var raw any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return out, &MalformedError{Shape: shape.Name, Err: err}
	}
	if err := Validate(shape, raw); err != nil {
		return out, err
	}
	// decode the validated value so numbers like 40.0 or 4e1 reach T as 40
	normalized, err := json.Marshal(raw)
	if err == nil {
		err = json.Unmarshal(normalized, &out)
	}
	if err != nil {
		return out, fmt.Errorf("decoding validated %s: %w", shape.Name, err)
	}
	return out, nil
}

func checkObject(prefix string, fields []Field, obj map[string]any, errs *[]FieldError) {
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}

		v, present := obj[f.Name]
		if !present || v == nil {
			if f.Required {
				*errs = append(*errs, FieldError{Path: path, Message: "is required"})
			}
			continue
		}
		checkValue(path, f, v, errs)
	}
}

func checkValue(path string, f Field, v any, errs *[]FieldError) {
	fail := func(format string, args ...any) {
		*errs = append(*errs, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	switch f.Kind {
	case String:
		s, ok := v.(string)
		if !ok {
			fail("expected string, got %s", typeName(v))
			return
		}
		if f.NotEmpty && strings.TrimSpace(s) == "" {
			fail("must not be empty")
		}
		if f.MaxLen > 0 && utf8.RuneCountInString(s) > f.MaxLen {
			fail("must be at most %d characters", f.MaxLen)
		}

	case Number, Integer:
		n, ok := v.(float64)
		if !ok {
			fail("expected %s, got %s", f.Kind, typeName(v))
			return
		}
		if f.Kind == Integer {
			if n != math.Trunc(n) {
				fail("expected integer, got %v", n)
				return
			}
			if n < math.MinInt64 || n >= math.MaxInt64 {
				fail("integer %v is out of range", n)
				return
			}
		}
		if f.Min != nil && n < *f.Min {
			fail("must be at least %v", *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			fail("must be at most %v", *f.Max)
		}

	case Boolean:
		if _, ok := v.(bool); !ok {
			fail("expected boolean, got %s", typeName(v))
		}

	case Array:
		items, ok := v.([]any)
		if !ok {
			fail("expected array, got %s", typeName(v))
			return
		}
		if f.NotEmpty && len(items) == 0 {
			fail("must not be empty")
		}
		if f.Elem == nil {
			return
		}
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				*errs = append(*errs, FieldError{Path: itemPath, Message: "must not be null"})
				continue
			}
			checkValue(itemPath, *f.Elem, item, errs)
		}

	case Object:
		obj, ok := v.(map[string]any)
		if !ok {
			fail("expected object, got %s", typeName(v))
			return
		}
		checkObject(path, f.Fields, obj, errs)
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Float returns a pointer for Min and Max bounds.
func Float(v float64) *float64 { return &v }
