package logs

import (
	"math"

	"laundry-station-backend/internal/apperr"
)

// FieldType is the expected JSON-level type of a payload field.
type FieldType int

const (
	TypeInt FieldType = iota
	TypeNumber
	TypeString
	TypeBool
	TypeIntList
)

func (t FieldType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeIntList:
		return "int list"
	}
	return "unknown"
}

// Schema declares the exact field set a classified code expects.
type Schema map[string]FieldType

// Payload is the decoded auxiliary data of a log entry.
type Payload map[string]any

// Validate checks the payload strictly against the schema: every declared
// field must be present with the declared type, and no undeclared field may
// appear. A nil schema admits only an empty payload.
func (s Schema) Validate(data Payload) error {
	for field, typ := range s {
		v, ok := data[field]
		if !ok {
			return apperr.Validation("missing field %q", field)
		}
		if !matchesType(v, typ) {
			return apperr.Validation("field %q must be of type %s", field, typ)
		}
	}
	for field := range data {
		if _, ok := s[field]; !ok {
			return apperr.Validation("unexpected field %q", field)
		}
	}
	return nil
}

func matchesType(v any, typ FieldType) bool {
	switch typ {
	case TypeInt:
		_, ok := asInt(v)
		return ok
	case TypeNumber:
		_, ok := asFloat(v)
		return ok
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeBool:
		_, ok := v.(bool)
		return ok
	case TypeIntList:
		items, ok := v.([]any)
		if !ok {
			if _, isInts := v.([]int); isInts {
				return true
			}
			return false
		}
		for _, item := range items {
			if _, ok := asInt(item); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// asInt accepts both native ints and JSON-decoded float64 values that carry
// an integral number.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// Accessors below assume the payload already passed Validate for a schema
// declaring the field.

func (p Payload) Int(key string) int {
	n, _ := asInt(p[key])
	return n
}

func (p Payload) Float(key string) float64 {
	n, _ := asFloat(p[key])
	return n
}

func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

func (p Payload) IntSlice(key string) []int {
	if ints, ok := p[key].([]int); ok {
		return ints
	}
	items, ok := p[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		if n, ok := asInt(item); ok {
			out = append(out, n)
		}
	}
	return out
}
