package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawValue holds an upstream value whose shape varies between records:
// a string, a list, a nested object, a number or null.
type RawValue struct {
	v any
}

// NewRawValue wraps an already decoded JSON value
func NewRawValue(v any) RawValue {
	return RawValue{v: v}
}

// Value returns the wrapped value
func (r RawValue) Value() any {
	return r.v
}

// IsEmpty reports whether the value is null, an empty string or an empty list
func (r RawValue) IsEmpty() bool {
	switch v := r.v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

// String renders the value for display
func (r RawValue) String() string {
	return Stringify(r.v)
}

// UnmarshalJSON implements json.Unmarshaler
func (r *RawValue) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.v = v
	return nil
}

// MarshalJSON implements json.Marshaler
func (r RawValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.v)
}

// Stringify renders a loosely typed upstream value as display text.
// Lists are joined with ", ", objects render their "text" member when present
// and fall back to JSON otherwise.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return GradeUnavailable
	case RawValue:
		return Stringify(v.v)
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if text, ok := v["text"].(string); ok && text != "" {
			return text
		}
		data, err := json.Marshal(v)
		if err != nil {
			return GradeUnavailable
		}
		return string(data)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return GradeUnavailable
	}
	return string(data)
}
