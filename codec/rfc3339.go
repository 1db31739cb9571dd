// Package codec converts wire representations inside models before validation.
package codec

import (
	"time"

	"github.com/reoring/formskema"
)

// DecodeDates returns a copy of model in which RFC 3339 strings at
// Date-typed positions of s are replaced by time.Time. It follows nested
// schemas, ArrayOf and Optional. Strings that do not parse are kept so
// validation reports them as type errors. model itself is not modified.
func DecodeDates(s *formskema.Schema, model formskema.Model) formskema.Model {
	if model == nil {
		return nil
	}
	out := make(formskema.Model, len(model))
	for k, v := range model {
		out[k] = v
	}
	for _, key := range s.Keys() {
		v, ok := model[key]
		f := s.Field(key)
		if !ok || f == nil {
			continue
		}
		out[key] = decodeField(f.Type, v)
	}
	return out
}

func decodeField(t formskema.Type, v any) any {
	if elem, ok := formskema.ArrayElem(t); ok {
		items, ok := v.([]any)
		if !ok {
			return v
		}
		conv := make([]any, len(items))
		for i, it := range items {
			conv[i] = decodeValue(elem, it)
		}
		return conv
	}
	return decodeValue(t, v)
}

func decodeValue(t formskema.Type, v any) any {
	if inner, ok := formskema.OptionalElem(t); ok {
		t = inner
	}
	switch tt := t.(type) {
	case *formskema.Schema:
		if m, ok := v.(map[string]any); ok {
			return DecodeDates(tt, m)
		}
	case *formskema.TypeDescriptor:
		if tt.Name != formskema.Date.Name {
			return v
		}
		if s, ok := v.(string); ok {
			if ts, err := ParseRFC3339(s); err == nil {
				return ts
			}
		}
	}
	return v
}

// ParseRFC3339 accepts RFC 3339 timestamps with optional fractional seconds.
func ParseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

// FormatRFC3339 renders t in UTC using RFC 3339 with trimmed fractional seconds.
func FormatRFC3339(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
