// Package types holds additional type descriptors for formskema schemas.
package types

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/reoring/formskema"
)

// UUID accepts canonical UUID strings and uuid.UUID values. Its default is
// a fresh random UUID string; the nil UUID does not satisfy required.
var UUID = &formskema.TypeDescriptor{
	Name:         "UUID",
	DefaultValue: func() any { return uuid.NewString() },
	Validate: func(v any) bool {
		_, ok := parseUUID(v)
		return ok
	},
	ValidateRequired: func(v any) bool {
		id, ok := parseUUID(v)
		return ok && id != uuid.Nil
	},
	Message: func(label string) string { return fmt.Sprintf("Field '%s' is not a UUID", label) },
}

// Integer accepts numbers without a fractional part.
var Integer = &formskema.TypeDescriptor{
	Name:         "Integer",
	DefaultValue: func() any { return int64(0) },
	Validate:     isInteger,
	ValidateRequired: func(v any) bool {
		return isInteger(v)
	},
	Message: func(label string) string { return fmt.Sprintf("Field '%s' is not an Integer", label) },
}

// Register adds the descriptors of this package to s.
func Register(s *formskema.Schema) error {
	for _, t := range []*formskema.TypeDescriptor{UUID, Integer} {
		if err := s.RegisterType(t); err != nil {
			return err
		}
	}
	return nil
}

func parseUUID(v any) (uuid.UUID, bool) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, true
	case string:
		id, err := uuid.Parse(t)
		return id, err == nil
	}
	return uuid.Nil, false
}

func isInteger(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		return !math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n)
	case float32:
		f := float64(n)
		return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
	}
	return false
}
