// Package rules provides reusable field and model validators.
//
// Field rules pass for absent or nil values and for values of another kind
// than the one they inspect; presence and kind are reported by the schema's
// required and type checks.
package rules

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/reoring/formskema"
)

func fieldRule(id, msg string, ok func(v any, f *formskema.Field) bool) *formskema.Validator {
	return &formskema.Validator{
		ID:           id,
		ErrorMessage: msg,
		Check: func(_ context.Context, v any, f *formskema.Field, _ formskema.Model) formskema.Result {
			if v == nil {
				return formskema.Pass()
			}
			return formskema.Bool(ok(v, f))
		},
	}
}

// MinLength requires strings to hold at least n characters and arrays at
// least n elements.
func MinLength(n int, msg string) *formskema.Validator {
	return fieldRule(fmt.Sprintf("minLength:%d", n), msg, func(v any, _ *formskema.Field) bool {
		l, ok := length(v)
		return !ok || l >= n
	})
}

// MaxLength limits strings to n characters and arrays to n elements.
func MaxLength(n int, msg string) *formskema.Validator {
	return fieldRule(fmt.Sprintf("maxLength:%d", n), msg, func(v any, _ *formskema.Field) bool {
		l, ok := length(v)
		return !ok || l <= n
	})
}

// Pattern requires strings to match re.
func Pattern(re *regexp.Regexp, msg string) *formskema.Validator {
	return fieldRule("pattern:"+re.String(), msg, func(v any, _ *formskema.Field) bool {
		s, ok := v.(string)
		return !ok || re.MatchString(s)
	})
}

// Range requires numbers within [min, max]. NaN is left to the required check.
func Range(min, max float64, msg string) *formskema.Validator {
	return fieldRule(fmt.Sprintf("range:%g:%g", min, max), msg, func(v any, _ *formskema.Field) bool {
		f, ok := number(v)
		return !ok || math.IsNaN(f) || (f >= min && f <= max)
	})
}

// In requires the value to be one of the field's Options. Array values must
// hold only option values.
func In(msg string) *formskema.Validator {
	return fieldRule("in", msg, func(v any, f *formskema.Field) bool {
		if f == nil || len(f.Options) == 0 {
			return true
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				if !isOption(rv.Index(i).Interface(), f.Options) {
					return false
				}
			}
			return true
		}
		return isOption(v, f.Options)
	})
}

// UUID requires strings in canonical UUID form.
func UUID(msg string) *formskema.Validator {
	return fieldRule("uuid", msg, func(v any, _ *formskema.Field) bool {
		s, ok := v.(string)
		if !ok {
			return true
		}
		_, err := uuid.Parse(s)
		return err == nil
	})
}

func isOption(v any, options []any) bool {
	for _, opt := range options {
		if equal(v, formskema.OptionValue(opt)) {
			return true
		}
	}
	return false
}

func length(v any) (int, bool) {
	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}
