package formskema

import (
	"math"
	"reflect"
	"time"
)

// Built-in types. Every Schema starts with these registered under their names.
var (
	String = &TypeDescriptor{
		Name:         "String",
		DefaultValue: func() any { return "" },
		Validate:     isString,
	}
	Number = &TypeDescriptor{
		Name:             "Number",
		DefaultValue:     func() any { return math.NaN() },
		Validate:         isNumber,
		ValidateRequired: isRequiredNumber,
	}
	Boolean = &TypeDescriptor{
		Name:             "Boolean",
		DefaultValue:     func() any { return false },
		Validate:         isBoolean,
		ValidateRequired: isBoolean,
	}
	Object = &TypeDescriptor{
		Name:             "Object",
		DefaultValue:     func() any { return map[string]any{} },
		Validate:         isObject,
		ValidateRequired: isRequiredObject,
	}
	Array = &TypeDescriptor{
		Name:             "Array",
		DefaultValue:     func() any { return []any{} },
		Validate:         isArray,
		ValidateRequired: isRequiredArray,
	}
	Date = &TypeDescriptor{
		Name:             "Date",
		DefaultValue:     func() any { return time.Now() },
		Validate:         isDate,
		ValidateRequired: isDate,
	}
)

func builtinTypes() map[string]*TypeDescriptor {
	return map[string]*TypeDescriptor{
		String.Name:  String,
		Number.Name:  Number,
		Boolean.Name: Boolean,
		Object.Name:  Object,
		Array.Name:   Array,
		Date.Name:    Date,
	}
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

// isRequiredNumber rejects NaN, which is still a Number for the type check.
func isRequiredNumber(v any) bool {
	f, ok := toFloat(v)
	return ok && !math.IsNaN(f)
}

func isBoolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isObject(v any) bool {
	_, ok := asObject(v)
	return ok
}

func isRequiredObject(v any) bool {
	m, ok := asObject(v)
	return ok && len(m) > 0
}

func isArray(v any) bool {
	_, ok := asSlice(v)
	return ok
}

func isRequiredArray(v any) bool {
	s, ok := asSlice(v)
	return ok && len(s) > 0
}

func isDate(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case *time.Time:
		return t != nil
	}
	return false
}

// isPresent is the generic required check: truthy and, for values with a
// length, non-empty.
func isPresent(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return !rv.IsNil() && rv.Len() > 0
	case reflect.Array, reflect.String:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
