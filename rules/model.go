package rules

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/formskema"
)

// Op defines simple comparison operators for If(...).Then(...)
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

// Conditional composes conditional execution of model validators.
type Conditional struct {
	path string
	op   Op
	want any
	all  []Conditional // composite AND
	any  []Conditional // composite OR
}

// If builds a conditional comparing the value at a dotted model path
// ("status", "owner.name", "items.0.sku") with want.
func If(path string, op Op, want any) Conditional {
	return Conditional{path: path, op: op, want: want}
}

// IfAll builds a conditional that requires all conditions to hold.
func IfAll(conds ...Conditional) Conditional { return Conditional{all: conds} }

// IfAny builds a conditional that requires any condition to hold.
func IfAny(conds ...Conditional) Conditional { return Conditional{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Conditional) And(others ...Conditional) Conditional {
	return IfAll(append([]Conditional{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Conditional) Or(others ...Conditional) Conditional {
	return IfAny(append([]Conditional{c}, others...)...)
}

// Then returns a model validator running validators when the condition holds.
func (c Conditional) Then(validators ...formskema.ModelValidator) formskema.ModelValidator {
	return formskema.NewModelValidator(func(ctx context.Context, m formskema.Model, v *formskema.Validation) formskema.Result {
		if !c.eval(m) {
			return formskema.Pass()
		}
		return All(validators...).ValidateModel(ctx, m, v)
	})
}

func (c Conditional) eval(m formskema.Model) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.eval(m) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.eval(m) {
				return true
			}
		}
		return false
	}
	cur, ok := valueAt(m, c.path)
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

// All runs every validator and combines their results.
func All(validators ...formskema.ModelValidator) formskema.ModelValidator {
	return formskema.NewModelValidator(func(ctx context.Context, m formskema.Model, v *formskema.Validation) formskema.Result {
		var out []formskema.Result
		for _, mv := range validators {
			if mv == nil {
				continue
			}
			out = append(out, mv.ValidateModel(ctx, m, v))
		}
		return formskema.Multiple(out...)
	})
}

// Require records msg at path when the value there is missing or empty.
func Require(path, msg string) formskema.ModelValidator {
	return formskema.NewModelValidator(func(_ context.Context, m formskema.Model, v *formskema.Validation) formskema.Result {
		cur, ok := valueAt(m, path)
		if !ok || !present(cur) {
			v.SetModelError(path, msg)
		}
		return formskema.Pass()
	})
}

// AtLeastOne records msg at collectionPath when it holds an empty array.
// Values that are not arrays are left to the type check.
func AtLeastOne(collectionPath, msg string) formskema.ModelValidator {
	return formskema.NewModelValidator(func(_ context.Context, m formskema.Model, v *formskema.Validation) formskema.Result {
		val, ok := valueAt(m, collectionPath)
		if !ok {
			return formskema.Pass()
		}
		rv := reflect.ValueOf(val)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if rv.Len() == 0 {
				v.SetModelError(collectionPath, msg)
			}
		}
		return formskema.Pass()
	})
}

// UniqueBy records msg at "<collectionPath>.<i>.<keyPath>" for every element
// whose key repeats the key of an earlier element.
// Note: keys are compared by their printed form; keep the key a single type.
func UniqueBy(collectionPath, keyPath, msg string) formskema.ModelValidator {
	return formskema.NewModelValidator(func(_ context.Context, m formskema.Model, v *formskema.Validation) formskema.Result {
		val, ok := valueAt(m, collectionPath)
		if !ok {
			return formskema.Pass()
		}
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return formskema.Pass()
		}
		seen := map[string]int{}
		for i := 0; i < rv.Len(); i++ {
			kv, ok := valueWithin(rv.Index(i).Interface(), keyPath)
			if !ok {
				continue
			}
			key := fmt.Sprint(kv)
			if _, dup := seen[key]; dup {
				v.SetModelError(fmt.Sprintf("%s.%d.%s", collectionPath, i, keyPath), msg)
				continue
			}
			seen[key] = i
		}
		return formskema.Pass()
	})
}

// ------- helpers -------

func valueAt(m formskema.Model, path string) (any, bool) {
	return valueWithin(m, path)
}

// valueWithin navigates maps, slices and structs by a dotted path. Struct
// fields are matched with formskema.ResolveStructKey.
func valueWithin(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	cur := reflect.ValueOf(v)
	for _, seg := range strings.Split(path, ".") {
		for cur.IsValid() && (cur.Kind() == reflect.Pointer || cur.Kind() == reflect.Interface) {
			if cur.IsNil() {
				return nil, false
			}
			cur = cur.Elem()
		}
		if !cur.IsValid() {
			return nil, false
		}
		switch cur.Kind() {
		case reflect.Struct:
			found := false
			rt := cur.Type()
			for i := 0; i < rt.NumField(); i++ {
				sf := rt.Field(i)
				if !sf.IsExported() {
					continue
				}
				if formskema.ResolveStructKey(sf) == seg {
					cur = cur.Field(i)
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return nil, false
			}
			mv := cur.MapIndex(reflect.ValueOf(seg).Convert(cur.Type().Key()))
			if !mv.IsValid() {
				return nil, false
			}
			cur = mv
		case reflect.Slice, reflect.Array:
			idx, ok := tryParseInt(seg)
			if !ok || idx < 0 || idx >= cur.Len() {
				return nil, false
			}
			cur = cur.Index(idx)
		default:
			return nil, false
		}
	}
	if !cur.IsValid() {
		return nil, false
	}
	return cur.Interface(), true
}

func compare(cur any, op Op, want any) bool {
	switch op {
	case Eq:
		return equal(cur, want)
	case Ne:
		return !equal(cur, want)
	case Lt, Le, Gt, Ge:
		return compareOrdered(cur, op, want)
	default:
		return false
	}
}

// equal treats numbers of different kinds as equal when their values are.
func equal(a, b any) bool {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

func compareOrdered(cur any, op Op, want any) bool {
	a, ok := number(cur)
	if !ok {
		return false
	}
	b, ok := number(want)
	if !ok {
		return false
	}
	switch op {
	case Lt:
		return a < b
	case Le:
		return a <= b
	case Gt:
		return a > b
	case Ge:
		return a >= b
	}
	return false
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func present(v any) bool {
	if v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	}
	return true
}

func tryParseInt(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
