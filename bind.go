package formskema

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Bind decodes model into out, a pointer to a struct or map. Struct fields
// are matched by their json tag (see ResolveStructKey). RFC 3339 strings
// decode into time.Time fields.
func Bind(model Model, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: false,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			numberToIntHook,
		),
	})
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	if err := dec.Decode(model); err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	return nil
}

// ValidateInto validates model and binds it into out when no errors were
// recorded. The tree is returned either way.
func (s *Schema) ValidateInto(ctx context.Context, model Model, out any) (Tree, error) {
	tree, err := s.Validate(ctx, model)
	if err != nil || len(tree) > 0 {
		return tree, err
	}
	return tree, Bind(model, out)
}

// numberToIntHook lets whole float64 values (as produced by JSON decoding)
// land in integer fields.
func numberToIntHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f := data.(float64)
		if f != float64(int64(f)) {
			return nil, fmt.Errorf("%v is not a whole number", f)
		}
		return int64(f), nil
	}
	return data, nil
}
