package formskema

import (
	"context"
	"fmt"
)

// Field describes one model attribute.
type Field struct {
	Type     Type
	Required bool
	// Label replaces the key in every message about this field.
	Label string
	// DefaultValue overrides the default derived from Options or Type.
	DefaultValue any
	// Options lists the allowed values, either raw values or Choice entries.
	// The first option is the default when DefaultValue is nil.
	Options    []any
	Validators []*Validator
	// DisableDefaultValue leaves the field out of Schema.DefaultValues.
	DisableDefaultValue bool
}

// Choice is a labelled option.
type Choice struct {
	Label string
	Value any
}

// OptionValue returns the value of an Options entry.
func OptionValue(opt any) any {
	switch c := opt.(type) {
	case Choice:
		return c.Value
	case *Choice:
		if c == nil {
			return nil
		}
		return c.Value
	}
	return opt
}

func (f *Field) label(key string) string {
	if f != nil && f.Label != "" {
		return f.Label
	}
	return key
}

// Validator is a custom field rule.
type Validator struct {
	// ID deduplicates validators added with Schema.ExtendFieldValidators.
	ID string
	// Check inspects the field value; model holds the schema's fields of the
	// validated model.
	Check func(ctx context.Context, value any, field *Field, model Model) Result
	// ErrorMessage is recorded when Check returns Fail.
	ErrorMessage string
	// ErrorMessageFunc, when set, is called instead of using ErrorMessage.
	ErrorMessageFunc func() string
}

func (v *Validator) message() string {
	if v.ErrorMessageFunc != nil {
		return v.ErrorMessageFunc()
	}
	return v.ErrorMessage
}

func (v *Validator) check() error {
	if v == nil || v.Check == nil {
		return fmt.Errorf("%w: missing check function", ErrMalformedValidator)
	}
	return nil
}

// FieldValidators returns the validators of field key.
func (s *Schema) FieldValidators(key string) []*Validator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f := s.fields[key]; f != nil {
		return f.Validators
	}
	return nil
}

// SetFieldValidator appends v to the validators of field key.
func (s *Schema) SetFieldValidator(key string, v *Validator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f := s.fields[key]; f != nil {
		f.Validators = append(f.Validators, v)
	}
}

// ExtendFieldValidators appends v unless the field already holds the same
// validator or one with the same non-empty ID.
func (s *Schema) ExtendFieldValidators(key string, v *Validator) {
	for _, cur := range s.FieldValidators(key) {
		if cur == v || (v != nil && v.ID != "" && cur != nil && cur.ID == v.ID) {
			return
		}
	}
	s.SetFieldValidator(key, v)
}
