package formskema

import "fmt"

// Model is the value validated by a Schema.
type Model = map[string]any

// Type is the type of a schema field. It is one of *TypeDescriptor, *Schema,
// *Or, or the wrappers returned by ArrayOf and Optional.
type Type interface {
	typeName() string
}

// TypeDescriptor is a named bundle of a default value, a type-membership
// predicate and an optional presence predicate. Schemas dispatch on Name, so
// registering a descriptor under an existing name replaces that entry.
//
// A descriptor must not be modified once a schema has seen it.
type TypeDescriptor struct {
	Name string
	// DefaultValue produces the zero value of the type. A nil DefaultValue
	// means the type contributes no default.
	DefaultValue func() any
	// Validate reports whether a value belongs to the type.
	Validate func(value any) bool
	// ValidateRequired reports whether a value is meaningfully present. When
	// nil, a generic truthy and non-empty check is used.
	ValidateRequired func(value any) bool
	// Message formats the type error when the schema messages have no
	// "validate<Name>" entry.
	Message Formatter
	// RequiredMessage formats the required error instead of the schema's
	// validateRequired message.
	RequiredMessage Formatter
}

// NewType returns a descriptor after checking that it can be dispatched.
func NewType(name string, validate func(any) bool, defaultValue func() any) (*TypeDescriptor, error) {
	t := &TypeDescriptor{Name: name, Validate: validate, DefaultValue: defaultValue}
	if err := t.check(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *TypeDescriptor) typeName() string {
	if t == nil {
		return "<nil>"
	}
	return t.Name
}

func (t *TypeDescriptor) check() error {
	if t == nil {
		return fmt.Errorf("%w: nil descriptor", ErrMalformedType)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: missing name", ErrMalformedType)
	}
	if t.Validate == nil {
		return fmt.Errorf("%w: %s has no validator", ErrMalformedType, t.Name)
	}
	return nil
}

type arrayType struct{ elem Type }

func (a arrayType) typeName() string { return "ArrayOf" + TypeName(a.elem) }

// ArrayOf declares a field holding an array whose elements are of type t.
func ArrayOf(t Type) Type { return arrayType{elem: t} }

// ArrayElem returns the element type when t was built by ArrayOf.
func ArrayElem(t Type) (Type, bool) {
	a, ok := t.(arrayType)
	if !ok {
		return nil, false
	}
	return a.elem, true
}

type optionalType struct{ inner Type }

func (o optionalType) typeName() string { return "Optional" + TypeName(o.inner) }

// Optional wraps t so that nil passes the type check. Values other than nil
// are validated as t, the required check is t's required check, and the
// field contributes no default value.
func Optional(t Type) Type { return optionalType{inner: t} }

// OptionalElem returns the wrapped type when t was built by Optional.
func OptionalElem(t Type) (Type, bool) {
	o, ok := t.(optionalType)
	if !ok {
		return nil, false
	}
	return o.inner, true
}

// TypeName returns the dispatch name of t.
func TypeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.typeName()
}

// fieldElem strips ArrayOf and Optional wrappers.
func fieldElem(t Type) Type {
	if e, ok := ArrayElem(t); ok {
		t = e
	}
	if e, ok := OptionalElem(t); ok {
		t = e
	}
	return t
}
