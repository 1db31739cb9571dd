package formskema

import "fmt"

// Formatter renders a message for a field label (the field's Label, or its
// key when no label is set).
type Formatter func(label string) string

// Messages maps message names to formatters. Schemas start from
// DefaultMessages and apply overrides on top.
type Messages map[string]Formatter

// Message names.
const (
	MsgNotDefinedKey    = "notDefinedKey"
	MsgModelIsUndefined = "modelIsUndefined"
	MsgValidateRequired = "validateRequired"
	MsgInvalidValue     = "invalidValue"
	MsgValidateString   = "validateString"
	MsgValidateNumber   = "validateNumber"
	MsgValidateObject   = "validateObject"
	MsgValidateArray    = "validateArray"
	MsgValidateBoolean  = "validateBoolean"
	MsgValidateDate     = "validateDate"
)

// TypeMessage returns the message name used for type errors of typeName.
func TypeMessage(typeName string) string { return "validate" + typeName }

// DefaultMessages returns the English catalog.
func DefaultMessages() Messages {
	return Messages{
		MsgNotDefinedKey:    func(key string) string { return fmt.Sprintf("Key '%s' is not defined in schema", key) },
		MsgModelIsUndefined: func(string) string { return "Validated model is undefined" },
		MsgValidateRequired: func(label string) string { return fmt.Sprintf("Field '%s' is required", label) },
		MsgInvalidValue:     func(label string) string { return fmt.Sprintf("Field '%s' is invalid", label) },
		MsgValidateString:   notA("String"),
		MsgValidateNumber:   notA("Number"),
		MsgValidateObject:   notA("Object"),
		MsgValidateArray:    notA("Array"),
		MsgValidateBoolean:  notA("Boolean"),
		MsgValidateDate:     notA("Date"),
	}
}

func notA(typeName string) Formatter {
	return func(label string) string { return fmt.Sprintf("Field '%s' is not a %s", label, typeName) }
}

// With returns a copy of m with overrides applied. Nil formatters are ignored.
func (m Messages) With(overrides Messages) Messages {
	out := make(Messages, len(m)+len(overrides))
	for k, f := range m {
		out[k] = f
	}
	for k, f := range overrides {
		if f != nil {
			out[k] = f
		}
	}
	return out
}

// Format renders message name for label. Unknown names render the name itself.
func (m Messages) Format(name, label string) string {
	if f, ok := m[name]; ok {
		return f(label)
	}
	return name
}

func (m Messages) typeError(t *TypeDescriptor, label string) string {
	if f, ok := m[TypeMessage(t.Name)]; ok {
		return f(label)
	}
	if t.Message != nil {
		return t.Message(label)
	}
	return notA(t.Name)(label)
}

func (m Messages) requiredError(t *TypeDescriptor, label string) string {
	if t != nil && t.RequiredMessage != nil {
		return t.RequiredMessage(label)
	}
	return m.Format(MsgValidateRequired, label)
}
