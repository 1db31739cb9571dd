package formskema

import "strconv"

// Or is a field type matching a value that satisfies at least one of its
// candidate types.
type Or struct {
	types []Type
}

// OneOf returns an Or over types. Candidates are tried independently, so a
// value failing every candidate reports one error group per candidate.
func OneOf(types ...Type) *Or {
	return &Or{types: append([]Type(nil), types...)}
}

func (o *Or) typeName() string { return "OneOf" }

// Types returns the candidate types in declaration order.
func (o *Or) Types() []Type { return append([]Type(nil), o.types...) }

// Fields returns one required field per candidate, keyed type0..typeN-1.
func (o *Or) Fields() map[string]*Field {
	out := make(map[string]*Field, len(o.types))
	for i, t := range o.types {
		out[candidateKey(i)] = &Field{Type: t, Required: true}
	}
	return out
}

// Model spreads value over the candidate keys returned by Fields.
func (o *Or) Model(value any) Model {
	out := make(Model, len(o.types))
	for i := range o.types {
		out[candidateKey(i)] = value
	}
	return out
}

// schemaFor builds the candidate schema. It shares the parent's messages,
// logger and registered types so custom types dispatch the same way.
func (o *Or) schemaFor(parent *Schema) *Schema {
	s := New(o.Fields(), WithName(parent.name+".oneOf"), WithLogger(parent.logger))
	s.messages = parent.messages
	s.types = parent.typeTable()
	return s
}

func candidateKey(i int) string { return "type" + strconv.Itoa(i) }
