package formskema

// DefaultValues builds a model holding the default of every field.
//
// Per field, the first available source wins: DefaultValue, the first entry
// of Options, the defaults of a nested schema, then the type's DefaultValue.
// Array-typed fields wrap a scalar default in a one-element slice. Fields with
// DisableDefaultValue, and Optional fields without an explicit default, are
// left out.
func (s *Schema) DefaultValues() Model {
	out := make(Model)
	for _, key := range s.Keys() {
		f := s.Field(key)
		if f == nil || f.DisableDefaultValue {
			continue
		}
		_, isArray := ArrayElem(f.Type)
		var (
			v  any
			ok bool
		)
		switch {
		case f.DefaultValue != nil:
			v, ok = f.DefaultValue, true
		case len(f.Options) > 0:
			v, ok = OptionValue(f.Options[0]), true
		default:
			v, ok = s.typeDefault(f.Type)
		}
		if !ok {
			continue
		}
		if isArray {
			v = wrapSlice(v)
		}
		out[key] = v
	}
	return out
}

// typeDefault returns the default of t, dispatched by name so registered
// replacements of built-in types provide their own defaults.
func (s *Schema) typeDefault(t Type) (any, bool) {
	switch tt := t.(type) {
	case arrayType:
		return s.typeDefault(tt.elem)
	case optionalType:
		return nil, false
	case *Schema:
		if tt == nil {
			return nil, false
		}
		return tt.DefaultValues(), true
	case *Or:
		if tt == nil || len(tt.types) == 0 {
			return nil, false
		}
		return s.typeDefault(tt.types[0])
	case *TypeDescriptor:
		d, err := s.resolveType(tt)
		if err != nil || d.DefaultValue == nil {
			return nil, false
		}
		return d.DefaultValue(), true
	}
	return nil, false
}

func wrapSlice(v any) any {
	if _, ok := asSlice(v); ok {
		return v
	}
	return []any{v}
}
