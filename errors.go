package formskema

import (
	"errors"
	"fmt"
	"strings"
)

// Programming errors. They abort a validation and are returned to the caller
// instead of being recorded in the error Tree.
var (
	// ErrUnrecognizedType is returned when a field type cannot be dispatched.
	ErrUnrecognizedType = errors.New("unrecognized type")
	// ErrMalformedType is returned for a type descriptor without a name or validator.
	ErrMalformedType = errors.New("malformed type descriptor")
	// ErrMalformedValidator is returned for a custom validator without a Check function.
	ErrMalformedValidator = errors.New("malformed validator")
)

func unrecognizedType(name string) error {
	return fmt.Errorf("%w %s", ErrUnrecognizedType, name)
}

// Issue is a single message of an error Tree addressed by a JSON Pointer.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /owners/1/name).
	Message string `json:"message"`
}

// Issues is a flattened error Tree that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s: %s", iss[i].Path, iss[i].Message)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Issues flattens t into JSON Pointer addressed issues, in key order.
// Field types decide whether list positions are array indexes: positions of
// array-typed fields become index segments, for every other field nested
// trees are rendered directly under the field key.
func (s *Schema) Issues(t Tree) Issues {
	var out Issues
	s.collectIssues(rootPath(), t, &out)
	return out
}

// Err returns the flattened issues of t, or nil when t is empty.
func (s *Schema) Err(t Tree) error {
	if iss := s.Issues(t); len(iss) > 0 {
		return iss
	}
	return nil
}

func (s *Schema) collectIssues(base pathRef, t Tree, out *Issues) {
	for _, key := range t.Keys() {
		p := base.Field(key)
		var elem Type
		indexed := false
		if s != nil {
			if f := s.Field(key); f != nil {
				elem, indexed = ArrayElem(f.Type)
				if !indexed {
					elem = f.Type
				}
			}
		}
		for i, e := range t[key] {
			ep := p
			if indexed {
				ep = p.Index(i)
			}
			collectEntry(ep, nestedSchema(elem), e, out)
		}
	}
}

func collectEntry(p pathRef, sub *Schema, e Entry, out *Issues) {
	switch v := e.(type) {
	case Message:
		*out = append(*out, Issue{Path: p.Pointer(), Message: string(v)})
	case List:
		for _, it := range v {
			collectEntry(p, sub, it, out)
		}
	case Tree:
		sub.collectIssues(p, v, out)
	}
}

func nestedSchema(t Type) *Schema {
	if inner, ok := OptionalElem(t); ok {
		t = inner
	}
	s, _ := t.(*Schema)
	return s
}
