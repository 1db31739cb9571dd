package formskema

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Validation is one run of Schema.ValidateAsync. It owns the error tree of
// that run and the validators still pending in it.
type Validation struct {
	schema  *Schema
	ctx     context.Context
	top     bool
	started time.Time

	mu     sync.Mutex
	errors Tree

	group    errgroup.Group
	deferred atomic.Int64

	done chan struct{}
	err  error
}

func (s *Schema) newValidation(ctx context.Context, top bool) *Validation {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Validation{
		schema:  s,
		ctx:     ctx,
		top:     top,
		started: time.Now(),
		errors:  Tree{},
		done:    make(chan struct{}),
	}
}

// Schema returns the schema being validated.
func (v *Validation) Schema() *Schema { return v.schema }

// Done is closed once the validation and all its deferred validators finished.
func (v *Validation) Done() <-chan struct{} { return v.done }

// IsPending reports whether deferred validators are still running.
func (v *Validation) IsPending() bool {
	select {
	case <-v.done:
		return false
	default:
		return true
	}
}

// Wait blocks until the validation is complete and returns its error tree.
func (v *Validation) Wait() (Tree, error) {
	<-v.done
	if v.err != nil {
		return nil, v.err
	}
	return v.Errors(), nil
}

// Errors returns a snapshot of the errors recorded so far.
func (v *Validation) Errors() Tree {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(Tree, len(v.errors))
	for k, l := range v.errors {
		out[k] = l
	}
	return out
}

// SetModelError records message at a dotted model path such as
// "owners.1.name". A numeric segment following a key addresses an array
// index. When the key holds a nested schema the rest of the path is resolved
// inside it and the resulting tree is merged at this level.
func (v *Validation) SetModelError(path, message string) {
	v.setModelEntry(path, Message(message))
}

// SetModelErrorTree merges a prepared error tree at a dotted model path.
func (v *Validation) SetModelErrorTree(path string, t Tree) {
	v.setModelEntry(path, t)
}

func (v *Validation) setModelEntry(path string, e Entry) {
	first, index, rest := splitModelPath(path)
	if f := v.schema.Field(first); f != nil && len(rest) > 0 {
		if sub, ok := fieldElem(f.Type).(*Schema); ok {
			nested := sub.newValidation(v.ctx, false)
			nested.setModelEntry(strings.Join(rest, "."), e)
			e = nested.Errors()
		}
	}
	v.setError(first, e, index)
}

// setError records e under key. Every write goes through the merge law so
// synchronous and deferred writers may target the same key in any order.
func (v *Validation) setError(key string, e Entry, index int) {
	if emptyEntry(e) {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	list := v.errors[key]
	if index >= 0 {
		v.errors[key] = setAt(list, index, e)
		return
	}
	if t, ok := e.(Tree); ok {
		for i, cur := range list {
			if _, isTree := cur.(Tree); isTree {
				v.errors[key] = setAt(list, i, t)
				return
			}
		}
	}
	out := make(List, 0, len(list)+1)
	out = append(out, list...)
	v.errors[key] = append(out, e)
}

func (v *Validation) spawn(fn func(ctx context.Context) error) {
	v.deferred.Add(1)
	v.group.Go(func() error { return fn(v.ctx) })
}

func (v *Validation) start(model any) {
	err := v.run(model)
	if err != nil || v.deferred.Load() == 0 {
		v.finish(err)
		return
	}
	go func() { v.finish(v.group.Wait()) }()
}

func (v *Validation) finish(err error) {
	v.err = err
	if v.top {
		s := v.schema
		took := time.Since(v.started)
		tree := v.Errors()
		if err != nil {
			s.logger.Error("validation aborted", zap.String("schema", s.name), zap.Error(err))
		} else {
			s.logger.Debug("validation finished",
				zap.String("schema", s.name),
				zap.Int("error_keys", len(tree)),
				zap.Int64("deferred", v.deferred.Load()),
				zap.Duration("took", took))
		}
		if s.observer != nil {
			s.observer.ObserveValidation(s.name, took, tree, err)
		}
	}
	close(v.done)
}

func (v *Validation) label(key string) string {
	return v.schema.Field(key).label(key)
}

func (v *Validation) run(value any) error {
	s := v.schema
	model, ok := asObject(value)
	if !ok {
		v.setError("model", Message(s.messages.Format(MsgModelIsUndefined, "")), -1)
		return nil
	}
	keys := s.Keys()
	if s.validateKeys {
		v.checkKeys(model)
	}
	picked := make(Model, len(keys))
	for _, k := range keys {
		if val, ok := model[k]; ok {
			picked[k] = val
		}
	}
	for _, k := range keys {
		f := s.Field(k)
		if err := v.checkField(k, f, model); err != nil {
			return err
		}
		if err := v.runValidators(k, f, model[k], picked); err != nil {
			return err
		}
	}
	return v.runModelValidators(model)
}

func (v *Validation) checkKeys(model Model) {
	s := v.schema
	unknown := make([]string, 0)
	for k := range model {
		if s.Field(k) == nil {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		v.setError(k, Message(s.messages.Format(MsgNotDefinedKey, k)), -1)
	}
}

// checkField runs the type and required checks of one field. Absent keys
// skip the type check; presence is the required check's concern.
func (v *Validation) checkField(key string, f *Field, model Model) error {
	if f == nil {
		return unrecognizedType(TypeName(nil))
	}
	if err := v.schema.dispatchable(f.Type); err != nil {
		return err
	}
	value, present := model[key]
	if present {
		if elem, ok := ArrayElem(f.Type); ok {
			isArr, err := v.validateType(Array, value, key, -1)
			if err != nil {
				return err
			}
			if isArr {
				items, _ := asSlice(value)
				for i, item := range items {
					if _, err := v.validateType(elem, item, key, i); err != nil {
						return err
					}
				}
			}
		} else if _, err := v.validateType(f.Type, value, key, -1); err != nil {
			return err
		}
	}
	return v.validateRequired(f, value, key)
}

// validateType dispatches on t and records a type error at key (and index,
// when index >= 0) for values outside the type.
func (v *Validation) validateType(t Type, value any, key string, index int) (bool, error) {
	switch tt := t.(type) {
	case *TypeDescriptor:
		d, err := v.schema.resolveType(tt)
		if err != nil {
			return false, err
		}
		if d.Validate(value) {
			return true, nil
		}
		v.setError(key, Message(v.schema.messages.typeError(d, v.label(key))), index)
		return false, nil
	case *Schema:
		return v.validateSchema(tt, value, key, index)
	case *Or:
		return v.validateOneOf(tt, value, key, index)
	case optionalType:
		if value == nil {
			return true, nil
		}
		return v.validateType(tt.inner, value, key, index)
	}
	return false, unrecognizedType(TypeName(t))
}

func (v *Validation) validateSchema(sub *Schema, value any, key string, index int) (bool, error) {
	nested := sub.newValidation(v.ctx, false)
	nested.start(value)
	select {
	case <-nested.Done():
		tree, err := nested.Wait()
		if err != nil {
			return false, err
		}
		if len(tree) == 0 {
			return true, nil
		}
		v.setError(key, tree, index)
		return false, nil
	default:
	}
	v.spawn(func(context.Context) error {
		tree, err := nested.Wait()
		if err != nil {
			return err
		}
		v.setError(key, tree, index)
		return nil
	})
	return false, nil
}

// validateOneOf validates value against a throwaway schema holding one
// required field per candidate type. The value matches when at least one
// candidate produced no error.
func (v *Validation) validateOneOf(o *Or, value any, key string, index int) (bool, error) {
	synthetic := o.schemaFor(v.schema)
	run := synthetic.newValidation(v.ctx, false)
	run.start(o.Model(value))
	tree, err := run.Wait()
	if err != nil {
		return false, err
	}
	if len(tree) < len(o.types) {
		return true, nil
	}
	v.setError(key, tree, index)
	return false, nil
}

func (v *Validation) validateRequired(f *Field, value any, key string) error {
	if !f.Required {
		return nil
	}
	ok, d, err := v.schema.present(f.Type, value)
	if err != nil {
		return err
	}
	if !ok {
		v.setError(key, Message(v.schema.messages.requiredError(d, v.label(key))), -1)
	}
	return nil
}

func (v *Validation) runValidators(key string, f *Field, value any, picked Model) error {
	for _, val := range f.Validators {
		if err := val.check(); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		v.resolve(key, val, val.Check(v.ctx, value, f, picked))
	}
	return nil
}

// resolve interprets a validator Result for key.
func (v *Validation) resolve(key string, val *Validator, r Result) {
	switch r.kind {
	case resultFail:
		msg := val.message()
		if msg == "" {
			msg = v.schema.messages.Format(MsgInvalidValue, v.label(key))
		}
		v.setError(key, Message(msg), -1)
	case resultMessage:
		v.setError(key, Message(r.message), -1)
	case resultMultiple:
		for _, it := range r.results {
			v.resolve(key, val, it)
		}
	case resultAsync:
		if r.async == nil {
			return
		}
		fn := r.async
		v.spawn(func(ctx context.Context) error {
			res, err := fn(ctx)
			if err != nil {
				return fmt.Errorf("validator on %q: %w", key, err)
			}
			v.resolve(key, val, res)
			return nil
		})
	}
}

func (v *Validation) runModelValidators(model Model) error {
	for _, mv := range v.schema.Validators() {
		v.awaitModelResult(mv.ValidateModel(v.ctx, model, v))
	}
	return nil
}

// awaitModelResult defers Async results of whole-model validators. Their
// resolved values carry no messages; errors are recorded through
// SetModelError.
func (v *Validation) awaitModelResult(r Result) {
	switch r.kind {
	case resultMultiple:
		for _, it := range r.results {
			v.awaitModelResult(it)
		}
	case resultAsync:
		if r.async == nil {
			return
		}
		fn := r.async
		v.spawn(func(ctx context.Context) error {
			res, err := fn(ctx)
			if err != nil {
				return fmt.Errorf("model validator: %w", err)
			}
			v.awaitModelResult(res)
			return nil
		})
	}
}

// dispatchable reports schema-authoring errors in t without a value.
func (s *Schema) dispatchable(t Type) error {
	switch tt := t.(type) {
	case *TypeDescriptor:
		_, err := s.resolveType(tt)
		return err
	case *Schema:
		if tt == nil {
			return unrecognizedType(TypeName(nil))
		}
		return nil
	case *Or:
		if tt == nil || len(tt.types) == 0 {
			return fmt.Errorf("%w: OneOf without candidate types", ErrMalformedType)
		}
		for _, c := range tt.types {
			if err := s.dispatchable(c); err != nil {
				return err
			}
		}
		return nil
	case optionalType:
		return s.dispatchable(tt.inner)
	case arrayType:
		if _, nested := tt.elem.(arrayType); nested {
			return unrecognizedType(TypeName(t))
		}
		return s.dispatchable(tt.elem)
	}
	return unrecognizedType(TypeName(t))
}

// present applies the required predicate of t. The descriptor is returned
// for message formatting when t dispatches to one.
func (s *Schema) present(t Type, value any) (bool, *TypeDescriptor, error) {
	switch tt := t.(type) {
	case *TypeDescriptor:
		d, err := s.resolveType(tt)
		if err != nil {
			return false, nil, err
		}
		if d.ValidateRequired == nil {
			return isPresent(value), d, nil
		}
		return d.ValidateRequired(value), d, nil
	case arrayType:
		return s.present(Array, value)
	case optionalType:
		return s.present(tt.inner, value)
	case *Schema:
		return tt.hasKeys(value), nil, nil
	}
	return isPresent(value), nil, nil
}

// hasKeys is the structural required check of a nested schema: value is an
// object holding every declared key. Nested required flags are not consulted.
func (s *Schema) hasKeys(value any) bool {
	m, ok := asObject(value)
	if !ok {
		return false
	}
	for _, k := range s.Keys() {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}
