package formskema

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Schema describes the shape of a model. It validates models and computes
// their default values.
//
// A Schema is built once and reused. Validations of one Schema must not
// overlap in time when callers rely on Errors or SetModelError, which address
// the most recent validation; the trees returned by Validate are independent.
type Schema struct {
	mu           sync.RWMutex
	name         string
	fields       map[string]*Field
	keys         []string
	types        map[string]*TypeDescriptor
	validators   []ModelValidator
	messages     Messages
	validateKeys bool
	logger       *zap.Logger
	observer     Observer
	current      *Validation
}

// Option configures a Schema.
type Option func(*Schema)

// WithMessages overrides formatters of the default message catalog.
func WithMessages(m Messages) Option {
	return func(s *Schema) { s.messages = s.messages.With(m) }
}

// WithoutKeyValidation disables errors for model keys missing from the schema.
func WithoutKeyValidation() Option {
	return func(s *Schema) { s.validateKeys = false }
}

// WithLogger sets the logger used for validation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Schema) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver reports every top-level validation to o.
func WithObserver(o Observer) Option {
	return func(s *Schema) { s.observer = o }
}

// WithName names the schema in logs and metrics.
func WithName(name string) Option {
	return func(s *Schema) { s.name = name }
}

// Observer receives the outcome of top-level validations.
type Observer interface {
	ObserveValidation(schema string, took time.Duration, errors Tree, err error)
}

// New builds a schema over fields. Field keys are visited in ascending order.
func New(fields map[string]*Field, opts ...Option) *Schema {
	s := &Schema{
		name:         "schema",
		fields:       make(map[string]*Field, len(fields)),
		types:        builtinTypes(),
		messages:     DefaultMessages(),
		validateKeys: true,
		logger:       zap.NewNop(),
	}
	for k, f := range fields {
		s.fields[k] = f
	}
	s.sortKeys()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Schema) typeName() string { return "Schema" }

func (s *Schema) sortKeys() {
	keys := make([]string, 0, len(s.fields))
	for k := range s.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.keys = keys
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Messages returns the effective message catalog.
func (s *Schema) Messages() Messages { return s.messages }

// Logger returns the schema logger.
func (s *Schema) Logger() *zap.Logger { return s.logger }

// Fields returns a copy of the field map. Field values are shared.
func (s *Schema) Fields() map[string]*Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Field, len(s.fields))
	for k, f := range s.fields {
		out[k] = f
	}
	return out
}

// Keys returns the field keys in validation order.
func (s *Schema) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.keys...)
}

// Field returns the field stored under key, or nil.
func (s *Schema) Field(key string) *Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields[key]
}

// Pick returns the fields named in keys. Unknown keys are skipped.
func (s *Schema) Pick(keys ...string) map[string]*Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Field, len(keys))
	for _, k := range keys {
		if f, ok := s.fields[k]; ok {
			out[k] = f
		}
	}
	return out
}

// Omit returns every field except those named in keys.
func (s *Schema) Omit(keys ...string) map[string]*Field {
	skip := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		skip[k] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*Field, len(s.fields))
	for k, f := range s.fields {
		if _, ok := skip[k]; !ok {
			out[k] = f
		}
	}
	return out
}

// Extend adds or replaces fields of the schema.
func (s *Schema) Extend(fields map[string]*Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, f := range fields {
		s.fields[k] = f
	}
	s.sortKeys()
}

// RegisterType adds t to the schema's dispatch table, replacing any type
// registered under the same name.
func (s *Schema) RegisterType(t *TypeDescriptor) error {
	if err := t.check(); err != nil {
		return err
	}
	s.mu.Lock()
	s.types[t.Name] = t
	s.mu.Unlock()
	return nil
}

// HasType reports whether a type is registered under name.
func (s *Schema) HasType(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.types[name]
	return ok
}

// resolveType returns the descriptor registered under t's name, registering
// t first when the name is unknown.
func (s *Schema) resolveType(t *TypeDescriptor) (*TypeDescriptor, error) {
	if t == nil {
		return nil, unrecognizedType(TypeName(t))
	}
	s.mu.RLock()
	d, ok := s.types[t.Name]
	s.mu.RUnlock()
	if ok {
		return d, nil
	}
	if err := s.RegisterType(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Schema) typeTable() map[string]*TypeDescriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*TypeDescriptor, len(s.types))
	for k, t := range s.types {
		out[k] = t
	}
	return out
}

// ModelValidator validates a whole model after its fields. It may record
// errors with Validation.SetModelError and defer work with Async.
type ModelValidator interface {
	ValidateModel(ctx context.Context, model Model, v *Validation) Result
}

type modelValidatorFunc struct {
	fn func(ctx context.Context, model Model, v *Validation) Result
}

func (m *modelValidatorFunc) ValidateModel(ctx context.Context, model Model, v *Validation) Result {
	return m.fn(ctx, model, v)
}

// NewModelValidator adapts fn to a ModelValidator with its own identity.
func NewModelValidator(fn func(ctx context.Context, model Model, v *Validation) Result) ModelValidator {
	return &modelValidatorFunc{fn: fn}
}

// AddValidator registers a whole-model validator. Adding the same validator
// twice has no effect; identity is only tracked for comparable
// implementations such as pointers.
func (s *Schema) AddValidator(mv ModelValidator) {
	if mv == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.validators {
		if sameValidator(cur, mv) {
			return
		}
	}
	s.validators = append(s.validators, mv)
}

// RemoveValidator unregisters a whole-model validator.
func (s *Schema) RemoveValidator(mv ModelValidator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, cur := range s.validators {
		if sameValidator(cur, mv) {
			s.validators = append(s.validators[:i:i], s.validators[i+1:]...)
			return
		}
	}
}

// Validators returns the registered whole-model validators in insertion order.
func (s *Schema) Validators() []ModelValidator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ModelValidator(nil), s.validators...)
}

func sameValidator(a, b ModelValidator) bool {
	ta := reflect.TypeOf(a)
	if ta == nil || ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Validate validates model and waits for every deferred validator. Data
// errors are returned in the Tree; the error reports programming errors
// (ErrUnrecognizedType, ErrMalformedType, ErrMalformedValidator) and
// failures of Async validators.
func (s *Schema) Validate(ctx context.Context, model Model) (Tree, error) {
	return s.ValidateAsync(ctx, model).Wait()
}

// ValidateAsync runs the synchronous part of a validation and returns
// without waiting for Async validators. A nil model records only the
// modelIsUndefined error.
func (s *Schema) ValidateAsync(ctx context.Context, model Model) *Validation {
	v := s.newValidation(ctx, true)
	s.mu.Lock()
	s.current = v
	s.mu.Unlock()
	v.start(model)
	return v
}

// Errors returns the errors recorded so far by the most recent validation.
func (s *Schema) Errors() Tree {
	s.mu.RLock()
	v := s.current
	s.mu.RUnlock()
	if v == nil {
		return Tree{}
	}
	return v.Errors()
}

// SetModelError records message at a dotted path of the most recent
// validation. Validators should prefer Validation.SetModelError.
func (s *Schema) SetModelError(path, message string) {
	s.currentValidation().SetModelError(path, message)
}

func (s *Schema) currentValidation() *Validation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		s.current = s.newValidation(context.Background(), false)
	}
	return s.current
}
