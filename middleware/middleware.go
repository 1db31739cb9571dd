// Package middleware validates HTTP request bodies against formskema schemas.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/codec"
	"github.com/reoring/formskema/source"
)

// ctxKeyModel is the context key of the validated model.
type ctxKeyModel struct{}

// ContextWithModel attaches a validated model to the context.
func ContextWithModel(ctx context.Context, m formskema.Model) context.Context {
	return context.WithValue(ctx, ctxKeyModel{}, m)
}

// ModelFromContext retrieves the model stored by Validate.
func ModelFromContext(ctx context.Context) (formskema.Model, bool) {
	m, ok := ctx.Value(ctxKeyModel{}).(formskema.Model)
	return m, ok
}

// ErrorPayload shapes an error tree for JSON responses.
func ErrorPayload(s *formskema.Schema, tree formskema.Tree) map[string]any {
	return map[string]any{"errors": tree, "issues": s.Issues(tree)}
}

// Option configures Validate.
type Option func(*config)

type config struct {
	maxBytes int64
	logger   *zap.Logger
}

// WithMaxBytes limits the request body size. Defaults to 1 MiB.
func WithMaxBytes(n int64) Option {
	return func(c *config) { c.maxBytes = n }
}

// WithLogger logs rejected requests.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Validate decodes JSON or YAML request bodies (by Content-Type), validates
// them with s and passes valid models to next through the request context.
// Invalid documents are answered with 422 and ErrorPayload; undecodable
// bodies with 400.
func Validate(s *formskema.Schema, opts ...Option) func(http.Handler) http.Handler {
	cfg := config{maxBytes: 1 << 20, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			format := source.JSON
			if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
				format = source.YAML
			}
			model, err := source.Decode(format, http.MaxBytesReader(w, r.Body, cfg.maxBytes))
			if err != nil {
				cfg.logger.Debug("undecodable body", zap.String("path", r.URL.Path), zap.Error(err))
				status := http.StatusBadRequest
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					status = http.StatusRequestEntityTooLarge
				}
				http.Error(w, err.Error(), status)
				return
			}
			model = codec.DecodeDates(s, model)
			tree, err := s.Validate(r.Context(), model)
			if err != nil {
				cfg.logger.Error("validation aborted", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, "validation failed", http.StatusInternalServerError)
				return
			}
			if len(tree) > 0 {
				writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(s, tree))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithModel(r.Context(), model)))
		})
	}
}

// Post registers h on r for POST pattern behind Validate.
func Post(r chi.Router, pattern string, s *formskema.Schema, h http.HandlerFunc, opts ...Option) {
	r.With(Validate(s, opts...)).Post(pattern, h)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
