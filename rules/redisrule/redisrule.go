// Package redisrule provides Async field validators backed by Redis sets.
package redisrule

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/reoring/formskema"
)

// Rule builds validators that look values up in Redis sets.
type Rule struct {
	client backend.Cmdable
	prefix string
}

type Option func(*Rule)

// WithPrefix sets the key prefix of the looked-up sets.
func WithPrefix(prefix string) Option {
	return func(r *Rule) {
		r.prefix = prefix
	}
}

// New creates a Rule using client.
func New(client backend.Cmdable, opts ...Option) *Rule {
	r := &Rule{
		client: client,
		prefix: "formskema:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Rule) key(set string) string {
	return r.prefix + set
}

// Unique fails when the value is already a member of set.
func (r *Rule) Unique(set, msg string) *formskema.Validator {
	return r.member("unique:"+set, set, msg, false)
}

// Exists fails when the value is not a member of set.
func (r *Rule) Exists(set, msg string) *formskema.Validator {
	return r.member("exists:"+set, set, msg, true)
}

// Add records values as members of set.
func (r *Rule) Add(ctx context.Context, set string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	members := make([]any, len(values))
	for i, v := range values {
		members[i] = v
	}
	if err := r.client.SAdd(ctx, r.key(set), members...).Err(); err != nil {
		return fmt.Errorf("redisrule: add to %s: %w", set, err)
	}
	return nil
}

func (r *Rule) member(id, set, msg string, want bool) *formskema.Validator {
	return &formskema.Validator{
		ID:           id,
		ErrorMessage: msg,
		Check: func(_ context.Context, v any, _ *formskema.Field, _ formskema.Model) formskema.Result {
			if v == nil || v == "" {
				return formskema.Pass()
			}
			member := fmt.Sprint(v)
			return formskema.Async(func(ctx context.Context) (formskema.Result, error) {
				ok, err := r.client.SIsMember(ctx, r.key(set), member).Result()
				if err != nil {
					return formskema.Pass(), fmt.Errorf("redisrule: lookup %s: %w", set, err)
				}
				return formskema.Bool(ok == want), nil
			})
		},
	}
}
