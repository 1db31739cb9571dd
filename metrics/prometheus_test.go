package metrics_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/metrics"
)

func TestPrometheus_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := metrics.NewPrometheus(reg, "test")
	require.NoError(t, err)

	s := formskema.New(map[string]*formskema.Field{
		"name": {Type: formskema.String, Required: true},
		"age":  {Type: formskema.Number},
	}, formskema.WithName("person"), formskema.WithObserver(obs))
	ctx := context.Background()

	_, err = s.Validate(ctx, formskema.Model{"name": "Ada"})
	require.NoError(t, err)
	_, err = s.Validate(ctx, formskema.Model{"age": "x"})
	require.NoError(t, err)

	boom := errors.New("boom")
	s.SetFieldValidator("name", &formskema.Validator{
		Check: func(context.Context, any, *formskema.Field, formskema.Model) formskema.Result {
			return formskema.Async(func(context.Context) (formskema.Result, error) { return formskema.Pass(), boom })
		},
	})
	_, err = s.Validate(ctx, formskema.Model{"name": "Ada"})
	require.ErrorIs(t, err, boom)

	expected := `
# HELP test_validations_total Total number of validations by outcome
# TYPE test_validations_total counter
test_validations_total{outcome="error",schema="person"} 1
test_validations_total{outcome="invalid",schema="person"} 1
test_validations_total{outcome="valid",schema="person"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_validations_total"))

	keys := `
# HELP test_validation_error_keys_total Total number of model keys reported with errors
# TYPE test_validation_error_keys_total counter
test_validation_error_keys_total{schema="person"} 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(keys), "test_validation_error_keys_total"))

	n, err := testutil.GatherAndCount(reg, "test_validation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewPrometheus(reg, "dup")
	require.NoError(t, err)
	_, err = metrics.NewPrometheus(reg, "dup")
	assert.Error(t, err)
}
