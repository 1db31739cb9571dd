package types_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/types"
)

func TestUUID(t *testing.T) {
	s := formskema.New(map[string]*formskema.Field{
		"id": {Type: types.UUID, Required: true},
	})
	ctx := context.Background()

	tree, err := s.Validate(ctx, formskema.Model{"id": uuid.NewString()})
	require.NoError(t, err)
	assert.Empty(t, tree)

	tree, err = s.Validate(ctx, formskema.Model{"id": uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, tree)

	tree, err = s.Validate(ctx, formskema.Model{"id": "nope"})
	require.NoError(t, err)
	assert.Equal(t, formskema.List{formskema.Message("Field 'id' is not a UUID"), formskema.Message("Field 'id' is required")}, tree["id"])

	tree, err = s.Validate(ctx, formskema.Model{"id": uuid.Nil.String()})
	require.NoError(t, err)
	assert.Equal(t, formskema.List{formskema.Message("Field 'id' is required")}, tree["id"])

	def := s.DefaultValues()["id"].(string)
	_, err = uuid.Parse(def)
	assert.NoError(t, err)
}

func TestInteger(t *testing.T) {
	s := formskema.New(map[string]*formskema.Field{
		"n": {Type: types.Integer},
	})
	require.NoError(t, types.Register(s))
	assert.True(t, s.HasType("Integer"))
	assert.True(t, s.HasType("UUID"))

	cases := []struct {
		value any
		ok    bool
	}{
		{int64(3), true},
		{3.0, true},
		{3.5, false},
		{math.NaN(), false},
		{"3", false},
	}
	for _, tc := range cases {
		tree, err := s.Validate(context.Background(), formskema.Model{"n": tc.value})
		require.NoError(t, err)
		assert.Equal(t, tc.ok, len(tree) == 0, "value %v", tc.value)
	}
	assert.Equal(t, int64(0), s.DefaultValues()["n"])
}

func TestMessageOverrideWins(t *testing.T) {
	s := formskema.New(map[string]*formskema.Field{
		"id": {Type: types.UUID},
	}, formskema.WithMessages(formskema.Messages{
		formskema.TypeMessage("UUID"): func(label string) string { return label + " must be a uuid" },
	}))
	tree, err := s.Validate(context.Background(), formskema.Model{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, formskema.List{formskema.Message("id must be a uuid")}, tree["id"])
}
