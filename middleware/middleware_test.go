package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/middleware"
)

func newRouter(t *testing.T, seen *formskema.Model) http.Handler {
	t.Helper()
	s := formskema.New(map[string]*formskema.Field{
		"name":    {Type: formskema.String, Required: true},
		"founded": {Type: formskema.Date},
	})
	r := chi.NewRouter()
	middleware.Post(r, "/companies", s, func(w http.ResponseWriter, r *http.Request) {
		m, ok := middleware.ModelFromContext(r.Context())
		require.True(t, ok)
		*seen = m
		w.WriteHeader(http.StatusCreated)
	})
	return r
}

func post(h http.Handler, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/companies", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestValidate_PassesModel(t *testing.T) {
	var seen formskema.Model
	h := newRouter(t, &seen)

	rec := post(h, "application/json", `{"name":"Acme","founded":"2020-01-02T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Acme", seen["name"])
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), seen["founded"])
}

func TestValidate_YAMLBody(t *testing.T) {
	var seen formskema.Model
	h := newRouter(t, &seen)

	rec := post(h, "application/yaml", "name: Acme\n")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Acme", seen["name"])
}

func TestValidate_Unprocessable(t *testing.T) {
	var seen formskema.Model
	h := newRouter(t, &seen)

	rec := post(h, "application/json", `{"founded":"yesterday","extra":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"errors": {
			"extra": ["Key 'extra' is not defined in schema"],
			"founded": ["Field 'founded' is not a Date"],
			"name": ["Field 'name' is required"]
		},
		"issues": [
			{"path": "/extra", "message": "Key 'extra' is not defined in schema"},
			{"path": "/founded", "message": "Field 'founded' is not a Date"},
			{"path": "/name", "message": "Field 'name' is required"}
		]
	}`, rec.Body.String())
	assert.Nil(t, seen)
}

func TestValidate_BadRequest(t *testing.T) {
	var seen formskema.Model
	h := newRouter(t, &seen)

	for _, body := range []string{`{"name":`, `[1]`, `{"name":"a","name":"b"}`} {
		rec := post(h, "application/json", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Nil(t, seen)
}

func TestValidate_NullBody(t *testing.T) {
	var seen formskema.Model
	h := newRouter(t, &seen)

	rec := post(h, "application/json", `null`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, map[string]any{"model": []any{"Validated model is undefined"}}, payload["errors"])
}

func TestValidate_AbortedValidation(t *testing.T) {
	s := formskema.New(map[string]*formskema.Field{"name": {Type: nil}})
	h := middleware.Validate(s)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := post(h, "application/json", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestValidate_NilFieldIsServerError(t *testing.T) {
	s := formskema.New(map[string]*formskema.Field{"founded": {Type: formskema.Date}})
	s.Extend(map[string]*formskema.Field{"broken": nil})
	h := middleware.Validate(s)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := post(h, "application/json", `{"broken": "x", "founded": "2020-01-02T00:00:00Z"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestContextWithModel(t *testing.T) {
	_, ok := middleware.ModelFromContext(context.Background())
	assert.False(t, ok)
	ctx := middleware.ContextWithModel(context.Background(), formskema.Model{"a": 1})
	m, ok := middleware.ModelFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, formskema.Model{"a": 1}, m)
}
