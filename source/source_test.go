package source_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/source"
)

func TestBytes_JSON(t *testing.T) {
	m, err := source.Bytes(source.JSON, []byte(`{
		"name": "Acme",
		"employees": 12,
		"ratio": 0.5,
		"public": true,
		"vatId": null,
		"owners": [{"name": "Ada"}, {"name": "Bob"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, formskema.Model{
		"name":      "Acme",
		"employees": int64(12),
		"ratio":     0.5,
		"public":    true,
		"vatId":     nil,
		"owners": []any{
			map[string]any{"name": "Ada"},
			map[string]any{"name": "Bob"},
		},
	}, m)
}

func TestBytes_JSONDuplicateKey(t *testing.T) {
	_, err := source.Bytes(source.JSON, []byte(`{"owners":[{"name":"a","name":"b"}]}`))
	require.ErrorIs(t, err, source.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "/owners/0")
}

func TestBytes_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format source.Format
		in     string
		want   error
	}{
		{"json array root", source.JSON, `[1,2]`, source.ErrNotObject},
		{"json scalar root", source.JSON, `"x"`, source.ErrNotObject},
		{"yaml list root", source.YAML, "- a\n- b\n", source.ErrNotObject},
		{"unknown format", source.Format("toml"), `a = 1`, source.ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.Bytes(tt.format, []byte(tt.in))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := source.Bytes(source.JSON, []byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
	_, err = source.Bytes(source.JSON, []byte(`{"a":`))
	assert.Error(t, err)
}

func TestBytes_Null(t *testing.T) {
	m, err := source.Bytes(source.JSON, []byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = source.Bytes(source.YAML, nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestBytes_YAML(t *testing.T) {
	m, err := source.Bytes(source.YAML, []byte(strings.Join([]string{
		"name: Acme",
		"employees: 12",
		"ratio: 0.5",
		"tags: [a, b]",
		"address:",
		"  zip: 1010",
		"  1: numeric key",
	}, "\n")))
	require.NoError(t, err)
	assert.Equal(t, formskema.Model{
		"name":      "Acme",
		"employees": int64(12),
		"ratio":     0.5,
		"tags":      []any{"a", "b"},
		"address":   map[string]any{"zip": int64(1010), "1": "numeric key"},
	}, m)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]source.Format{
		"json": source.JSON, ".JSON": source.JSON,
		"yaml": source.YAML, ".yml": source.YAML,
	} {
		got, err := source.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := source.ParseFormat(".txt")
	assert.ErrorIs(t, err, source.ErrUnknownFormat)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	m, err := source.ReadFile(write("a.json", `{"a": 1}`))
	require.NoError(t, err)
	assert.Equal(t, formskema.Model{"a": int64(1)}, m)

	m, err = source.ReadFile(write("b.yaml", "a: x\n"))
	require.NoError(t, err)
	assert.Equal(t, formskema.Model{"a": "x"}, m)

	_, err = source.ReadFile(write("c.json", `[]`))
	require.ErrorIs(t, err, source.ErrNotObject)
	assert.Contains(t, err.Error(), "c.json")

	_, err = source.ReadFile(write("d.txt", ``))
	assert.ErrorIs(t, err, source.ErrUnknownFormat)

	_, err = source.ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
