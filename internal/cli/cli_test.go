package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/formskema/internal/cli"
)

const validCompany = `{
  "companyName": "Acme",
  "address": {"street": "Main 1", "city": "Berlin", "zip": 10115, "country": "GERMANY"},
  "owners": [{"name": "Ada", "email": "ada@x.io", "share": 60}],
  "currency": "EUR",
  "founded": "2020-01-01T00:00:00Z",
  "public": true,
  "vatId": "DE1"
}`

const invalidCompany = `companyName: A
owners: []
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCommand(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestValidate_OK(t *testing.T) {
	p := writeFile(t, "acme.json", validCompany)
	out, _, err := run(t, "validate", p)
	require.NoError(t, err)
	assert.Equal(t, p+": ok\n", out)
}

func TestValidate_Invalid(t *testing.T) {
	good := writeFile(t, "good.json", validCompany)
	bad := writeFile(t, "bad.yaml", invalidCompany)
	out, _, err := run(t, "validate", good, bad)
	require.ErrorIs(t, err, cli.ErrInvalid)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Equal(t, strings.Join([]string{
		good + ": ok",
		bad + ": /address: Field 'address' is required",
		bad + ": /companyName: Company name is too short",
		bad + ": /owners: At least one owner is required",
	}, "\n")+"\n", out)
}

func TestValidate_JSONOutputInJapanese(t *testing.T) {
	bad := writeFile(t, "bad.yaml", invalidCompany)
	out, _, err := run(t, "--lang", "ja", "validate", "-o", "json", bad)
	require.ErrorIs(t, err, cli.ErrInvalid)

	var got struct {
		File   string              `json:"file"`
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, bad, got.File)
	assert.Equal(t, []string{"'address' は必須です"}, got.Errors["address"])
}

func TestValidate_MessageCatalog(t *testing.T) {
	catalog := writeFile(t, "messages.yaml", "validateRequired: \"%s is missing\"\n")
	bad := writeFile(t, "bad.yaml", invalidCompany)
	out, _, err := run(t, "--messages", catalog, "validate", bad)
	require.ErrorIs(t, err, cli.ErrInvalid)
	assert.Contains(t, out, "/address: address is missing")
}

func TestValidate_Logs(t *testing.T) {
	p := writeFile(t, "acme.json", validCompany)
	_, logs, err := run(t, "--log-level", "info", "validate", p)
	require.NoError(t, err)
	assert.Contains(t, logs, `"msg":"validated"`)
	assert.Contains(t, logs, `"error_keys":0`)
}

func TestValidate_Errors(t *testing.T) {
	p := writeFile(t, "acme.json", validCompany)

	_, _, err := run(t, "validate", "-s", "nope", p)
	assert.ErrorContains(t, err, `unknown schema "nope"`)
	assert.NotErrorIs(t, err, cli.ErrInvalid)

	_, _, err = run(t, "--log-level", "loud", "validate", p)
	assert.ErrorContains(t, err, "invalid --log-level")

	_, _, err = run(t, "validate", writeFile(t, "list.json", `[]`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, cli.ErrInvalid)

	_, _, err = run(t, "validate")
	assert.Error(t, err)
}

func TestDefaults(t *testing.T) {
	out, _, err := run(t, "defaults", "-s", "company")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "EUR", got["currency"])
	assert.NotContains(t, got, "public")
	assert.NotContains(t, got, "vatId")
	assert.Equal(t, map[string]any{"street": "", "city": "", "zip": "", "country": "POLAND"}, got["address"])
	assert.Equal(t, []any{map[string]any{"name": "", "email": "", "share": nil}}, got["owners"])
	assert.Len(t, got["id"], 36)

	out, _, err = run(t, "defaults", "-s", "contact", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "email: \"\"")
}

func TestSchemas(t *testing.T) {
	out, _, err := run(t, "schemas")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "company\t"))
	assert.Equal(t, "contact\temail:String name:String phone:OneOf", lines[1])
}
