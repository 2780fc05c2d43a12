package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/hitcheck/packages/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsSchema = `{
  "type": "object",
  "required": ["products"],
  "properties": {
    "products": {"type": "array"}
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse(t *testing.T) {
	t.Setenv("HITCHECK_TEST_HOST", "api.example.com")

	s, err := Parse([]byte(`
name: products
request:
  url: https://${HITCHECK_TEST_HOST}/products
  headers:
    Host: ${HITCHECK_TEST_HOST}
  timeout: 2s
status: 200
load:
  calls: 10
  concurrency: 2
  rate: 5
rules:
  - path: products.#
    op: gte
    value: 1
  - name: first is laptop
    path: products.0.name
    op: equals
    value: Laptop
strict: true
`))
	require.NoError(t, err)

	assert.Equal(t, "products", s.Name)
	assert.Equal(t, "GET", s.Request.Method)
	assert.Equal(t, "https://api.example.com/products", s.Request.URL)
	assert.Equal(t, "api.example.com", s.Request.Headers["Host"])
	assert.Equal(t, "2s", s.Request.Timeout.String())
	assert.Equal(t, 200, s.Status)
	require.NotNil(t, s.Load)
	assert.Equal(t, 10, s.Load.Calls)
	assert.Equal(t, 2, s.Load.Concurrency)
	assert.Equal(t, 5.0, s.Load.Rate)
	require.Len(t, s.Rules, 2)
	assert.Equal(t, rules.OpGreaterOrEqual, s.Rules[0].Op)
	assert.Equal(t, "first is laptop", s.Rules[1].Title())
	assert.True(t, s.Strict)
	assert.False(t, s.HasSchema())
	assert.NoError(t, s.Validate())
}

func TestParse_KeepsLiteralDollars(t *testing.T) {
	t.Setenv("top", "leaked")
	t.Setenv("id", "leaked")

	s, err := Parse([]byte(`
request:
  method: post
  url: "http://example.com/odata/Products?$top=10&$filter=Price gt 5"
  body: '{"query":"query ($id: ID!) { node(id: $id) { id } }","price":"$5"}'
`))
	require.NoError(t, err)

	assert.Equal(t, "POST", s.Request.Method)
	assert.Equal(t, "http://example.com/odata/Products?$top=10&$filter=Price gt 5", s.Request.URL)
	assert.Equal(t, `{"query":"query ($id: ID!) { node(id: $id) { id } }","price":"$5"}`, s.Request.Body)
}

func TestParse_UnresolvedVariable(t *testing.T) {
	_, err := Parse([]byte(`
request:
  url: http://localhost/items
  auth:
    bearer: ${HITCHECK_SUITE_TEST_UNSET_TOKEN}
`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSuite)
	assert.Contains(t, err.Error(), "unresolved variables: HITCHECK_SUITE_TEST_UNSET_TOKEN")
}

func TestParse_QueryAndAuth(t *testing.T) {
	t.Setenv("HITCHECK_SUITE_TEST_PASSWORD", "s3cret")

	s, err := Parse([]byte(`
request:
  url: http://localhost/items
  query:
    page: "2"
  auth:
    basic:
      username: admin
      password: ${HITCHECK_SUITE_TEST_PASSWORD}
`))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"page": "2"}, s.Request.Query)
	require.NotNil(t, s.Request.Auth)
	require.NotNil(t, s.Request.Auth.Basic)
	assert.Equal(t, "admin", s.Request.Auth.Basic.Username)
	assert.Equal(t, "s3cret", s.Request.Auth.Basic.Password)
	assert.NoError(t, s.Validate())
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("name: x\nrequets:\n  url: http://localhost\n"))
	assert.ErrorIs(t, err, ErrInvalidSuite)
}

func TestParse_InlineSchema(t *testing.T) {
	s, err := Parse([]byte("request:\n  url: http://localhost\nschemaInline: '{\"type\": \"object\"}'\n"))
	require.NoError(t, err)
	assert.True(t, s.HasSchema())
	assert.Equal(t, `{"type": "object"}`, s.SchemaText())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		errMsg string
	}{
		{
			name:   "missing url",
			doc:    "name: x\n",
			errMsg: "request url is required",
		},
		{
			name:   "bad scheme",
			doc:    "request:\n  url: ftp://example.com\n",
			errMsg: "unsupported URL scheme",
		},
		{
			name:   "bad rule",
			doc:    "request:\n  url: http://localhost\nrules:\n  - path: a\n    op: matches\n    value: '[unclosed'\n",
			errMsg: "invalid suite",
		},
		{
			name:   "duplicate rule",
			doc:    "request:\n  url: http://localhost\nrules:\n  - {path: a, op: exists}\n  - {path: a, op: exists}\n",
			errMsg: "duplicate rule",
		},
		{
			name:   "negative load",
			doc:    "request:\n  url: http://localhost\nload:\n  calls: -1\n",
			errMsg: "calls cannot be negative",
		},
		{
			name:   "broken schema",
			doc:    "request:\n  url: http://localhost\nschemaInline: '{\"type\": '\n",
			errMsg: "schema is not valid",
		},
		{
			name:   "rule named like the status check",
			doc:    "request:\n  url: http://localhost\nstatus: 200\nrules:\n  - {name: status, path: status, op: equals, value: ok}\n",
			errMsg: `duplicate rule "status"`,
		},
		{
			name:   "both auth kinds",
			doc:    "request:\n  url: http://localhost\n  auth:\n    bearer: t\n    basic: {username: a, password: b}\n",
			errMsg: "mutually exclusive",
		},
		{
			name:   "both schemas",
			doc:    "request:\n  url: http://localhost\nschema: a.json\nschemaInline: '{}'\n",
			errMsg: "mutually exclusive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.doc))
			require.NoError(t, err)

			err = s.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSuite)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "schemas/products.json", productsSchema)
	path := writeFile(t, dir, "list-products.yaml", `
request:
  url: http://localhost:8080/products
schema: schemas/products.json
`)

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "list-products", s.Name)
	assert.Equal(t, path, s.Path)
	assert.True(t, s.HasSchema())
	assert.Equal(t, productsSchema, s.SchemaText())
}

func TestLoad_DotEnv(t *testing.T) {
	t.Setenv("HITCHECK_SUITE_TEST_TOKEN", "from-os")

	dir := t.TempDir()
	writeFile(t, dir, ".env", "HITCHECK_SUITE_TEST_BASE=http://localhost:9090\n")
	path := writeFile(t, dir, "s.yaml", `
request:
  url: ${HITCHECK_SUITE_TEST_BASE}/health
  headers:
    Authorization: Bearer ${HITCHECK_SUITE_TEST_TOKEN}
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9090/health", s.Request.URL)
	assert.Equal(t, "Bearer from-os", s.Request.Headers["Authorization"])
}

func TestLoad_SchemaOutsideSuiteDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "secret.json", productsSchema)
	path := writeFile(t, root, "suites/s.yaml", "request:\n  url: http://localhost\nschema: ../secret.json\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal detected")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidatePathWithinBase(t *testing.T) {
	base := t.TempDir()

	assert.NoError(t, validatePathWithinBase(filepath.Join(base, "a.json"), base))
	assert.NoError(t, validatePathWithinBase(filepath.Join(base, "sub", "..", "a.json"), base))
	assert.Error(t, validatePathWithinBase(filepath.Join(base, "..", "a.json"), base))
	assert.Error(t, validatePathWithinBase(base+"-other/a.json", base))
}
