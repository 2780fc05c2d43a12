package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{
			name:     "simple key-value",
			content:  "API_KEY=secret123",
			expected: map[string]string{"API_KEY": "secret123"},
		},
		{
			name:     "multiple keys",
			content:  "KEY1=value1\nKEY2=value2",
			expected: map[string]string{"KEY1": "value1", "KEY2": "value2"},
		},
		{
			name:     "double quoted value",
			content:  `API_KEY="secret with spaces"`,
			expected: map[string]string{"API_KEY": "secret with spaces"},
		},
		{
			name:     "single quoted value",
			content:  `API_KEY='secret with spaces'`,
			expected: map[string]string{"API_KEY": "secret with spaces"},
		},
		{
			name:     "mismatched quotes are kept",
			content:  `API_KEY="secret'`,
			expected: map[string]string{"API_KEY": `"secret'`},
		},
		{
			name:     "export prefix",
			content:  "export BASE_URL=http://localhost:8080",
			expected: map[string]string{"BASE_URL": "http://localhost:8080"},
		},
		{
			name:     "comments and blank lines are skipped",
			content:  "# comment\n\nAPI_KEY=secret\nnot a pair\n=orphan",
			expected: map[string]string{"API_KEY": "secret"},
		},
		{
			name:     "value containing equals",
			content:  "QUERY=a=b&c=d",
			expected: map[string]string{"QUERY": "a=b&c=d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			got, err := LoadDotEnv(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	vars, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, vars)

	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte("A=1"), 0o644))
	vars, err = LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1"}, vars)
}

func TestExpander(t *testing.T) {
	t.Setenv("HITCHECK_ENV_TEST_HOST", "from-os")
	t.Setenv("HITCHECK_ENV_TEST_SHADOWED", "from-os")

	e := NewExpander(map[string]string{"HITCHECK_ENV_TEST_SHADOWED": "from-file"})

	assert.Equal(t, "http://from-os/x", e.Expand("http://${HITCHECK_ENV_TEST_HOST}/x"))
	assert.Equal(t, "from-file", e.Expand("${HITCHECK_ENV_TEST_SHADOWED}"))
	assert.Equal(t, "a-${HITCHECK_ENV_TEST_MISSING}-b", e.Expand("a-${HITCHECK_ENV_TEST_MISSING}-b"))
	assert.Equal(t, []string{"HITCHECK_ENV_TEST_MISSING"}, e.Unresolved())

	headers := map[string]string{"Host": "${HITCHECK_ENV_TEST_HOST}"}
	e.ExpandAll(headers)
	assert.Equal(t, "from-os", headers["Host"])
}

func TestExpander_LeavesBareDollarAlone(t *testing.T) {
	t.Setenv("id", "leaked")
	t.Setenv("top", "leaked")

	e := NewExpander(nil)

	tests := []string{
		`{"query": "query ($id: ID!) { node(id: $id) { id } }"}`,
		"/odata/Products?$top=10&$filter=Price gt 5",
		`{"price": "$5"}`,
		"$",
		"${}",
		"${1abc}",
		"$$",
	}
	for _, in := range tests {
		assert.Equal(t, in, e.Expand(in))
	}
	assert.Empty(t, e.Unresolved())
}
