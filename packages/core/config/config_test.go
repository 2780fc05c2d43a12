package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, cfg.IsDefault())
	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetStrict())
	assert.Equal(t, 30*time.Second, cfg.TimeoutDuration())
	assert.Equal(t, "console", cfg.Reporter)
}

func TestGetBool_NilFallsBackToDefault(t *testing.T) {
	cfg := &Config{}

	assert.True(t, cfg.GetFollowRedirects())
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetVerbose())
	assert.False(t, cfg.GetNoColor())
}

func TestFindAndLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hitcheck.yaml"), []byte(`
timeout: 5000
validateSSL: false
reporter: tap
headers:
  Accept: application/json
strict: true
`), 0o644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.TimeoutDuration())
	assert.False(t, cfg.GetValidateSSL())
	assert.True(t, cfg.GetFollowRedirects())
	assert.Equal(t, "tap", cfg.Reporter)
	assert.Equal(t, "application/json", cfg.Headers["Accept"])
	assert.True(t, cfg.GetStrict())
	assert.Equal(t, 10, cfg.MaxRedirects)
	assert.False(t, cfg.IsDefault())
}

func TestFindAndLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hitcheck.json"),
		[]byte(`{"timeout": 1000, "noColor": true, "concurrency": 8}`), 0o644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Timeout)
	assert.True(t, cfg.GetNoColor())
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.True(t, cfg.IsDefault())
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("timeout: [1, 2"), 0o644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("reporter: xml"), 0o644))
	_, err = LoadConfig(unknown)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown reporter "xml"`)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"Accept": "application/json", "X-Env": "dev"}

	merged := base.Merge(&Config{
		Timeout: 2000,
		Verbose: BoolPtr(true),
		Headers: map[string]string{"X-Env": "ci"},
	})

	assert.Equal(t, 2000, merged.Timeout)
	assert.True(t, merged.GetVerbose())
	assert.True(t, merged.GetFollowRedirects())
	assert.Equal(t, "console", merged.Reporter)
	assert.Equal(t, map[string]string{"Accept": "application/json", "X-Env": "ci"}, merged.Headers)
	assert.Equal(t, "dev", base.Headers["X-Env"])

	assert.Same(t, base, base.Merge(nil))
}
