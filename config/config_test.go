package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "fekomat.toml", `
type = "npy"
compress = true
max_elements = 1024
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "npy", cfg.Type)
	assert.True(t, cfg.Compress)
	assert.Equal(t, int64(1024), cfg.MaxElements)
	assert.Equal(t, "Zmat", cfg.VarName)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_TOMLUnknownKey(t *testing.T) {
	path := writeFile(t, "fekomat.toml", `typ = "npy"`)
	_, err := Load(path)
	assert.ErrorContains(t, err, `unknown key "typ"`)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "fekomat.yml", "var_name: Z\nlog_level: debug\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Z", cfg.VarName)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "mat", cfg.Type)
	assert.Equal(t, int64(1<<26), cfg.MaxElements)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "fekomat.json", "{}"))
	assert.ErrorContains(t, err, "unsupported extension")

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "type: [unterminated"))
	assert.Error(t, err)
}

func TestLoad_YAMLUnknownKey(t *testing.T) {
	_, err := Load(writeFile(t, "fekomat.yaml", "typ: npy\n"))
	assert.ErrorContains(t, err, "field typ not found")

	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
