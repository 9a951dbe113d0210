package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, 40, cfg.Table.MaxColumnWidth)
	assert.NotEmpty(t, cfg.Theme.Header)
	assert.NotEmpty(t, DefaultYAML())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  format: json\ntheme:\n  header: red\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "red", cfg.Theme.Header)
	assert.Equal(t, 40, cfg.Table.MaxColumnWidth, "unset fields keep defaults")
	assert.NotEmpty(t, cfg.Theme.Sorted)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	def, _ := Default()
	assert.Equal(t, def, cfg)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("output: ["), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "decode config")

	neg := filepath.Join(dir, "neg.yaml")
	require.NoError(t, os.WriteFile(neg, []byte("table:\n  maxColumnWidth: -1\n"), 0o600))
	_, err = Load(neg)
	assert.ErrorContains(t, err, "maxColumnWidth")
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, "explicit.yaml", ResolvePath("explicit.yaml"))

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	assert.Empty(t, ResolvePath(""), "missing file resolves to nothing")

	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "tblx"), 0o755))
	path := filepath.Join(xdg, "tblx", "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	assert.Equal(t, path, ResolvePath(""))
}
