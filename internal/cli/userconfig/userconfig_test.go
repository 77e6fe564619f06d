package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the preferences file into a fresh home directory
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	return home
}

func TestSelectServer(t *testing.T) {
	home := isolate(t)

	selected, err := SelectedServer()
	require.NoError(t, err)
	assert.Empty(t, selected, "missing file reads as empty preferences")

	require.NoError(t, SelectServer("http://localhost:3000/api/"))

	selected, err = SelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", selected)

	info, err := os.Stat(filepath.Join(home, ".config", "gametu", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	require.NoError(t, SelectServer(""))
	selected, err = SelectedServer()
	require.NoError(t, err)
	assert.Empty(t, selected)
}

func TestPath_HonorsXDGConfigHome(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := Path()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "gametu", "config.json"), path)
}

func TestRememberEmail_PerServer(t *testing.T) {
	isolate(t)

	require.NoError(t, SelectServer("https://gametu.example.com/api"))
	require.NoError(t, RememberEmail("http://localhost:3000/api", "dev@gametu.test"))
	require.NoError(t, RememberEmail("https://gametu.example.com/api/", "me@gametu.test"))

	email, err := LastEmail("http://localhost:3000/api/")
	require.NoError(t, err)
	assert.Equal(t, "dev@gametu.test", email)

	email, err = LastEmail("https://gametu.example.com/api")
	require.NoError(t, err)
	assert.Equal(t, "me@gametu.test", email)

	email, err = LastEmail("http://unknown.test/api")
	require.NoError(t, err)
	assert.Empty(t, email)

	// remembering an email keeps the selection
	selected, err := SelectedServer()
	require.NoError(t, err)
	assert.Equal(t, "https://gametu.example.com/api", selected)
}

func TestLoad_CorruptFile(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".config", "gametu")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse user config file")

	assert.Error(t, SelectServer("http://localhost:3000/api"), "a corrupt file is not silently overwritten")
}
