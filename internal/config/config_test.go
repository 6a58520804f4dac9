package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
base_url = "https://example.test/v1"
workspace = "ws-1"
item = "it-1"
locale = "de-DE"
history_path = "/tmp/h.db"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/v1", cfg.BaseURL)
	assert.Equal(t, "ws-1", cfg.Workspace)
	assert.Equal(t, "it-1", cfg.Item)
	assert.Equal(t, "de-DE", cfg.Locale)
	assert.Equal(t, "/tmp/h.db", cfg.HistoryPath)
	assert.Equal(t, "FLOWDEF_TOKEN", cfg.TokenEnv, "unset keys keep their defaults")
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("base_url = ["), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestToken_ReadsConfiguredEnvVar(t *testing.T) {
	cfg := Config{TokenEnv: "FLOWDEF_TEST_TOKEN"}
	t.Setenv("FLOWDEF_TEST_TOKEN", "secret")
	assert.Equal(t, "secret", cfg.Token())
}
