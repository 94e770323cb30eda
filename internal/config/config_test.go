package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Storage.Type)
	assert.Equal(t, "info", c.Log.Level)
	assert.False(t, c.Events.Enabled)
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	in := Config{
		Server:     ServerConfig{Addr: ":9000"},
		Storage:    StorageConfig{Type: "sqlite", DSN: "file.db"},
		Log:        LogConfig{Level: "debug"},
		Registries: []string{"Bank of Orange County", "Bank of Los Angeles"},
	}
	require.NoError(t, Write(path, in))

	t.Setenv("ACCTREGISTRY_LOG_LEVEL", "warn")

	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("addr", "", "")
	require.NoError(t, cmd.Flags().Set("addr", ":7000"))

	c, err := Load(cmd, path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.Server.Addr, "flag wins over file")
	assert.Equal(t, "warn", c.Log.Level, "env wins over file")
	assert.Equal(t, "sqlite", c.Storage.Type)
	assert.Equal(t, "file.db", c.Storage.DSN)
	assert.Equal(t, []string{"Bank of Orange County", "Bank of Los Angeles"}, c.Registries)
	assert.Equal(t, "json", c.Storage.Format, "default fills unset keys")
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(nil, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
