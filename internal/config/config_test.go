package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, "zegraphql.db", cfg.Database.Path)
	assert.Equal(t, "main", cfg.Database.Schema)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "cybernetic-karari", cfg.Auth.RolePrefix)
	assert.True(t, cfg.Auth.EnforceRoles)
	assert.Equal(t, 20, cfg.Query.DefaultPageSize)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	configFile := writeFile(t, dir, "custom.yaml", `
database:
  path: from-file.db
  schema: filed
server:
  addr: ":9000"
query:
  default_page_size: 50
`)
	envFile := writeFile(t, dir, "test.env", "ZEGRAPHQL_SERVER_ADDR=:7000\n")
	t.Setenv("ZEGRAPHQL_DATABASE_SCHEMA", "from_env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	require.NoError(t, flags.Parse([]string{"--db", "from-flag.db"}))

	cfg, err := Load(Options{ConfigFile: configFile, EnvFile: envFile, Flags: flags})
	require.NoError(t, err)

	assert.Equal(t, "from-flag.db", cfg.Database.Path, "flag beats file")
	assert.Equal(t, "from_env", cfg.Database.Schema, "env beats file")
	assert.Equal(t, ":7000", cfg.Server.Addr, ".env feeds the environment")
	assert.Equal(t, 50, cfg.Query.DefaultPageSize, "file beats defaults")

	// godotenv sets real variables; clear it so other tests are unaffected
	require.NoError(t, os.Unsetenv("ZEGRAPHQL_SERVER_ADDR"))
}

func TestLoadConfigEnvVar(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	configFile := writeFile(t, dir, "other.yaml", "log:\n  level: debug\n  pretty: true\n")
	t.Setenv("ZEGRAPHQL_CONFIG", configFile)

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	testChdir(t, dir)

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := Load(Options{ConfigFile: filepath.Join(dir, "nope.yaml")})
		assert.Error(t, err)
	})

	t.Run("invalid page size", func(t *testing.T) {
		t.Setenv("ZEGRAPHQL_QUERY_DEFAULT_PAGE_SIZE", "0")
		_, err := Load(Options{})
		assert.ErrorContains(t, err, "default_page_size")
	})

	t.Run("invalid server mode", func(t *testing.T) {
		t.Setenv("ZEGRAPHQL_SERVER_MODE", "turbo")
		_, err := Load(Options{})
		assert.ErrorContains(t, err, "server.mode")
	})
}
