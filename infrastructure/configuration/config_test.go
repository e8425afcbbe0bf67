package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration_Defaults(t *testing.T) {
	cfg := Config{}
	initDatabase(&cfg)
	initApp(&cfg)
	initRemote(&cfg)
	initSync(&cfg)

	assert.NotEmpty(t, cfg.Database.Driver)
	assert.NotZero(t, cfg.App.Port)
	assert.Equal(t, 15*time.Second, cfg.Sync.CallTimeout())
	assert.Equal(t, 64, cfg.Sync.EventBuffer)
	assert.Equal(t, 10*time.Second, cfg.Remote.RemoteTimeout())
	assert.Equal(t, 100, cfg.Remote.PageSize)
	assert.Equal(t, 600*time.Second, cfg.RedisClient.TTL())
	assert.NotEmpty(t, cfg.Cors.AllowOrigins)
}

func TestConfiguration_EnvOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("APP_PORT", "8088")
	t.Setenv("REMOTE_MODE", "HTTP")

	cfg := Config{Database: Database{Driver: "memory"}}
	initDatabase(&cfg)
	initApp(&cfg)
	initRemote(&cfg)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 8088, cfg.App.Port)
	assert.Equal(t, "http", cfg.Remote.Mode)
}

func TestGetConfigValue_SkipsPlaceholders(t *testing.T) {
	assert.Equal(t, "fallback", getConfigValue("YOUR_CLIENT_ID", "VIEWTUBE_TEST_UNSET", "fallback"))
	assert.Equal(t, "set", getConfigValue("set", "VIEWTUBE_TEST_UNSET", "fallback"))
}

func TestLoadEnvFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.env")
	content := "# comment\n\nexport VIEWTUBE_TEST_A=\"alpha\"\nVIEWTUBE_TEST_B='beta'\nbroken-line\nVIEWTUBE_TEST_KEEP=file\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("VIEWTUBE_TEST_KEEP", "env")
	t.Cleanup(func() {
		_ = os.Unsetenv("VIEWTUBE_TEST_A")
		_ = os.Unsetenv("VIEWTUBE_TEST_B")
	})

	loaded := LoadEnvFromFile(path, filepath.Join(dir, "missing.env"))

	assert.Equal(t, []string{path}, loaded)
	assert.Equal(t, "alpha", os.Getenv("VIEWTUBE_TEST_A"))
	assert.Equal(t, "beta", os.Getenv("VIEWTUBE_TEST_B"))
	assert.Equal(t, "env", os.Getenv("VIEWTUBE_TEST_KEEP"))
}
