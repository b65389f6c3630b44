package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "ghostprotocol", cfg.Database.Name)
	assert.Equal(t, time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, 5*time.Second, cfg.Storage.Timeout)
}

func TestLoad_YamlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "app:\n  port: 9090\ndatabase:\n  name: content\nsweep:\n  interval: 30s\n"
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	assert.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "content", cfg.Database.Name)
	assert.Equal(t, 30*time.Second, cfg.Sweep.Interval)
	// Untouched sections keep defaults
	assert.Equal(t, "localhost", cfg.Redis.Host)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("app:\n  port: 9090\n"), 0o600))
	t.Setenv("APP_PORT", "7070")
	t.Setenv("SWEEP_INTERVAL", "10s")

	cfg, err := Load(path)

	assert.NoError(t, err)
	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, 10*time.Second, cfg.Sweep.Interval)
}

func TestLoadDotEnv_LocalWinsOSWinsMore(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DB_NAME=from_env\nDB_HOST=from_env\n"), 0o600))
	assert.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte("DB_NAME=from_local\n"), 0o600))
	t.Setenv("DB_HOST", "from_os")
	os.Unsetenv("DB_NAME")
	t.Cleanup(func() { os.Unsetenv("DB_NAME") })
	wd, err := os.Getwd()
	assert.NoError(t, err)
	assert.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	found := LoadDotEnv()

	assert.Equal(t, []string{".env.local", ".env"}, found)
	assert.Equal(t, "from_local", os.Getenv("DB_NAME"), ".env.local beats .env")
	assert.Equal(t, "from_os", os.Getenv("DB_HOST"), "OS env beats dotenv files")
}

func TestLoad_MalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("app: ["), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}
