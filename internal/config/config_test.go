package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 14, cfg.JWTExpiresDays)
	assert.Equal(t, "Bad Wordle", cfg.GameName)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("JWT_EXPIRES_DAYS", "3")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 3, cfg.JWTExpiresDays)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "game_name: Word Duel\nstore_driver: file\nsave_dir: " + dir + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "Word Duel", cfg.GameName)
	assert.Equal(t, StoreFile, cfg.StoreDriver)
	assert.Equal(t, dir, cfg.SaveDir)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Port: "1", StoreDriver: StoreMemory, JWTExpiresDays: 1, JWTSecret: "s"}
	}

	c := base()
	assert.NoError(t, c.Validate())

	c = base()
	c.StoreDriver = "redis"
	assert.ErrorContains(t, c.Validate(), "unknown store_driver")

	c = base()
	c.AdminUser = "root"
	assert.Error(t, c.Validate())

	c = base()
	c.Production = true
	c.JWTSecret = "dev_secret_change_me"
	assert.ErrorContains(t, c.Validate(), "production")
}
