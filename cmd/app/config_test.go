package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckinConfig_Location(t *testing.T) {
	loc, err := CheckinConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = CheckinConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	_, err = CheckinConfig{Timezone: "Mars/Olympus"}.Location()
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
database:
  host: db
  port: "5432"
  autoMigrate: true
auth:
  jwtSecret: from-file
  tokenTTL: 2h
checkin:
  timezone: UTC
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		viper.Reset()
	})
	viper.Reset()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}
