package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "academy-backend", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "academy", cfg.Database.DBName)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 10*time.Minute, cfg.Redis.ViewTTL)
	assert.Equal(t, "Asia/Seoul", cfg.Scheduler.Timezone)
	assert.Equal(t, 0, cfg.Scheduler.Hour)
	assert.Equal(t, 0, cfg.Scheduler.Minute)
}

func TestValidate_SchedulerBounds(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	require.NoError(t, cfg.validate())

	cfg.Scheduler.Hour = 24
	assert.Error(t, cfg.validate())

	cfg.Scheduler.Hour = 4
	cfg.Scheduler.Minute = 60
	assert.Error(t, cfg.validate())

	cfg.Scheduler.Minute = 30
	require.NoError(t, cfg.validate())
}

func TestValidate_Timezone(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Scheduler.Timezone = "Not/AZone"
	assert.Error(t, cfg.validate())

	cfg.Scheduler.Timezone = "UTC"
	assert.NoError(t, cfg.validate())
}

func TestValidate_Production(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"
	assert.Error(t, cfg.validate(), "missing jwt secret")

	cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
	cfg.Database.Password = "secret"
	cfg.Database.SSLMode = "require"
	assert.NoError(t, cfg.validate())
}

func TestDSN_EscapesCredentials(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "user",
		Password: "p@ss/word",
		DBName:   "academy",
		SSLMode:  "disable",
	}
	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "sslmode=disable")
}
