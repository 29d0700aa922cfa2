package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Produccion-api/pkg/config"
)

func TestLoad_ValoresDesdeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "staging")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("DB_MIGRATE", "true")
	t.Setenv("DB_MAX_CONNS", "10")
	t.Setenv("DB_LOCK_TIMEOUT_MS", "1500")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.DriverMemory, cfg.Store.Driver, "el driver se normaliza a minúsculas")
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, 10, cfg.DB.MaxConns)
	assert.Equal(t, 1500*time.Millisecond, cfg.DB.LockTimeout)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_DriverDesconocido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ProductionExigeSecreto(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "planta", Password: "p@ss:1", DBName: "produccion", SSLMode: "disable"}
	assert.Equal(t, "postgres://planta:p%40ss%3A1@db:5432/produccion?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString(), "DATABASE_URL tiene prioridad")
}
