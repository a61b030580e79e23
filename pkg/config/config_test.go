package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("CONFLICT_RETRIES", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Ledger.ConflictRetries)
	assert.Empty(t, cfg.JWT.Secret)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("CONFLICT_RETRIES", "5")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_PORT", "no-es-numero")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Ledger.ConflictRetries)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5433, User: "ledger", Password: "p@ss word", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "postgres://ledger:p%40ss%20word@db:5433/ledger?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
