package config

import (
	"testing"

	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("IS_PRODUCTION", "")
	t.Setenv("OPERATOR_PASSWORD", "s3cret")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, "bodega_data.json", cfg.DataFile)
	assert.Equal(t, "bodega_session.json", cfg.SessionFile)
	assert.Equal(t, "superuser", cfg.OperatorUsername)
	assert.Equal(t, domain.SalePolicyLenient, cfg.SalePolicy)
	assert.Equal(t, "bodega", cfg.RedisKeyPrefix)
	assert.False(t, cfg.IsProduction)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Redis ")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SALE_POLICY", "strict")
	t.Setenv("IS_PRODUCTION", "true")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, "cache:6380", cfg.RedisAddr)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, domain.SalePolicyStrict, cfg.SalePolicy)
	assert.True(t, cfg.IsProduction)
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--store", "file", "--data-file", "/tmp/d.json"}))

	cfg, err := LoadConfig(fs)
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, "/tmp/d.json", cfg.DataFile)
	// Unset flags leave the environment value alone.
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown backend", env: map[string]string{"STORE_BACKEND": "sqlite"}},
		{name: "postgres without url", env: map[string]string{"STORE_BACKEND": "postgres", "PGSQL_URL": ""}},
		{name: "same file for both slots", env: map[string]string{"STORE_BACKEND": "file", "DATA_FILE": "x.json", "SESSION_FILE": "x.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(nil)
			assert.Error(t, err)
		})
	}
}
