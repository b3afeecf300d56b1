package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/SscSPs/bodega_ledger/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// StoreBackend names a persistence adapter.
type StoreBackend string

const (
	BackendFile     StoreBackend = "file"
	BackendPostgres StoreBackend = "postgres"
	BackendRedis    StoreBackend = "redis"
	BackendMemory   StoreBackend = "memory"
)

// Config holds application configuration.
type Config struct {
	StoreBackend StoreBackend
	DataFile     string // file backend: tenant data slot
	SessionFile  string // file backend: session slot

	DatabaseURL    string
	MigrationsPath string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	// Platform operator credential pair
	OperatorUsername string
	OperatorPassword string

	SalePolicy   domain.SalePolicy
	LogLevel     string
	IsProduction bool
	MetricsFile  string // When set, metrics are written here in text format on exit
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"store":        "STORE_BACKEND",
	"data-file":    "DATA_FILE",
	"session-file": "SESSION_FILE",
	"log-level":    "LOG_LEVEL",
	"sale-policy":  "SALE_POLICY",
}

// RegisterFlags adds the flags that may override environment configuration.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("store", "", "persistence backend: file, postgres, redis or memory")
	fs.String("data-file", "", "path of the tenant data file (file backend)")
	fs.String("session-file", "", "path of the session file (file backend)")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("sale-policy", "", "sale commit policy: lenient or strict")
}

// LoadConfig loads configuration from environment variables, a .env file if present,
// and the flags in fs that were explicitly set. fs may be nil.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("STORE_BACKEND", string(BackendFile))
	v.SetDefault("DATA_FILE", "bodega_data.json")
	v.SetDefault("SESSION_FILE", "bodega_session.json")
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_KEY_PREFIX", "bodega")
	v.SetDefault("OPERATOR_USERNAME", "superuser")
	v.SetDefault("OPERATOR_PASSWORD", "password")
	v.SetDefault("SALE_POLICY", string(domain.SalePolicyLenient))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("METRICS_FILE", "")
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		StoreBackend:     StoreBackend(strings.ToLower(strings.TrimSpace(v.GetString("STORE_BACKEND")))),
		DataFile:         v.GetString("DATA_FILE"),
		SessionFile:      v.GetString("SESSION_FILE"),
		DatabaseURL:      v.GetString("PGSQL_URL"),
		MigrationsPath:   v.GetString("MIGRATIONS_PATH"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		RedisKeyPrefix:   v.GetString("REDIS_KEY_PREFIX"),
		OperatorUsername: v.GetString("OPERATOR_USERNAME"),
		OperatorPassword: v.GetString("OPERATOR_PASSWORD"),
		SalePolicy:       domain.ParseSalePolicy(v.GetString("SALE_POLICY")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		IsProduction:     v.GetBool("IS_PRODUCTION"),
		MetricsFile:      v.GetString("METRICS_FILE"),
	}

	switch cfg.StoreBackend {
	case BackendFile:
		if cfg.DataFile == "" || cfg.SessionFile == "" {
			return nil, fmt.Errorf("file backend requires DATA_FILE and SESSION_FILE")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres backend requires PGSQL_URL")
		}
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend requires REDIS_ADDR")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.OperatorPassword == "password" {
		log.Println("Warning: OPERATOR_PASSWORD not set. Using the default operator credentials.")
	}
	if cfg.DataFile == cfg.SessionFile && cfg.StoreBackend == BackendFile {
		return nil, fmt.Errorf("DATA_FILE and SESSION_FILE must differ")
	}

	return cfg, nil
}
