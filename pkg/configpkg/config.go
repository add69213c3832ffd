// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBSource          string        `mapstructure:"DB_SOURCE"`
	MigrationURL      string        `mapstructure:"MIGRATION_URL"`
	ServerAddress     string        `mapstructure:"SERVER_ADDRESS"`
	Environment       string        `mapstructure:"GO_ENV"`
	LockTimeout       time.Duration `mapstructure:"LOCK_TIMEOUT"`
	OperationTimeout  time.Duration `mapstructure:"OPERATION_TIMEOUT"`
	RedisAddress      string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	RedisStream       string        `mapstructure:"REDIS_STREAM"`
	RedisStreamMaxLen int64         `mapstructure:"REDIS_STREAM_MAX_LEN"`
	OTelEndpoint      string        `mapstructure:"OTEL_ENDPOINT"`
	ServiceName       string        `mapstructure:"SERVICE_NAME"`
	CORSAllowOrigins  string        `mapstructure:"CORS_ALLOW_ORIGINS"`
}

// DriverMemory selects the in-memory store instead of PostgreSQL.
const DriverMemory = "memory"

var defaults = map[string]any{
	"DB_DRIVER":            "postgres",
	"DB_SOURCE":            "",
	"MIGRATION_URL":        "file://configs/db/migration",
	"SERVER_ADDRESS":       "0.0.0.0:8080",
	"GO_ENV":               "production",
	"LOCK_TIMEOUT":         "3s",
	"OPERATION_TIMEOUT":    "5s",
	"REDIS_ADDRESS":        "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"REDIS_STREAM":         "ledger:transactions",
	"REDIS_STREAM_MAX_LEN": 100_000,
	"OTEL_ENDPOINT":        "",
	"SERVICE_NAME":         "pet-ledger",
	"CORS_ALLOW_ORIGINS":   "*",
}

// Load reads configuration from file or environment variables.
//
// A missing app.env is not an error: every key has a default and can be
// overridden from the environment.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}
