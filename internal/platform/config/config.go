package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Vault     VaultConfig     `mapstructure:"vault"`
	Webhooks  WebhooksConfig  `mapstructure:"webhooks"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Workers   WorkersConfig   `mapstructure:"workers"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type VaultConfig struct {
	// MasterSecret is stretched to the AES-256 key with HKDF; it is
	// never used as a cipher key directly.
	MasterSecret string `mapstructure:"master_secret"`
}

type WebhooksConfig struct {
	DeliveryTimeout       time.Duration `mapstructure:"delivery_timeout"`
	MaxConcurrentDeliveries int64       `mapstructure:"max_concurrent_deliveries"`
}

type RateLimitConfig struct {
	WindowMinutes int `mapstructure:"window_minutes"`
	DefaultLimit  int `mapstructure:"default_limit"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

type WorkersConfig struct {
	UsageRollupSchedule string `mapstructure:"usage_rollup_schedule"`
	PurgeSchedule       string `mapstructure:"purge_schedule"`
	AttemptRetentionDays int   `mapstructure:"attempt_retention_days"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("webhooks.delivery_timeout", "10s")
	viper.SetDefault("webhooks.max_concurrent_deliveries", 32)
	viper.SetDefault("rate_limit.window_minutes", 60)
	viper.SetDefault("rate_limit.default_limit", 1000)
	viper.SetDefault("workers.usage_rollup_schedule", "0 1 * * *")
	viper.SetDefault("workers.purge_schedule", "30 2 * * *")
	viper.SetDefault("workers.attempt_retention_days", 30)
}
