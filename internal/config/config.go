// Package config loads and validates the revq configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Session   SessionConfig   `mapstructure:"session"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host" validate:"required"`
	Port            int               `mapstructure:"port" validate:"gt=0"`
	Database        string            `mapstructure:"database" validate:"required"`
	Username        string            `mapstructure:"username" validate:"required"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type SchedulerConfig struct {
	QueueLimit  int    `mapstructure:"queue_limit" validate:"gt=0"`
	RankingMode string `mapstructure:"ranking_mode" validate:"oneof=weighted lexicographic"`
}

type SessionConfig struct {
	InactivityTimeoutMinutes int `mapstructure:"inactivity_timeout_minutes" validate:"gt=0"`
}

type OracleConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APIKey        string `mapstructure:"api_key"`
	RetryAttempts uint   `mapstructure:"retry_attempts"`
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/revq")
	}

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "revq")
	v.SetDefault("database.username", "revq")
	v.SetDefault("scheduler.queue_limit", 20)
	v.SetDefault("scheduler.ranking_mode", "weighted")
	v.SetDefault("session.inactivity_timeout_minutes", 30)
	v.SetDefault("oracle.retry_attempts", 3)

	// Bind secrets to environment variables only (not from config file)
	if err := v.BindEnv("database.password", "REVQ_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind REVQ_DB_PASSWORD environment variable: %w", err)
	}
	if err := v.BindEnv("oracle.api_key", "REVQ_ORACLE_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind REVQ_ORACLE_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
