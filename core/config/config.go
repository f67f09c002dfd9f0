package config

import (
	"fmt"
	"strings"
	"sync"

	"roomdisplay/core/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Server   ServerConfig   `mapstructure:"server"`
		Provider ProviderConfig `mapstructure:"provider"`
		Sync     SyncConfig     `mapstructure:"sync"`
		Booking  BookingConfig  `mapstructure:"booking"`
		Redis    RedisConfig    `mapstructure:"redis"`
		Database DatabaseConfig `mapstructure:"database"`
	}

	ServerConfig struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		BaseURL  string `mapstructure:"base_url"`
		LogLevel string `mapstructure:"log_level"`
	}

	// ProviderConfig selects and configures the calendar backend.
	// Kind is re-read on every scheduler tick, so switching between
	// graph and ews needs no restart beyond a config reload.
	ProviderConfig struct {
		Kind  string      `mapstructure:"kind"` // graph | ews
		Graph GraphConfig `mapstructure:"graph"`
		EWS   EWSConfig   `mapstructure:"ews"`
	}

	GraphConfig struct {
		TenantID     string `mapstructure:"tenant_id"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		// BaseURL / TokenURL overrides exist for sovereign-cloud tenants.
		BaseURL  string `mapstructure:"base_url"`
		TokenURL string `mapstructure:"token_url"`
	}

	EWSConfig struct {
		URL      string `mapstructure:"url"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	}

	SyncConfig struct {
		IntervalSeconds int `mapstructure:"interval_seconds"`
		// RoomLists limits the deployment to named lists; empty means all.
		RoomLists         []string          `mapstructure:"room_lists"`
		AliasOverrides    map[string]string `mapstructure:"alias_overrides"`
		RosterRefreshCron string            `mapstructure:"roster_refresh_cron"`
	}

	BookingConfig struct {
		Enabled            bool `mapstructure:"enabled"`
		AllowCustomMinutes bool `mapstructure:"allow_custom_minutes"`
	}

	RedisConfig struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	}

	// DatabaseConfig is optional; an empty DSN disables the booking audit trail.
	DatabaseConfig struct {
		DSN string `mapstructure:"dsn"`
	}
)

var (
	mu       sync.RWMutex
	instance *Config
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("Config:Load:NoDotEnv")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("Config:Load:NoConfigFile")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	mu.Lock()
	instance = cfg
	mu.Unlock()
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7070)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("provider.kind", "graph")
	v.SetDefault("sync.interval_seconds", 60)
	v.SetDefault("sync.roster_refresh_cron", "@every 1h")
	v.SetDefault("booking.enabled", true)
	v.SetDefault("booking.allow_custom_minutes", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.dsn", "")
}

// Get returns the process-wide configuration. It panics before Load.
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	if instance == nil {
		panic("config: Get called before Load")
	}
	return instance
}

// GetSafe is Get without the panic, for callers that can degrade.
func GetSafe() (*Config, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return instance, instance != nil
}

// Set installs a configuration directly; tests use it to avoid touching files.
func Set(cfg *Config) {
	mu.Lock()
	instance = cfg
	mu.Unlock()
}
