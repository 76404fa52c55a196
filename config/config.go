// Package config loads server configuration from an optional YAML file
// and SCHED_-prefixed environment variables, with sane defaults for
// local development.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Overtime OvertimeConfig `mapstructure:"overtime"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig holds the SQLite settings. Use ":memory:" for an
// in-memory database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// OvertimeConfig holds the process-wide hour policy. The ceiling is the
// hard-cap margin on top of a driver's daily hours; it is policy, not
// per-driver configuration.
type OvertimeConfig struct {
	DefaultDailyHours float64 `mapstructure:"default_daily_hours"`
	CeilingHours      float64 `mapstructure:"ceiling_hours"`
}

// Load reads configuration. path may name a YAML file; empty path means
// defaults plus environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allow_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("database.path", "fleet.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("overtime.default_daily_hours", 8)
	v.SetDefault("overtime.ceiling_hours", 2)

	v.SetEnvPrefix("SCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Overtime.DefaultDailyHours <= 0 {
		return nil, fmt.Errorf("overtime.default_daily_hours must be positive, got %v", cfg.Overtime.DefaultDailyHours)
	}
	if cfg.Overtime.CeilingHours < 0 {
		return nil, fmt.Errorf("overtime.ceiling_hours must not be negative, got %v", cfg.Overtime.CeilingHours)
	}
	return &cfg, nil
}
