package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    string
}

type FleetConfig struct {
	// CapacityOverrides holds "type:min:max" entries that replace the
	// built-in vehicle capacity ranges.
	CapacityOverrides []string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Fleet       FleetConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:    v.GetString("JWT_ACCESS_TTL"),
		},
		Fleet: FleetConfig{
			CapacityOverrides: parseList(v.GetString("FLEET_CAPACITY_OVERRIDES")),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Auth.AccessTTL == "" {
		cfg.Auth.AccessTTL = "24h"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	for _, entry := range cfg.Fleet.CapacityOverrides {
		if _, _, _, err := ParseCapacityOverride(entry); err != nil {
			return err
		}
	}
	return nil
}

// ParseCapacityOverride splits a "type:min:max" entry.
func ParseCapacityOverride(entry string) (string, float64, float64, error) {
	parts := strings.Split(entry, ":")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("invalid capacity override %q, want type:min:max", entry)
	}
	min, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid capacity override %q: %v", entry, err)
	}
	max, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("invalid capacity override %q: %v", entry, err)
	}
	if min <= 0 || max < min {
		return "", 0, 0, fmt.Errorf("invalid capacity override %q: bad range", entry)
	}
	return strings.ToLower(strings.TrimSpace(parts[0])), min, max, nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
