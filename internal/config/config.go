// Package config reads the service configuration from environment variables.
//
// Every variable carries the CONTACTS_ prefix. The first underscore after the prefix separates the
// section from the key, so CONTACTS_SERVER_PORT ends up in Config.Server.Port and
// CONTACTS_DATABASE_MAX_OPEN_CONNS in Config.Database.MaxOpenConns. A .env file in the working
// directory is loaded first if present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Prefix is the common prefix of all environment variables read by the service.
const Prefix = "CONTACTS_"

// Config is the root configuration object.
type Config struct {
	Primary  Primary        `koanf:"primary"  validate:"required"`
	Server   ServerConfig   `koanf:"server"   validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Birthday BirthdayConfig `koanf:"birthday" validate:"required"`
	Log      LogConfig      `koanf:"log"      validate:"required"`
}

// Primary holds information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development test production"`
}

// ServerConfig groups the settings of the HTTP server.
type ServerConfig struct {
	Port               int           `koanf:"port"                 validate:"required,min=1,max=65535"`
	ReadTimeout        time.Duration `koanf:"read_timeout"         validate:"required"`
	WriteTimeout       time.Duration `koanf:"write_timeout"        validate:"required"`
	IdleTimeout        time.Duration `koanf:"idle_timeout"         validate:"required"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"     validate:"required"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins"`
	RequestLogging     bool          `koanf:"request_logging"`
}

// DatabaseConfig holds the connection parameters. If DSN is set it is used verbatim, otherwise the
// DSN is assembled from the individual fields.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"            validate:"required,oneof=mysql sqlite pgx"`
	DSN             string        `koanf:"dsn"`
	Host            string        `koanf:"host"              validate:"required_without=DSN"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"              validate:"required_without=DSN"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"    validate:"min=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	PingTimeout     time.Duration `koanf:"ping_timeout"      validate:"required"`
	Migrate         bool          `koanf:"migrate"`
}

// BirthdayConfig controls the upcoming birthdays query.
type BirthdayConfig struct {
	WindowDays int `koanf:"window_days" validate:"min=0,max=365"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `koanf:"level" validate:"required,oneof=trace debug info warn error"`
}

// Default returns the configuration that applies when no environment variables are set.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RequestLogging:  true,
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			Host:            "localhost",
			Port:            3306,
			Name:            "contacts",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			PingTimeout:     5 * time.Second,
		},
		Birthday: BirthdayConfig{WindowDays: 7},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the environment on top of the defaults and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")
	err := k.Load(env.ProviderWithValue(Prefix, ".", envKeyValue), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// envKey maps CONTACTS_SERVER_READ_TIMEOUT to server.read_timeout.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, Prefix)), "_", ".", 1)
}

// listKeys are the keys whose values are comma separated lists.
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
}

// envKeyValue maps the variable name like envKey and splits list values on commas.
func envKeyValue(key, value string) (string, any) {
	key = envKey(key)
	if !listKeys[key] {
		return key, value
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// Address is the listen address of the HTTP server.
func (s ServerConfig) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}
