package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported DATABASE_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config is the process configuration, read from the environment and an optional config file.
type Config struct {
	AppPort          string
	DatabaseDriver   string
	DatabaseDSN      string
	RabbitMQURL      string
	RabbitMQExchange string
	AuthEnabled      bool
	JWTSecret        string
	JWTTTL           time.Duration
	LogLevel         string
	PageSizeDefault  int
	PageSizeMax      int
}

// Load reads configuration with viper. Environment variables win over the
// config file, which wins over the defaults. A missing config file is not an error.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config/")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:inventory.db?cache=shared")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_EXCHANGE", "inventory")
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PAGE_SIZE_DEFAULT", 20)
	v.SetDefault("PAGE_SIZE_MAX", 100)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		AppPort:          v.GetString("APP_PORT"),
		DatabaseDriver:   strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),
		AuthEnabled:      v.GetBool("AUTH_ENABLED"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		JWTTTL:           v.GetDuration("JWT_TTL"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		PageSizeDefault:  v.GetInt("PAGE_SIZE_DEFAULT"),
		PageSizeMax:      v.GetInt("PAGE_SIZE_MAX"),
	}
}

// Validate rejects combinations the service cannot start with.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver != DriverMemory && c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.AuthEnabled && c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if c.AuthEnabled && c.DatabaseDriver == DriverMemory {
		return errors.New("AUTH_ENABLED needs a SQL DATABASE_DRIVER to store operators")
	}
	if c.PageSizeMax < 1 {
		return fmt.Errorf("PAGE_SIZE_MAX must be positive, got %d", c.PageSizeMax)
	}
	if c.PageSizeDefault < 1 || c.PageSizeDefault > c.PageSizeMax {
		return fmt.Errorf("PAGE_SIZE_DEFAULT must be between 1 and %d, got %d", c.PageSizeMax, c.PageSizeDefault)
	}
	return nil
}

// EventsEnabled reports whether product events should be published.
func (c Config) EventsEnabled() bool {
	return c.RabbitMQURL != ""
}
