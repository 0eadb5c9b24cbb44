// Package config loads service configuration from the environment.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Server
	AppPort  string
	AppEnv   string
	LogLevel string

	// Database
	DatabaseDriver string
	DatabaseDSN    string

	// Auth
	JWTSecret          string
	SuperAdminEmail    string
	SuperAdminPassword string

	// RabbitMQ; an empty URL disables publishing and consuming.
	RabbitMQURL string

	// Supabase storage
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// Load reads an optional .env file, then the environment, and validates the
// result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SUPER_ADMIN_EMAIL", "")
	v.SetDefault("SUPER_ADMIN_PASSWORD", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("SUPABASE_KEY", "")
	v.SetDefault("SUPABASE_BUCKET", "assets")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:            v.GetString("APP_PORT"),
		AppEnv:             v.GetString("APP_ENV"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		DatabaseDriver:     v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:        v.GetString("DATABASE_DSN"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		SuperAdminEmail:    v.GetString("SUPER_ADMIN_EMAIL"),
		SuperAdminPassword: v.GetString("SUPER_ADMIN_PASSWORD"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		SupabaseURL:        v.GetString("SUPABASE_URL"),
		SupabaseKey:        v.GetString("SUPABASE_KEY"),
		SupabaseBucket:     v.GetString("SUPABASE_BUCKET"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if (c.SuperAdminEmail == "") != (c.SuperAdminPassword == "") {
		return fmt.Errorf("SUPER_ADMIN_EMAIL and SUPER_ADMIN_PASSWORD must be set together")
	}
	return nil
}

// StorageEnabled reports whether the Supabase blob store is configured.
func (c *Config) StorageEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}
