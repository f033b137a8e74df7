package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port             string
	DatabaseURL      string
	GinMode          string
	CORSOrigin       string
	SessionTTL       time.Duration
	CookieSecure     bool
	EnforceOwnership bool
	AdminToken       string
	AuthRatePerMin   float64
	AuthRateBurst    int
	DBDebug          bool
}

// Load reads a .env file if present, then resolves every key from the
// environment, an optional config.yaml, or the built-in default.
func Load() (*Config, error) {
	// A missing .env is fine in production where the variables are set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "sqlite://qanda.db")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("SESSION_TTL", "336h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("ENFORCE_OWNERSHIP", false)
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("AUTH_RATE_PER_MINUTE", 20)
	v.SetDefault("AUTH_RATE_BURST", 5)
	v.SetDefault("DB_DEBUG", false)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir := v.GetString("QANDA_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", ttl)
	}

	cfg := &Config{
		Port:             v.GetString("PORT"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		GinMode:          v.GetString("GIN_MODE"),
		CORSOrigin:       v.GetString("CORS_ORIGIN"),
		SessionTTL:       ttl,
		CookieSecure:     v.GetBool("COOKIE_SECURE"),
		EnforceOwnership: v.GetBool("ENFORCE_OWNERSHIP"),
		AdminToken:       v.GetString("ADMIN_TOKEN"),
		AuthRatePerMin:   v.GetFloat64("AUTH_RATE_PER_MINUTE"),
		AuthRateBurst:    v.GetInt("AUTH_RATE_BURST"),
		DBDebug:          v.GetBool("DB_DEBUG"),
	}
	if cfg.AuthRatePerMin <= 0 || cfg.AuthRateBurst <= 0 {
		return nil, fmt.Errorf("AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must be positive")
	}
	return cfg, nil
}
