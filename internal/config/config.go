package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string
	StorageDriver string
	DatabaseURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	CORSOrigins []string

	FactoryURL     string
	FactoryAPIKey  string
	FactoryTimeout time.Duration

	LoginRatePerSecond float64
	LoginRateBurst     int
	// TrustProxy honours X-Forwarded-For when picking the client address.
	TrustProxy bool

	LogLevel  string
	LogFormat string

	AdminName     string
	AdminEmail    string
	AdminPassword string

	Version string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	v.AutomaticEnv()
	v.SetDefault("port", "3000")
	v.SetDefault("storage_driver", StorageMemory)
	v.SetDefault("redis_db", 0)
	v.SetDefault("jwt_issuer", "pizza-be")
	v.SetDefault("jwt_ttl_minutes", 60)
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("factory_url", "https://pizza-factory.cs329.click")
	v.SetDefault("factory_timeout_seconds", 10)
	v.SetDefault("login_rate_per_second", 5)
	v.SetDefault("login_rate_burst", 20)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("app_version", "dev")

	cfg := Config{
		Port:               strings.TrimSpace(v.GetString("port")),
		StorageDriver:      strings.ToLower(strings.TrimSpace(v.GetString("storage_driver"))),
		DatabaseURL:        strings.TrimSpace(v.GetString("database_url")),
		RedisAddr:          strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:      v.GetString("redis_password"),
		RedisDB:            v.GetInt("redis_db"),
		JWTSecret:          strings.TrimSpace(v.GetString("jwt_secret")),
		JWTIssuer:          strings.TrimSpace(v.GetString("jwt_issuer")),
		CORSOrigins:        parseCSV(v.GetString("cors_allowed_origins")),
		FactoryURL:         strings.TrimSpace(v.GetString("factory_url")),
		FactoryAPIKey:      strings.TrimSpace(v.GetString("factory_api_key")),
		LoginRatePerSecond: v.GetFloat64("login_rate_per_second"),
		LoginRateBurst:     v.GetInt("login_rate_burst"),
		TrustProxy:         v.GetBool("trust_proxy"),
		LogLevel:           strings.ToLower(v.GetString("log_level")),
		LogFormat:          strings.ToLower(v.GetString("log_format")),
		AdminName:          strings.TrimSpace(v.GetString("admin_name")),
		AdminEmail:         strings.TrimSpace(v.GetString("admin_email")),
		AdminPassword:      v.GetString("admin_password"),
		Version:            v.GetString("app_version"),
	}

	cfg.JWTTTL = positiveDuration(v.GetInt("jwt_ttl_minutes"), time.Minute, 60*time.Minute)
	cfg.FactoryTimeout = positiveDuration(v.GetInt("factory_timeout_seconds"), time.Second, 10*time.Second)
	if cfg.LoginRatePerSecond <= 0 {
		cfg.LoginRatePerSecond = 5
	}
	if cfg.LoginRateBurst <= 0 {
		cfg.LoginRateBurst = 20
	}
	if cfg.AdminName == "" {
		cfg.AdminName = "常用名字"
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.FactoryURL == "" {
		return Config{}, errors.New("FACTORY_URL is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// BootstrapAdmin reports whether an admin account should be seeded at startup.
func (c Config) BootstrapAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

func positiveDuration(n int, unit, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * unit
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
