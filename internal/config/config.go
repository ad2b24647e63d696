package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	BaseURL  string `mapstructure:"BASE_URL"`

	DB Database `mapstructure:",squash"`

	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL"`
	AdminUser     string        `mapstructure:"ADMIN_USER"`
	AdminPass     string        `mapstructure:"ADMIN_PASS"`
	AdminTokenTTL time.Duration `mapstructure:"ADMIN_TOKEN_TTL"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`

	RateLimitPerMinute int `mapstructure:"RATE_LIMIT_PER_MINUTE"`
}

type Database struct {
	DSN             string        `mapstructure:"DB_DSN"`
	Host            string        `mapstructure:"DB_HOST"`
	Port            string        `mapstructure:"DB_PORT"`
	User            string        `mapstructure:"DB_USER"`
	Password        string        `mapstructure:"DB_PASSWORD"`
	Name            string        `mapstructure:"DB_NAME"`
	SSLMode         string        `mapstructure:"DB_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
}

var defaults = map[string]any{
	"APP_ENV":               "development",
	"PORT":                  "8080",
	"LOG_LEVEL":             "info",
	"BASE_URL":              "http://localhost:8080",
	"DB_DSN":                "",
	"DB_HOST":               "localhost",
	"DB_PORT":               "5432",
	"DB_USER":               "postgres",
	"DB_PASSWORD":           "postgres",
	"DB_NAME":               "storefront",
	"DB_SSLMODE":            "disable",
	"DB_MAX_OPEN_CONNS":     20,
	"DB_MAX_IDLE_CONNS":     5,
	"DB_CONN_MAX_LIFETIME":  "30m",
	"SESSION_SECRET":        "dev-insecure",
	"SESSION_TTL":           "168h",
	"ADMIN_USER":            "admin",
	"ADMIN_PASS":            "admin123",
	"ADMIN_TOKEN_TTL":       "6h",
	"GOOGLE_CLIENT_ID":      "",
	"GOOGLE_CLIENT_SECRET":  "",
	"RATE_LIMIT_PER_MINUTE": 120,
}

// Load lee .env (si existe) y luego el entorno. El entorno pisa al archivo.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.IsProduction() && cfg.SessionSecret == defaults["SESSION_SECRET"] {
		return nil, fmt.Errorf("config: SESSION_SECRET must be set in production")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.AppEnv)
	return env == "production" || env == "prod"
}

// PostgresDSN devuelve DB_DSN o lo arma a partir de las partes.
func (d Database) PostgresDSN() string {
	if strings.TrimSpace(d.DSN) != "" {
		return d.DSN
	}
	return "host=" + d.Host + " user=" + d.User + " password=" + d.Password + " dbname=" + d.Name + " port=" + d.Port + " sslmode=" + d.SSLMode
}
