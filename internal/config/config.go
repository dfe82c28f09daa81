// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Supported STORE_DRIVER values.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env            string `mapstructure:"APP_ENV"`
	Port           string `mapstructure:"PORT"`
	JWTSecret      string `mapstructure:"JWT_SECRET"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	StoreDriver      string `mapstructure:"STORE_DRIVER"`
	StoreDSN         string `mapstructure:"STORE_DSN"`
	StoreRedisPrefix string `mapstructure:"STORE_REDIS_PREFIX"`
	RedisURL         string `mapstructure:"REDIS_URL"`

	GeminiAPIKey            string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel             string `mapstructure:"GEMINI_MODEL"`
	AssistantTimeoutSeconds int    `mapstructure:"ASSISTANT_TIMEOUT_SECONDS"`
	AssistantFallbacksFile  string `mapstructure:"ASSISTANT_FALLBACKS_FILE"`
	SellerSimulation        bool   `mapstructure:"SELLER_SIMULATION"`

	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`

	SessionFile string `mapstructure:"SESSION_FILE"`
}

// LoadConfig loads application configuration from .env, config files and
// environment variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The base config file is optional.
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		slog.Info("Loaded profile-specific configuration", slog.String("file", "config."+env+".yml"))
	}

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("STORE_DRIVER", DriverSQLite)
	v.SetDefault("STORE_DSN", "carmarket.db")
	v.SetDefault("STORE_REDIS_PREFIX", "carmarket:")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("ASSISTANT_TIMEOUT_SECONDS", 30)
	v.SetDefault("ASSISTANT_FALLBACKS_FILE", "")
	v.SetDefault("SELLER_SIMULATION", true)
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("SESSION_FILE", "")
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.TracingExporter = strings.ToLower(strings.TrimSpace(c.TracingExporter))
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// AssistantTimeout is the bound applied to every assistant gateway call.
func (c *Config) AssistantTimeout() time.Duration {
	return time.Duration(c.AssistantTimeoutSeconds) * time.Second
}

// Origins splits ALLOWED_ORIGINS into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AssistantTimeoutSeconds <= 0 {
		return errors.New("ASSISTANT_TIMEOUT_SECONDS must be positive")
	}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverRedis:
		if c.RedisURL == "" && c.StoreDSN == "" {
			return errors.New("STORE_DRIVER=redis requires REDIS_URL or STORE_DSN")
		}
	case DriverSQLite, DriverPostgres:
		if c.StoreDSN == "" {
			return fmt.Errorf("STORE_DRIVER=%s requires STORE_DSN", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.TracingExporter != "stdout" && c.TracingExporter != "otlp" {
		return fmt.Errorf("unsupported TRACING_EXPORTER %q", c.TracingExporter)
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.StoreDriver == DriverMemory {
			return errors.New("STORE_DRIVER=memory loses all data on restart and is not allowed in production")
		}
		if c.AllowedOrigins == "*" {
			slog.Warn("ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else if len(c.JWTSecret) < 32 {
		slog.Warn("JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}
