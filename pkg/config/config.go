package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config holds all configuration for the gateway
type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Catalog  CatalogConfig
	Visits   VisitsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// UpstreamConfig holds the Negobi ERP API connection configuration
type UpstreamConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Email          string        `mapstructure:"email"`
	Password       string        `mapstructure:"password"`
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PageSize       int           `mapstructure:"page_size"`
}

// Validate checks that the upstream configuration is valid for the given environment.
// In production/staging, credentials and a non-localhost base URL are required.
func (c *UpstreamConfig) Validate(environment string) error {
	if environment == EnvProduction || environment == EnvStaging {
		if c.BaseURL == "" || strings.Contains(c.BaseURL, "localhost") {
			return errors.New("NEGOBI_UPSTREAM_BASE_URL must be set to a non-localhost value in " + environment)
		}
		if c.Email == "" || c.Password == "" {
			return errors.New("NEGOBI_UPSTREAM_EMAIL and NEGOBI_UPSTREAM_PASSWORD required in " + environment)
		}
	}
	return nil
}

// CatalogConfig holds price validation bounds for the services catalog
type CatalogConfig struct {
	MaxPrice float64 `mapstructure:"max_price"`
}

// VisitsConfig holds scheduling defaults for field visits
type VisitsConfig struct {
	DefaultDuration time.Duration `mapstructure:"default_duration"`
}

// Load loads configuration from environment and config files.
// This function applies development defaults and is suitable for local development.
// For production use, prefer LoadWithValidation which enforces required configuration.
func Load(serviceName string) (*Config, error) {
	return loadConfig(serviceName)
}

// LoadWithValidation loads configuration and validates it for the current environment.
// In production/staging environments, this will fail if required configuration is missing.
// Use this function in service main() for fail-fast behavior.
func LoadWithValidation(serviceName string) (*Config, error) {
	cfg, err := loadConfig(serviceName)
	if err != nil {
		return nil, err
	}

	if err := cfg.Upstream.Validate(cfg.Server.Environment); err != nil {
		return nil, fmt.Errorf("upstream configuration error: %w", err)
	}

	return cfg, nil
}

func loadConfig(serviceName string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("NEGOBI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read from config file if exists
	v.SetConfigName(serviceName)
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/negobi")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.environment", EnvDevelopment)

	// Upstream defaults
	v.SetDefault("upstream.base_url", "http://localhost:3000/api/v1")
	v.SetDefault("upstream.email", "")
	v.SetDefault("upstream.password", "")
	v.SetDefault("upstream.api_key", "")
	v.SetDefault("upstream.request_timeout", 10*time.Second)
	v.SetDefault("upstream.page_size", 100)

	// Catalog defaults
	v.SetDefault("catalog.max_price", 1_000_000.0)

	// Visits defaults
	v.SetDefault("visits.default_duration", 60*time.Minute)
}
