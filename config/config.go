package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Store         StoreConfig         `mapstructure:"store"`
	Catalog       CatalogConfig       `mapstructure:"catalog"`
	Log           LogConfig           `mapstructure:"log"`
}

// ServerConfig holds configuration of the local HTTP view
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OpenFoodFactsConfig holds Open Food Facts API configuration
type OpenFoodFactsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL        time.Duration `mapstructure:"ttl"`         // product details
	SessionTTL time.Duration `mapstructure:"session_ttl"` // idle browser sessions
}

// StoreConfig selects where the last selected category is kept
type StoreConfig struct {
	Type string `mapstructure:"type"` // "memory" or "sqlite"
	Path string `mapstructure:"path"` // sqlite file, defaults to the user config dir
}

// CatalogConfig holds the auxiliary category ranking thresholds
type CatalogConfig struct {
	MinProducts int `mapstructure:"min_products"`
	Limit       int `mapstructure:"limit"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.config/forkandfind")

	// Environment variable settings: FORKANDFIND_OPENFOODFACTS_BASE_URL etc.
	v.SetEnvPrefix("FORKANDFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error loading .env file: %w", err)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Open Food Facts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "ForkAndFind/1.0")
	v.SetDefault("openfoodfacts.timeout", "30s")
	v.SetDefault("openfoodfacts.requests_per_minute", 60)
	v.SetDefault("openfoodfacts.burst", 10)

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.session_ttl", "24h")

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.path", "")

	// Catalog defaults
	v.SetDefault("catalog.min_products", 10000)
	v.SetDefault("catalog.limit", 20)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("Open Food Facts base URL is required (set FORKANDFIND_OPENFOODFACTS_BASE_URL)")
	}

	if config.OpenFoodFacts.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests per minute must be positive, got: %d", config.OpenFoodFacts.RequestsPerMinute)
	}

	if config.Store.Type != "memory" && config.Store.Type != "sqlite" {
		return fmt.Errorf("store type must be 'memory' or 'sqlite', got: %s", config.Store.Type)
	}

	if config.Catalog.MinProducts < 0 || config.Catalog.Limit <= 0 {
		return fmt.Errorf("catalog thresholds must be positive, got min_products=%d limit=%d",
			config.Catalog.MinProducts, config.Catalog.Limit)
	}

	return nil
}
