package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Scrap     ScrapConfig     `yaml:"scrap"`
	Pickup    PickupConfig    `yaml:"pickup"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Search    SearchConfig    `yaml:"search"`
	Redis     RedisConfig     `yaml:"redis"`
	NATS      NATSConfig      `yaml:"nats"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// ScrapConfig controls the listing-to-scrap classification job
type ScrapConfig struct {
	Enabled          bool   `yaml:"enabled"`
	AgeThresholdDays int    `yaml:"age_threshold_days"`
	Schedule         string `yaml:"schedule"`
	Timezone         string `yaml:"timezone"`
}

// PickupConfig contains pickup scheduling defaults
type PickupConfig struct {
	DefaultFacilityName    string `yaml:"default_facility_name"`
	DefaultFacilityAddress string `yaml:"default_facility_address"`
	RejectPastDates        bool   `yaml:"reject_past_dates"`
	LockTTLSeconds         int    `yaml:"lock_ttl_seconds"`
}

// RateLimitConfig contains rate limiting settings for the scheduling endpoint
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	RequestsPerHour   int  `yaml:"requests_per_hour"`
}

// AuthConfig contains bearer token settings
type AuthConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
	Index  string `yaml:"index"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// NATSConfig contains the event bus connection
type NATSConfig struct {
	URL string `yaml:"url"`
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "5000",
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Type: "mysql",
			MySQL: MySQLConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "ewaste_user",
				Password: "ewaste_pass",
				Database: "ewaste_db",
			},
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "ewaste_user",
				Password: "ewaste_pass",
				Database: "ewaste_db",
				SSLMode:  "disable",
			},
		},
		Scrap: ScrapConfig{
			Enabled:          true,
			AgeThresholdDays: 30,
			Schedule:         "* * * * *",
			Timezone:         "Asia/Kolkata",
		},
		Pickup: PickupConfig{
			DefaultFacilityName:    "Green Recycling Facility",
			DefaultFacilityAddress: "123 Green Street, City",
			RejectPastDates:        true,
			LockTTLSeconds:         30,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: 30,
			RequestsPerHour:   600,
		},
		Search: SearchConfig{
			Meilisearch: MeilisearchConfig{
				Index: "scrap_listings",
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies environment overrides
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overrides deploy-time values from the environment
func (c *Config) applyEnv() {
	c.Server.Port = getEnvOrConfig(c.Server.Port, "PORT")
	c.Database.Type = getEnvOrConfig(c.Database.Type, "DB_TYPE")

	switch c.Database.Type {
	case "postgres":
		pg := &c.Database.Postgres
		pg.Host = getEnvOrConfig(pg.Host, "DB_HOST")
		pg.Port = getEnvIntOrConfig(pg.Port, "DB_PORT")
		pg.User = getEnvOrConfig(pg.User, "DB_USER")
		pg.Password = getEnvOrConfig(pg.Password, "DB_PASSWORD")
		pg.Database = getEnvOrConfig(pg.Database, "DB_NAME")
	default:
		my := &c.Database.MySQL
		my.Host = getEnvOrConfig(my.Host, "DB_HOST")
		my.Port = getEnvIntOrConfig(my.Port, "DB_PORT")
		my.User = getEnvOrConfig(my.User, "DB_USER")
		my.Password = getEnvOrConfig(my.Password, "DB_PASSWORD")
		my.Database = getEnvOrConfig(my.Database, "DB_NAME")
	}

	c.Auth.JWTSecret = getEnvOrConfig(c.Auth.JWTSecret, "JWT_SECRET")
	c.Redis.Addr = getEnvOrConfig(c.Redis.Addr, "REDIS_ADDR")
	c.NATS.URL = getEnvOrConfig(c.NATS.URL, "NATS_URL")
	c.Search.Meilisearch.Host = getEnvOrConfig(c.Search.Meilisearch.Host, "MEILISEARCH_HOST")
	c.Search.Meilisearch.APIKey = getEnvOrConfig(c.Search.Meilisearch.APIKey, "MEILISEARCH_KEY")
	c.Logging.Level = getEnvOrConfig(c.Logging.Level, "LOG_LEVEL")
}

// Validate checks values that would otherwise fail deep inside a component
func (c *Config) Validate() error {
	if c.Database.Type != "mysql" && c.Database.Type != "postgres" {
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Scrap.AgeThresholdDays <= 0 {
		return fmt.Errorf("scrap.age_threshold_days must be positive, got %d", c.Scrap.AgeThresholdDays)
	}
	if _, err := c.Scrap.Location(); err != nil {
		return err
	}
	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth is enabled but no jwt secret is configured")
	}
	return nil
}

// AgeThreshold returns the listing age after which a listing becomes scrap
func (c *ScrapConfig) AgeThreshold() time.Duration {
	return time.Duration(c.AgeThresholdDays) * 24 * time.Hour
}

// Location resolves the configured timezone, defaulting to UTC
func (c *ScrapConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scrap.timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LockTTL returns the scheduling lock lifetime
func (c *PickupConfig) LockTTL() time.Duration {
	if c.LockTTLSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.LockTTLSeconds) * time.Second
}

func getEnvOrConfig(configValue, envKey string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return configValue
}

func getEnvIntOrConfig(configValue int, envKey string) int {
	raw := os.Getenv(envKey)
	if raw == "" {
		return configValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return configValue
	}
	return value
}
