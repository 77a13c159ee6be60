package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	TeeOff        TeeOffConfig
	Auth          AuthConfig
	Notifications NotificationConfig
	Poll          PollConfig
	OTEL          OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TeeOffConfig holds the upstream tee-time provider configuration
type TeeOffConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds the external auth service configuration
type AuthConfig struct {
	BaseURL    string
	APIKey     string
	SessionTTL time.Duration
}

// NotificationConfig holds the push relay configuration
type NotificationConfig struct {
	RelayURL string
	Token    string
}

// PollConfig holds live-search and watch-checker polling configuration
type PollConfig struct {
	Interval     time.Duration
	CheckerTick  time.Duration
	SearchRadius int
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "teewatch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		TeeOff: TeeOffConfig{
			BaseURL: getEnv("TEEOFF_BASE_URL", "https://www.teeoff.com"),
			Timeout: getEnvAsDuration("TEEOFF_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			BaseURL:    getEnv("AUTH_BASE_URL", ""),
			APIKey:     getEnv("AUTH_API_KEY", ""),
			SessionTTL: getEnvAsDuration("AUTH_SESSION_TTL", 5*time.Minute),
		},
		Notifications: NotificationConfig{
			RelayURL: getEnv("NOTIFY_RELAY_URL", ""),
			Token:    getEnv("NOTIFY_RELAY_TOKEN", ""),
		},
		Poll: PollConfig{
			Interval:     getEnvAsDuration("POLL_INTERVAL", 60*time.Second),
			CheckerTick:  getEnvAsDuration("WATCH_CHECKER_TICK", time.Minute),
			SearchRadius: getEnvAsInt("SEARCH_RADIUS_MILES", 25),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "teewatch"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}, nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
