package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Create a new instance of the logger
// Configure it to log at the desired level
// and format it as JSON for structured logging
var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	environment := GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(logrus.DebugLevel)
	case "production":
		log.SetLevel(logrus.ErrorLevel)
	default:
		// Default to info level for other environments
		log.SetLevel(logrus.InfoLevel)
	}
}

// Config used for the application configuration, loading the input from environment variables
type Config struct {
	// Server Configuration
	Environment string `json:"environment"`
	Port        int    `json:"port"`
	Host        string `json:"host"`

	// Database configuration
	DBDriver    string `json:"db_driver"`
	DBHost      string `json:"db_host"`
	DBPort      string `json:"db_port"`
	DBName      string `json:"db_name"`
	DBUser      string `json:"db_user"`
	DBPassword  string `json:"db_password"`
	DBSSLMode   string `json:"db_sslmode"`
	DBPath      string `json:"db_path"`
	DatabaseURL string `json:"database_url"`

	// Logging configuration
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security Configuration
	JWTSecret     string        `json:"jwt_secret"`
	SessionSecret string        `json:"session_secret"`
	TokenTTL      time.Duration `json:"token_ttl"`

	// Shop configuration
	TimeZone              string   `json:"time_zone"`
	CSVPath               string   `json:"csv_path"`
	CORSOrigins           []string `json:"cors_origins"`
	CheckoutRatePerMinute int      `json:"checkout_rate_per_minute"`
	SeedMenu              bool     `json:"seed_menu"`
}

// String returns a string representation of Config with sensitive data masked
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Port: %d, Host: %s, DBDriver: %s, DBHost: %s, DBName: %s, DBUser: %s, DBPassword: [REDACTED], DatabaseURL: %s, LogLevel: %s, JWTSecret: [REDACTED], SessionSecret: [REDACTED], TimeZone: %s}",
		c.Environment, c.Port, c.Host, c.DBDriver, c.DBHost, c.DBName, c.DBUser, maskDatabaseURL(c.DatabaseURL), c.LogLevel, c.TimeZone)
}

// Location resolves the configured IANA time zone. LoadConfig has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// maskDatabaseURL masks password in database URL
func maskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}

	parsed, err := url.Parse(dbURL)
	if err != nil {
		return "[REDACTED_INVALID_URL]"
	}

	if parsed.User != nil {
		// Replace password with [REDACTED]
		parsed.User = url.UserPassword(parsed.User.Username(), "[REDACTED]")
	}

	return parsed.String()
}

// LoadConfig read the proper configuration from environment variables and returns a Config struct
// Returns an error if any environment variable is present but invalid
func LoadConfig() (*Config, error) {
	log.Info("Loading configuration from environment variables")
	port, err := strconv.Atoi(GetEnvWithDefault("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	driver := strings.ToLower(GetEnvWithDefault("DB_DRIVER", "sqlite"))
	switch driver {
	case "sqlite", "postgres", "postgresql", "mysql":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (supported: sqlite, postgres, mysql)", driver)
	}

	dbURL := GetEnvWithDefault("DATABASE_URL", "")
	if dbURL != "" {
		if _, err := url.ParseRequestURI(dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL format: %w", err)
		}
	}

	timeZone := GetEnvWithDefault("TIME_ZONE", "UTC")
	if _, err := time.LoadLocation(timeZone); err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", timeZone, err)
	}

	config := &Config{
		Environment:           GetEnvWithDefault("APP_ENV", "development"),
		Port:                  port,
		Host:                  GetEnvWithDefault("APP_HOST", "localhost"),
		DBDriver:              driver,
		DBHost:                GetEnvWithDefault("DB_HOST", "localhost"),
		DBPort:                GetEnvWithDefault("DB_PORT", "5432"),
		DBName:                GetEnvWithDefault("DB_NAME", "pizzeria"),
		DBUser:                GetEnvWithDefault("DB_USER", "pizzeria"),
		DBPassword:            GetEnvWithDefault("DB_PASSWORD", "password"),
		DBSSLMode:             GetEnvWithDefault("DB_SSLMODE", "disable"),
		DBPath:                GetEnvWithDefault("DB_PATH", "pizzeria.sqlite"),
		DatabaseURL:           dbURL,
		LogLevel:              GetEnvWithDefault("LOG_LEVEL", "info"),
		LogFile:               GetEnvWithDefault("LOG_FILE", ""),
		JWTSecret:             GetEnvWithDefault("JWT_SECRET", "secret"),
		SessionSecret:         GetEnvWithDefault("SESSION_SECRET", "session-secret"),
		TokenTTL:              time.Duration(GetEnvAsType("TOKEN_TTL_HOURS", 12)) * time.Hour,
		TimeZone:              timeZone,
		CSVPath:               GetEnvWithDefault("CSV_PATH", "pizza_sales.csv"),
		CORSOrigins:           splitList(GetEnvWithDefault("CORS_ORIGINS", "*")),
		CheckoutRatePerMinute: GetEnvAsType("CHECKOUT_RATE_PER_MINUTE", 20),
		SeedMenu:              GetEnvAsType("SEED_MENU", true),
	}
	log.Infof("Configuration loaded: %s", config.String())
	return config, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Helper to get environment with default values
func GetEnvWithDefault(key, defaultValue string) string {
	log.Tracef("Getting environment variable: %s", key)
	value := os.Getenv(key)
	if value == "" {
		log.Debugf("Environment variable %s not set, using default value", key)
		return defaultValue
	}
	return value
}

// GetEnvAsType retrieves an environment variable and converts it to the specified type
// using generic type handling.
func GetEnvAsType[T any](key string, defaultValue T) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result T
	switch any(result).(type) {
	case int:
		intValue, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return any(intValue).(T)
	case string:
		return any(value).(T)
	case bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return any(boolValue).(T)
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return any(d).(T)
	default:
		return defaultValue // Fallback for unsupported types
	}
}
