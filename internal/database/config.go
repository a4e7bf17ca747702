package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-pizzeria/internal/config"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	// Driver specifies the database driver (postgres, mysql, sqlite)
	Driver string

	// Server-specific configuration (postgres, mysql)
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// URL overrides the DSN built from the fields above
	URL string

	// SQLite-specific configuration
	Path string
}

// FromAppConfig copies the database settings out of the application configuration
func FromAppConfig(c *config.Config) DatabaseConfig {
	return DatabaseConfig{
		Driver:   c.DBDriver,
		Host:     c.DBHost,
		Port:     c.DBPort,
		User:     c.DBUser,
		Password: c.DBPassword,
		Name:     c.DBName,
		SSLMode:  c.DBSSLMode,
		URL:      c.DatabaseURL,
		Path:     c.DBPath,
	}
}

// String returns a string representation with sensitive data masked
func (c *DatabaseConfig) String() string {
	return fmt.Sprintf("DatabaseConfig{Driver: %s, Host: %s, Port: %s, User: %s, Password: [REDACTED], Name: %s, SSLMode: %s, Path: %s}",
		c.Driver, c.Host, c.Port, c.User, c.Name, c.SSLMode, c.Path)
}

// DSN builds a Data Source Name string based on the driver
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" && c.Driver != "sqlite" && c.Driver != "" {
		return c.URL
	}
	switch c.Driver {
	case "postgres", "postgresql":
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case "sqlite", "":
		return c.Path
	default:
		return ""
	}
}
