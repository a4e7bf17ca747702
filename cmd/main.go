package main

import (
	"io"
	"os"

	"github.com/franciscosanchezn/gin-pizzeria/internal/config"
	"github.com/franciscosanchezn/gin-pizzeria/internal/database"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

// @title Pizzeria API
// @version 1.0
// @description Menu, kitchen and analytics API of the pizzeria.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pizzeria",
		Short:         "Pizzeria shop, kitchen and analytics server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newServeCmd(), newImportCmd(), newStaffCmd(), newClientCmd())
	return root
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter. The level follows the
// environment unless LOG_LEVEL is set; LOG_FILE adds a rotated file output.
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})
	switch conf.Environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if config.GetEnvWithDefault("LOG_LEVEL", "") != "" {
		if level, err := log.ParseLevel(conf.LogLevel); err == nil {
			log.SetLevel(level)
		} else {
			log.WithError(err).Warn("Ignoring invalid LOG_LEVEL")
		}
	}
	if conf.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   conf.LogFile,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}))
	}
	database.SetLogger(log.StandardLogger())
}

// bootstrap loads .env, the configuration and the logger shared by every command
func bootstrap() (*config.Config, error) {
	loadDotenvFile()
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	setUpLogger(conf)
	return conf, nil
}

// setupDatabase connects and migrates the schema
func setupDatabase(conf *config.Config) (*gorm.DB, error) {
	db, err := database.InitDatabase(database.FromAppConfig(conf))
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
