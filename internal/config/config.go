package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Export     ExportConfig
	Processing ProcessingConfig
}

// DatabaseConfig holds database configuration. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// ExportConfig holds CSV export configuration
type ExportConfig struct {
	Dir string
}

// ProcessingConfig holds calculation defaults
type ProcessingConfig struct {
	DefaultGasPPM     float64
	DetectionLimitPPM float64
}

// Load loads configuration from environment variables and .env files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "dev")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("EXPORT_DIR", "exports")
	viper.SetDefault("DEFAULT_GAS_PPM", 61.0)
	viper.SetDefault("DETECTION_LIMIT_PPM", 0.1)

	// Read from .env files based on environment
	env := viper.GetString("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	viper.SetConfigName(".env." + env)
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// Read .env file (ignore error if file doesn't exist)
	_ = viper.ReadInConfig()

	// Environment variables override .env file values
	viper.AutomaticEnv()

	viper.BindEnv("DATABASE_URL")
	viper.BindEnv("PORT")
	viper.BindEnv("ENVIRONMENT")
	viper.BindEnv("ALLOWED_ORIGINS")
	viper.BindEnv("EXPORT_DIR")
	viper.BindEnv("DEFAULT_GAS_PPM")
	viper.BindEnv("DETECTION_LIMIT_PPM")

	var config Config
	config.Database.URL = viper.GetString("DATABASE_URL")
	config.Server.Port = viper.GetString("PORT")
	config.Server.Env = viper.GetString("ENVIRONMENT")
	config.Server.AllowedOrigins = strings.Split(viper.GetString("ALLOWED_ORIGINS"), ",")
	config.Export.Dir = viper.GetString("EXPORT_DIR")
	config.Processing.DefaultGasPPM = viper.GetFloat64("DEFAULT_GAS_PPM")
	config.Processing.DetectionLimitPPM = viper.GetFloat64("DETECTION_LIMIT_PPM")

	return &config, nil
}
