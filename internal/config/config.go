package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ingest   IngestConfig
	Scraper  ScraperConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	RateLimitRPM int // requests per client per minute
}

type DatabaseConfig struct {
	Path string
}

type IngestConfig struct {
	DataDir string
}

type ScraperConfig struct {
	MaxRetries int
	PageLimit  int
	OutputDir  string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("RATE_LIMIT_RPM", 300)
	viper.SetDefault("DB_PATH", "book_database.db")
	viper.SetDefault("DATA_DIR", "data")
	viper.SetDefault("SCRAPER_MAX_RETRIES", 3)
	viper.SetDefault("SCRAPER_PAGE_LIMIT", 50)
	viper.SetDefault("SCRAPER_OUTPUT_DIR", "data")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Env:          viper.GetString("SERVER_ENV"),
			RateLimitRPM: viper.GetInt("RATE_LIMIT_RPM"),
		},
		Database: DatabaseConfig{
			Path: viper.GetString("DB_PATH"),
		},
		Ingest: IngestConfig{
			DataDir: viper.GetString("DATA_DIR"),
		},
		Scraper: ScraperConfig{
			MaxRetries: viper.GetInt("SCRAPER_MAX_RETRIES"),
			PageLimit:  viper.GetInt("SCRAPER_PAGE_LIMIT"),
			OutputDir:  viper.GetString("SCRAPER_OUTPUT_DIR"),
		},
	}
}
