// Package config provides configuration management for SectorWire.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration.
type Config struct {
	// Ollama settings
	OllamaEndpoint string // OpenAI-compatible endpoint (.../v1)
	OllamaHost     string // native API root, used for health checks
	Model          string
	RequestTimeout time.Duration

	// Pipeline settings
	InputFile string
	OutputDir string
	BatchSize int

	// MongoDB settings
	MongoEnabled bool
	MongoURI     string
	MongoDB      string

	// Server settings
	HTTPAddr string
	Debug    bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		// Ollama
		OllamaEndpoint: getEnv("OLLAMA_ENDPOINT", "http://localhost:11434/v1"),
		OllamaHost:     getEnv("OLLAMA_HOST", "http://localhost:11434"),
		Model:          getEnv("OLLAMA_MODEL", "gemma3:1b"),
		RequestTimeout: getEnvDuration("OLLAMA_TIMEOUT", 30*time.Minute),

		// Pipeline
		InputFile: getEnv("SECTORS_FILE", "sectors_summary.json"),
		OutputDir: getEnv("OUTPUT_DIR", "."),
		BatchSize: getEnvInt("BATCH_SIZE", 3),

		// MongoDB
		MongoEnabled: getEnvBool("MONGO_ENABLED", false),
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "sectorwire"),

		// Server
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Debug:    getEnvBool("DEBUG", false),
	}

	return cfg, nil
}

// Validate checks if required configuration is present.
func (c *Config) Validate() error {
	if c.Model == "" {
		log.Warn().Msg("OLLAMA_MODEL not set, using server default")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
