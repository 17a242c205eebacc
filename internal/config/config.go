// Package config loads server configuration from the environment, with
// an optional .env file.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig
	Schema   SchemaConfig
	Snapshot SnapshotConfig
	Log      LogConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port string
	Mode string
}

// SchemaConfig locates the YAML schema file seeded at startup.
type SchemaConfig struct {
	FilePath string
}

// SnapshotConfig configures repository snapshot persistence.
type SnapshotConfig struct {
	FilePath   string
	SaveOnExit bool
}

// LogConfig configures logging.
type LogConfig struct {
	Level string
}

var globalConfig *Config

// Load reads configuration from the environment. A .env file is applied
// first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Mode: getEnv("SERVER_MODE", "debug"),
		},
		Schema: SchemaConfig{
			FilePath: getEnv("SCHEMA_FILE_PATH", "./schema/schema.yaml"),
		},
		Snapshot: SnapshotConfig{
			FilePath:   getEnv("SNAPSHOT_FILE_PATH", ""),
			SaveOnExit: getEnvBool("SNAPSHOT_SAVE_ON_EXIT", false),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	globalConfig = config
	return config, nil
}

// Get returns the loaded global configuration.
func Get() *Config {
	if globalConfig == nil {
		log.Fatal("Config not loaded. Call config.Load() first.")
	}
	return globalConfig
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolValue
}
