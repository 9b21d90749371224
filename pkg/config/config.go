// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Label source backends
const (
	SourceCSV       = "csv"
	SourceSnowflake = "snowflake"
)

// ImageCLEFmed 2009 file layout, relative to the data directory
const (
	DefaultTrainLabels = "ImageCLEFmed2009_train_codes.02.csv"
	DefaultTrainImages = "ImageCLEFmed2009_train.02/ImageCLEFmed2009_train.02"
	DefaultTestLabels  = "ImageCLEFmed2009_test_codes.03.csv"
	DefaultTestImages  = "ImageCLEFmed2009_test.03/ImageCLEFmed2009_test.03"
)

// Config represents the application configuration
type Config struct {
	Dataset DatasetConfig

	// Label source backend, SourceCSV or SourceSnowflake
	Source string `env:"IRMA_SOURCE"`

	// Database connections, nil unless the backend is in use
	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig

	// Outputs
	ExportPath string // CSV export of the merged dataset, empty to skip
	Persist    bool   // Write the dataset to PostgreSQL

	// Processing settings
	BatchSize      int `env:"BATCH_SIZE" validate:"gt=0"`
	WorkerPoolSize int `env:"WORKER_POOL_SIZE" validate:"gte=0"` // 0 means use runtime.NumCPU()

	// Logging
	LogLevel  string `env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" validate:"omitempty,oneof=json console"`
}

// DatasetConfig locates the label tables and image roots
type DatasetConfig struct {
	DataDir     string
	TrainLabels string // Label file, relative to DataDir unless absolute
	TrainImages string // Image root, relative to DataDir unless absolute
	TestLabels  string
	TestImages  string
	Delimiter   rune

	// Warehouse tables used when Source is SourceSnowflake
	SnowflakeTrainTable string
	SnowflakeTestTable  string
}

// LoadConfig loads configuration from environment variables. Each existing
// env file is loaded first; variables already set in the environment win.
func LoadConfig(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Dataset: DatasetConfig{
			DataDir:             getEnv("IRMA_DATA_DIR", "data"),
			TrainLabels:         getEnv("IRMA_TRAIN_LABELS", DefaultTrainLabels),
			TrainImages:         getEnv("IRMA_TRAIN_IMAGES", DefaultTrainImages),
			TestLabels:          getEnv("IRMA_TEST_LABELS", DefaultTestLabels),
			TestImages:          getEnv("IRMA_TEST_IMAGES", DefaultTestImages),
			Delimiter:           getEnvAsRune("IRMA_LABEL_DELIMITER", ';'),
			SnowflakeTrainTable: getEnv("IRMA_SNOWFLAKE_TRAIN_TABLE", "IRMA_TRAIN_CODES"),
			SnowflakeTestTable:  getEnv("IRMA_SNOWFLAKE_TEST_TABLE", "IRMA_TEST_CODES"),
		},
		Source:         strings.ToLower(getEnv("IRMA_SOURCE", SourceCSV)),
		ExportPath:     getEnv("IRMA_EXPORT_PATH", ""),
		Persist:        getEnvAsBool("IRMA_PERSIST", false),
		BatchSize:      getEnvAsInt("BATCH_SIZE", 1000),
		WorkerPoolSize: getEnvAsInt("WORKER_POOL_SIZE", 0),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	if cfg.Source == SourceSnowflake {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load Snowflake configuration: %w", err)
		}
		cfg.Snowflake = snowConfig
	}

	if cfg.Persist {
		if err := cfg.loadPostgres(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnablePersist turns on PostgreSQL persistence for an already loaded
// configuration, reading the POSTGRES_* settings if they are not loaded yet.
func (c *Config) EnablePersist() error {
	if c.Postgres == nil {
		if err := c.loadPostgres(); err != nil {
			return err
		}
	}
	c.Persist = true
	return c.Validate()
}

func (c *Config) loadPostgres() error {
	pgConfig, err := LoadPostgresConfig()
	if err != nil {
		return fmt.Errorf("failed to load PostgreSQL configuration: %w", err)
	}
	c.Postgres = pgConfig
	return nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.Dataset.TrainLabels == "" || c.Dataset.TestLabels == "" {
			return errors.New("train and test label files are required")
		}
	case SourceSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required for the snowflake source")
		}
		if c.Dataset.SnowflakeTrainTable == "" || c.Dataset.SnowflakeTestTable == "" {
			return errors.New("train and test snowflake tables are required")
		}
	default:
		return fmt.Errorf("unknown label source %q", c.Source)
	}

	if c.Persist && c.Postgres == nil {
		return errors.New("postgreSQL configuration is required when persisting")
	}

	return validateFields(c)
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	seconds := getEnvAsInt(key, -1)
	if seconds < 0 {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsRune(key string, defaultValue rune) rune {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if valueStr == `\t` {
		return '\t'
	}
	return []rune(valueStr)[0]
}
