// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Publish targets
const (
	PublishTargetNone      = "none"
	PublishTargetPostgres  = "postgres"
	PublishTargetSnowflake = "snowflake"
)

// RawFileName is the name the acquired dataset is stored under
const RawFileName = "churn_data.csv"

// Config represents the application configuration
type Config struct {
	// Acquisition
	DatasetID       string
	ArchiveMember   string
	RawDir          string
	KaggleUsername  string
	KaggleKey       string
	KaggleBaseURL   string
	DownloadTimeout time.Duration

	// Stage outputs
	CleanedPath    string
	MetadataPath   string
	AuditPath      string
	EngineeredPath string

	// Feature derivation
	DropIdentifier bool

	// Publishing
	PublishTarget string
	PublishTable  string
	ChunkSize     int
	Postgres      *PostgresConfig
	Snowflake     *SnowflakeConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first if present;
// variables already set in the environment take precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		DatasetID:       getEnv("DATASET_ID", "blastchar/telco-customer-churn"),
		ArchiveMember:   getEnv("DATASET_ARCHIVE_MEMBER", "WA_Fn-UseC_-Telco-Customer-Churn.csv"),
		RawDir:          getEnv("RAW_DATA_DIR", filepath.Join("data", "raw")),
		KaggleUsername:  getEnv("KAGGLE_USERNAME", ""),
		KaggleKey:       getEnv("KAGGLE_KEY", ""),
		KaggleBaseURL:   getEnv("KAGGLE_API_URL", "https://www.kaggle.com/api/v1"),
		DownloadTimeout: time.Duration(getEnvAsInt("DOWNLOAD_TIMEOUT_SECONDS", 120)) * time.Second,

		CleanedPath:    getEnv("CLEANED_DATA_PATH", filepath.Join("data", "processed", "cleaned_telco.csv")),
		MetadataPath:   getEnv("METADATA_PATH", filepath.Join("data", "processed", "column_metadata.csv")),
		AuditPath:      getEnv("CLEANING_AUDIT_PATH", filepath.Join("data", "processed", "cleaning_audit.csv")),
		EngineeredPath: getEnv("ENGINEERED_DATA_PATH", filepath.Join("data", "processed", "engineered_data.csv")),

		DropIdentifier: getEnvAsBool("FEATURES_DROP_IDENTIFIER", true),

		PublishTarget: strings.ToLower(getEnv("PUBLISH_TARGET", PublishTargetNone)),
		PublishTable:  getEnv("PUBLISH_TABLE", "engineered_churn"),
		ChunkSize:     getEnvAsInt("CHUNK_SIZE", 1000),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Load database configuration only for the selected target
	switch cfg.PublishTarget {
	case PublishTargetPostgres:
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	case PublishTargetSnowflake:
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		cfg.Snowflake = snowConfig
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RawPath returns the location of the acquired raw dataset
func (c *Config) RawPath() string {
	return filepath.Join(c.RawDir, RawFileName)
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.DatasetID == "" {
		return errors.New("dataset identifier is required")
	}

	if c.RawDir == "" {
		return errors.New("raw data directory is required")
	}

	if c.CleanedPath == "" || c.MetadataPath == "" || c.EngineeredPath == "" {
		return errors.New("stage output paths are required")
	}

	if c.DownloadTimeout <= 0 {
		return errors.New("download timeout must be positive")
	}

	switch c.PublishTarget {
	case PublishTargetNone:
	case PublishTargetPostgres:
		if c.Postgres == nil {
			return errors.New("postgreSQL configuration is required for publish target postgres")
		}
	case PublishTargetSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required for publish target snowflake")
		}
	default:
		return fmt.Errorf("unknown publish target %q", c.PublishTarget)
	}

	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}

	return nil
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
