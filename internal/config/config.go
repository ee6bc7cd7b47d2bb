package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultDataDir    = "ResaleFlatPrices"
	DefaultOutputPath = "resale_data.csv"
	DefaultBatchSize  = 5000
)

// DefaultSourceFiles are the resale extracts published on data.gov.sg, oldest first.
// The last one keeps growing and should be refreshed from the portal before a run.
var DefaultSourceFiles = []string{
	"Resale Flat Prices (Based on Approval Date), 1990 - 1999.csv",
	"Resale Flat Prices (Based on Approval Date), 2000 - Feb 2012.csv",
	"Resale Flat Prices (Based on Registration Date), From Mar 2012 to Dec 2014.csv",
	"Resale Flat Prices (Based on Registration Date), From Jan 2015 to Dec 2016.csv",
	"Resale flat prices based on registration date from Jan-2017 onwards.csv",
}

type Config struct {
	DataDir     string
	SourceFiles []string
	OutputPath  string

	// DatabaseURL is optional. When empty the consolidated table is only written to disk.
	DatabaseURL string
	DBBatchSize int

	LogLevel string
}

func New() (*Config, error) {
	cfg := &Config{
		DataDir:     getEnv("RESALE_DATA_DIR", DefaultDataDir),
		SourceFiles: append([]string(nil), DefaultSourceFiles...),
		OutputPath:  getEnv("RESALE_OUTPUT_PATH", DefaultOutputPath),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBBatchSize: DefaultBatchSize,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	var err error
	cfg.DBBatchSize, err = getEnvAsInt("DB_BATCH_SIZE", cfg.DBBatchSize)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if len(c.SourceFiles) == 0 {
		return fmt.Errorf("at least one source file is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if c.DBBatchSize <= 0 {
		return fmt.Errorf("invalid DB batch size %d: must be positive", c.DBBatchSize)
	}
	return nil
}

// SourcePaths returns the source files joined onto DataDir, in consolidation order.
func (c *Config) SourcePaths() []string {
	paths := make([]string, len(c.SourceFiles))
	for i, name := range c.SourceFiles {
		paths[i] = filepath.Join(c.DataDir, name)
	}
	return paths
}

func (c *Config) LoadEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}
