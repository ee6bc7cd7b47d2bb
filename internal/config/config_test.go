package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"RESALE_DATA_DIR", "RESALE_OUTPUT_PATH", "DATABASE_URL", "DB_BATCH_SIZE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestNew(t *testing.T) {
	t.Run("Defaults match the published extracts", func(t *testing.T) {
		clearEnv(t)

		cfg, err := New()
		require.NoError(t, err)

		assert.Equal(t, DefaultDataDir, cfg.DataDir)
		assert.Equal(t, DefaultOutputPath, cfg.OutputPath)
		assert.Equal(t, DefaultBatchSize, cfg.DBBatchSize)
		assert.False(t, cfg.LoadEnabled())
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Len(t, cfg.SourcePaths(), 5)
		assert.Equal(t,
			filepath.Join("ResaleFlatPrices", "Resale Flat Prices (Based on Approval Date), 1990 - 1999.csv"),
			cfg.SourcePaths()[0])
		assert.Equal(t,
			filepath.Join("ResaleFlatPrices", "Resale flat prices based on registration date from Jan-2017 onwards.csv"),
			cfg.SourcePaths()[4])
	})

	t.Run("Environment overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("RESALE_DATA_DIR", "/data/hdb")
		t.Setenv("RESALE_OUTPUT_PATH", "/out/all.csv")
		t.Setenv("DATABASE_URL", "postgres://localhost/hdb")
		t.Setenv("DB_BATCH_SIZE", "250")
		t.Setenv("LOG_LEVEL", "debug")

		cfg, err := New()
		require.NoError(t, err)

		assert.Equal(t, "/data/hdb", cfg.DataDir)
		assert.Equal(t, "/out/all.csv", cfg.OutputPath)
		assert.Equal(t, 250, cfg.DBBatchSize)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.True(t, cfg.LoadEnabled())
		assert.Equal(t, filepath.Join("/data/hdb", DefaultSourceFiles[1]), cfg.SourcePaths()[1])
	})

	t.Run("Invalid batch size", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DB_BATCH_SIZE", "lots")

		_, err := New()
		assert.EqualError(t, err, "invalid value for DB_BATCH_SIZE: expected an integer, got 'lots'")
	})

	t.Run("Defaults are not shared between configs", func(t *testing.T) {
		clearEnv(t)

		cfg, err := New()
		require.NoError(t, err)
		cfg.SourceFiles[0] = "changed.csv"

		assert.NotEqual(t, "changed.csv", DefaultSourceFiles[0])
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{DataDir: "d", SourceFiles: []string{"a.csv"}, OutputPath: "out.csv", DBBatchSize: 10}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		errorString string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, errorString: "data directory cannot be empty"},
		{name: "no sources", mutate: func(c *Config) { c.SourceFiles = nil }, errorString: "at least one source file is required"},
		{name: "empty output", mutate: func(c *Config) { c.OutputPath = "" }, errorString: "output path cannot be empty"},
		{name: "zero batch", mutate: func(c *Config) { c.DBBatchSize = 0 }, errorString: "invalid DB batch size 0: must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			cfg.SourceFiles = append([]string(nil), valid.SourceFiles...)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.errorString)
		})
	}
}
