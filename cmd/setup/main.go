package main

import (
	"context"
	"os"

	"github.com/ThiagoRGoveia/hdb-resale/internal/database"
	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentSetup)
	logger.Info("Starting database setup...")

	if err := godotenv.Load(); err != nil {
		logger.Warn("Could not load .env file", log.FieldError, err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Error("DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	dbpool, err := database.ConnectDB(dbURL)
	if err != nil {
		logger.Error("Unable to connect to database", log.FieldError, err)
		os.Exit(1)
	}
	defer dbpool.Close()

	dbManager := database.NewPostgresDBManager(context.Background(), dbpool, logger)

	steps := []struct {
		name string
		run  func() error
	}{
		{"file_records table", dbManager.CreateFileRecordsTable},
		{"resale_records table", dbManager.CreateResaleRecordsTable},
		{"resale_records indexes", dbManager.CreateResaleRecordIndexes},
	}

	for _, step := range steps {
		logger.Info("Creating " + step.name + "...")
		if err := step.run(); err != nil {
			logger.Error("Setup step failed", log.FieldStep, step.name, log.FieldError, err)
			dbpool.Close()
			os.Exit(1)
		}
	}

	logger.Info("Database setup finished successfully.")
}
