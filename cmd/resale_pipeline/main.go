package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ThiagoRGoveia/hdb-resale/internal/config"
	"github.com/ThiagoRGoveia/hdb-resale/internal/database"
	"github.com/ThiagoRGoveia/hdb-resale/internal/ingestion"
	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/joho/godotenv"
)

func setup(cfg *config.Config, logger *log.Logger) (*ingestion.IngestionService, func(), error) {
	cleanupFunc := func() {}

	// Without a database the run ends at the output file.
	var loader ingestion.Loader
	if cfg.LoadEnabled() {
		dbpool, err := database.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		dbManager := database.NewPostgresDBManager(context.Background(), dbpool, logger)
		loader = ingestion.NewDBLoader(dbManager, ingestion.LoaderConfig{BatchSize: cfg.DBBatchSize}, logger)
		cleanupFunc = func() {
			dbpool.Close()
		}
	}

	service := ingestion.NewIngestionService(
		ingestion.NewFileProcessor(logger),
		ingestion.NewTableConsolidator(logger),
		ingestion.NewResaleTransformer(logger),
		ingestion.NewCSVWriter(logger),
		loader,
		logger,
	)

	return service, cleanupFunc, nil
}

func main() {
	envErr := godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		log.New(log.DefaultConfig()).Error("Failed to load config", log.FieldError, err)
		os.Exit(1)
	}

	logCfg := log.DefaultConfig()
	logCfg.Level = log.ParseLevel(cfg.LogLevel)
	logger := log.New(logCfg)
	log.SetDefault(logger)

	if envErr != nil {
		logger.Debug("No .env file loaded", log.FieldError, envErr)
	}

	service, cleanupFunc, err := setup(cfg, logger)
	if err != nil {
		logger.Error("Setup failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting resale data pipeline...", "sources", len(cfg.SourceFiles), log.FieldFile, cfg.OutputPath)
	summary, err := service.Execute(cfg.SourcePaths(), cfg.OutputPath)
	cleanupFunc()
	if err != nil {
		logger.Error("Pipeline failed", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Resale data pipeline finished",
		"input_files", summary.InputFiles,
		log.FieldRows, summary.OutputRows,
		log.FieldChecksum, summary.OutputChecksum,
		"loaded", summary.Loaded,
	)
}
