package ingestion

import (
	"fmt"
	"time"

	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
)

type IngestionService struct {
	fileProcessor Processor
	consolidator  Consolidator
	transformer   Transformer
	writer        Writer
	loader        Loader
	logger        *log.Logger
}

// NewIngestionService wires the pipeline steps. loader may be nil, in which case
// the run ends once the output file is written.
func NewIngestionService(processor Processor, consolidator Consolidator, transformer Transformer, writer Writer, loader Loader, logger *log.Logger) *IngestionService {
	return &IngestionService{
		fileProcessor: processor,
		consolidator:  consolidator,
		transformer:   transformer,
		writer:        writer,
		loader:        loader,
		logger:        logger,
	}
}

// Execute runs the pipeline once, sequentially. Any failing step aborts the run.
func (h *IngestionService) Execute(sourcePaths []string, outputPath string) (*models.Summary, error) {
	startTime := time.Now()

	// Step 1: Make sure every extract is present before reading any of them.
	h.logger.Info("Scanning source files...", log.FieldStep, 1)
	fileInfos, err := h.fileProcessor.ScanForFiles(sourcePaths)
	if err != nil {
		return nil, fmt.Errorf("failed to scan files: %w", err)
	}

	// Step 2: Stack the extracts into one table, dropping remaining_lease.
	h.logger.Info("Consolidating source files...", log.FieldStep, 2)
	consolidated, err := h.consolidator.Consolidate(fileInfos)
	if err != nil {
		return nil, fmt.Errorf("failed to consolidate files: %w", err)
	}

	// Step 3: month -> resale_date, flat_model -> upper case.
	h.logger.Info("Transforming consolidated table...", log.FieldStep, 3)
	transformed, err := h.transformer.Transform(consolidated)
	if err != nil {
		return nil, fmt.Errorf("failed to transform table: %w", err)
	}
	if transformed.Len() != consolidated.Len() {
		return nil, fmt.Errorf("row count changed during transform: %d in, %d out", consolidated.Len(), transformed.Len())
	}

	// Step 4: Write the output, overwriting any previous run.
	h.logger.Info("Writing output file...", log.FieldStep, 4, log.FieldFile, outputPath)
	outputChecksum, err := h.writer.Write(outputPath, transformed)
	if err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	summary := &models.Summary{
		InputFiles:     len(fileInfos),
		InputRows:      consolidated.Len(),
		OutputRows:     transformed.Len(),
		OutputPath:     outputPath,
		OutputChecksum: outputChecksum,
	}

	// Step 5: Optionally publish the output to the database.
	if h.loader != nil {
		h.logger.Info("Loading output into database...", log.FieldStep, 5)
		loaded, err := h.loader.Load(outputPath, outputChecksum, transformed)
		if err != nil {
			return nil, fmt.Errorf("failed to load output: %w", err)
		}
		summary.Loaded = loaded
	}

	h.logger.Info("Pipeline finished",
		log.FieldRows, summary.OutputRows,
		log.FieldChecksum, summary.OutputChecksum,
		log.FieldDuration, time.Since(startTime).String(),
	)
	return summary, nil
}
