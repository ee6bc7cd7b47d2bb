package ingestion

import (
	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
	"github.com/ThiagoRGoveia/hdb-resale/internal/parser"
	"github.com/ThiagoRGoveia/hdb-resale/pkg/checksum"
)

type Writer interface {
	Write(outputPath string, table *models.Table) (string, error)
}

// CSVWriter writes the consolidated table and returns the checksum of the written file.
type CSVWriter struct {
	logger *log.Logger
}

func NewCSVWriter(logger *log.Logger) *CSVWriter {
	return &CSVWriter{
		logger: logger.WithComponent(log.ComponentWriter),
	}
}

func (w *CSVWriter) Write(outputPath string, table *models.Table) (string, error) {
	if err := parser.WriteTable(outputPath, table); err != nil {
		return "", err
	}

	sum, err := checksum.File(outputPath)
	if err != nil {
		return "", err
	}

	w.logger.Info("Wrote consolidated file", log.FieldFile, outputPath, log.FieldRows, table.Len(), log.FieldChecksum, sum)
	return sum, nil
}
