package ingestion

import (
	"fmt"
	"os"

	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
	"github.com/ThiagoRGoveia/hdb-resale/pkg/checksum"
)

// Processor resolves the source extracts before anything is read.
type Processor interface {
	ScanForFiles(paths []string) ([]models.FileInfo, error)
}

// FileProcessor checks that every source extract exists and fingerprints it.
type FileProcessor struct {
	logger *log.Logger
}

func NewFileProcessor(logger *log.Logger) *FileProcessor {
	return &FileProcessor{
		logger: logger.WithComponent(log.ComponentScanner),
	}
}

// ScanForFiles returns one FileInfo per path, in the given order. A missing or
// unreadable path fails the whole scan.
func (fp *FileProcessor) ScanForFiles(paths []string) ([]models.FileInfo, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no source files configured")
	}

	fileInfos := make([]models.FileInfo, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("source file %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source file %s is a directory", path)
		}

		sum, err := checksum.File(path)
		if err != nil {
			return nil, err
		}

		fp.logger.Debug("Found source file", log.FieldFile, path, log.FieldChecksum, sum)
		fileInfos = append(fileInfos, models.FileInfo{Path: path, Checksum: sum})
	}

	fp.logger.Info("Scanned source files", "count", len(fileInfos))
	return fileInfos, nil
}
