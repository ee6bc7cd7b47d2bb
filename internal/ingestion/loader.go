package ingestion

import (
	"time"

	"github.com/ThiagoRGoveia/hdb-resale/internal/database"
	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
	"github.com/ThiagoRGoveia/hdb-resale/internal/parser"
	"github.com/ThiagoRGoveia/hdb-resale/pkg/checksum"
)

// Loader publishes a written table somewhere other than disk. It reports false
// when the table was already published.
type Loader interface {
	Load(fileName string, fileChecksum string, table *models.Table) (bool, error)
}

type LoaderConfig struct {
	BatchSize int
}

// DBLoader replaces the contents of resale_records with the consolidated table.
// A load is skipped when the most recent successful load has the same output
// checksum, so re-running the pipeline on unchanged inputs does not touch the
// database.
type DBLoader struct {
	config    LoaderConfig
	dbManager database.DBManager
	logger    *log.Logger
	now       func() time.Time
}

func NewDBLoader(dbManager database.DBManager, cfg LoaderConfig, logger *log.Logger) *DBLoader {
	return &DBLoader{
		config:    cfg,
		dbManager: dbManager,
		logger:    logger.WithComponent(log.ComponentLoader),
		now:       time.Now,
	}
}

func (l *DBLoader) Load(fileName string, fileChecksum string, table *models.Table) (bool, error) {
	latest, err := l.dbManager.LatestLoadedChecksum()
	if err != nil {
		return false, err
	}
	if latest == fileChecksum {
		l.logger.Info("Output already loaded, skipping", log.FieldFile, fileName, log.FieldChecksum, fileChecksum)
		return false, nil
	}

	fileID, err := l.dbManager.InsertFileRecord(fileName, l.now(), database.FILE_STATUS_PROCESSING, fileChecksum, table.Len())
	if err != nil {
		return false, err
	}

	err = l.dbManager.ReplaceResaleRecords(func(tx database.ResaleRecordTx) error {
		if err := l.loadRecords(tx, fileID, table); err != nil {
			return err
		}
		return tx.UpdateFileStatus(fileID, database.FILE_STATUS_DONE, nil)
	})
	if err != nil {
		if updateErr := l.dbManager.UpdateFileStatus(fileID, database.FILE_STATUS_FATAL, []string{err.Error()}); updateErr != nil {
			l.logger.Error("Failed to update file status", log.FieldFileID, fileID, log.FieldError, updateErr)
		}
		return false, err
	}

	l.logger.Info("Loaded resale records", log.FieldFileID, fileID, log.FieldRows, table.Len())
	return true, nil
}

func (l *DBLoader) loadRecords(tx database.ResaleRecordTx, fileID int, table *models.Table) error {
	batchSize := l.config.BatchSize
	if batchSize <= 0 {
		batchSize = table.Len()
	}
	records := make([]*models.ResaleRecord, 0, batchSize)
	batch := 0

	flush := func() error {
		if len(records) == 0 {
			return nil
		}
		batch++
		l.logger.Debug("Inserting batch", log.FieldBatch, batch, log.FieldRows, len(records))
		if err := tx.InsertResaleRecords(records); err != nil {
			return &models.AppError{Row: -1, Message: "failed to insert batch of resale records", Err: err}
		}
		records = make([]*models.ResaleRecord, 0, batchSize)
		return nil
	}

	for i, row := range table.Rows {
		record, err := parser.ParseRecord(table.Columns, row)
		if err != nil {
			return &models.AppError{Row: i, Message: "failed to parse record", Err: err, Record: row}
		}
		record.FileID = fileID
		record.CheckSum = checksum.Record(row)

		records = append(records, record)
		if len(records) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}
