package database

import (
	"time"

	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
)

const (
	FILE_STATUS_PROCESSING = "PROCESSING"
	FILE_STATUS_DONE       = "DONE"
	FILE_STATUS_FATAL      = "FATAL"
)

// DBManager is the storage used to publish a consolidated table.
type DBManager interface {
	CreateFileRecordsTable() error
	CreateResaleRecordsTable() error
	CreateResaleRecordIndexes() error
	InsertFileRecord(fileName string, date time.Time, status string, checksum string, rowCount int) (int, error)
	UpdateFileStatus(fileID int, status string, errors any) error
	// LatestLoadedChecksum returns the checksum of the most recent DONE load, or
	// an empty string when nothing has been loaded yet.
	LatestLoadedChecksum() (string, error)
	// ReplaceResaleRecords empties resale_records and runs fn in the same
	// transaction. Nothing is committed unless fn returns nil.
	ReplaceResaleRecords(fn func(tx ResaleRecordTx) error) error
}

// ResaleRecordTx is the part of DBManager usable inside ReplaceResaleRecords.
type ResaleRecordTx interface {
	InsertResaleRecords(records []*models.ResaleRecord) error
	UpdateFileStatus(fileID int, status string, errors any) error
}
