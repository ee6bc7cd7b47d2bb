package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ThiagoRGoveia/hdb-resale/internal/database"
	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const csvHeader = "month,town,flat_type,block,street_name,storey_range,floor_area_sqm,flat_model,lease_commence_date,resale_price"
const csvHeaderWithLease = "month,town,flat_type,block,street_name,storey_range,floor_area_sqm,flat_model,lease_commence_date,remaining_lease,resale_price"

type CSVRow struct {
	Month             string
	Town              string
	FlatType          string
	Block             string
	StreetName        string
	StoreyRange       string
	FloorAreaSqm      string
	FlatModel         string
	LeaseCommenceDate string
	RemainingLease    string
	ResalePrice       string
}

func newDefaultCSVRow() CSVRow {
	return CSVRow{
		Month:             "2015-01",
		Town:              "ANG MO KIO",
		FlatType:          "3 ROOM",
		Block:             "174",
		StreetName:        "ANG MO KIO AVE 4",
		StoreyRange:       "07 TO 09",
		FloorAreaSqm:      "60",
		FlatModel:         "Improved",
		LeaseCommenceDate: "1986",
		RemainingLease:    "70",
		ResalePrice:       "255000",
	}
}

func createTestCSVContent(rows []CSVRow, withRemainingLease bool) string {
	var content strings.Builder
	if withRemainingLease {
		content.WriteString(csvHeaderWithLease + "\n")
	} else {
		content.WriteString(csvHeader + "\n")
	}

	writer := csv.NewWriter(&content)

	for _, rowData := range rows {
		row := []string{
			rowData.Month,
			rowData.Town,
			rowData.FlatType,
			rowData.Block,
			rowData.StreetName,
			rowData.StoreyRange,
			rowData.FloorAreaSqm,
			rowData.FlatModel,
			rowData.LeaseCommenceDate,
		}
		if withRemainingLease {
			row = append(row, rowData.RemainingLease)
		}
		row = append(row, rowData.ResalePrice)
		writer.Write(row)
	}
	writer.Flush()

	return content.String()
}

func writeSourceFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func rowsWith(months []string, flatModels []string) []CSVRow {
	rows := make([]CSVRow, len(months))
	for i := range months {
		row := newDefaultCSVRow()
		row.Month = months[i]
		row.FlatModel = flatModels[i]
		rows[i] = row
	}
	return rows
}

// MockDBManager is a mock implementation of the DBManager interface. Work passed
// to ReplaceResaleRecords runs against Tx when the call is set up to return nil.
type MockDBManager struct {
	mock.Mock
	Tx *MockResaleRecordTx
}

func (m *MockDBManager) CreateFileRecordsTable() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDBManager) CreateResaleRecordsTable() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDBManager) CreateResaleRecordIndexes() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDBManager) InsertFileRecord(fileName string, date time.Time, status string, checksum string, rowCount int) (int, error) {
	args := m.Called(fileName, date, status, checksum, rowCount)
	return args.Int(0), args.Error(1)
}

func (m *MockDBManager) UpdateFileStatus(fileID int, status string, errors any) error {
	args := m.Called(fileID, status, errors)
	return args.Error(0)
}

func (m *MockDBManager) LatestLoadedChecksum() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockDBManager) ReplaceResaleRecords(fn func(tx database.ResaleRecordTx) error) error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Tx)
}

type MockResaleRecordTx struct {
	mock.Mock
}

func (m *MockResaleRecordTx) InsertResaleRecords(records []*models.ResaleRecord) error {
	args := m.Called(records)
	return args.Error(0)
}

func (m *MockResaleRecordTx) UpdateFileStatus(fileID int, status string, errors any) error {
	args := m.Called(fileID, status, errors)
	return args.Error(0)
}

type memoryFileRecord struct {
	id       int
	checksum string
	status   string
}

// memoryDBManager keeps both tables in memory. ReplaceResaleRecords stages its
// writes and applies them only when the work function succeeds.
type memoryDBManager struct {
	fileRecords   []*memoryFileRecord
	resaleRecords []*models.ResaleRecord
	// failOnBatch makes the n-th batch of the next replace fail. Zero never fails.
	failOnBatch int
}

func (m *memoryDBManager) CreateFileRecordsTable() error { return nil }
func (m *memoryDBManager) CreateResaleRecordsTable() error { return nil }
func (m *memoryDBManager) CreateResaleRecordIndexes() error { return nil }

func (m *memoryDBManager) InsertFileRecord(fileName string, date time.Time, status string, checksum string, rowCount int) (int, error) {
	record := &memoryFileRecord{id: len(m.fileRecords) + 1, checksum: checksum, status: status}
	m.fileRecords = append(m.fileRecords, record)
	return record.id, nil
}

func (m *memoryDBManager) UpdateFileStatus(fileID int, status string, errors any) error {
	for _, record := range m.fileRecords {
		if record.id == fileID {
			record.status = status
			return nil
		}
	}
	return fmt.Errorf("file record %d not found", fileID)
}

func (m *memoryDBManager) LatestLoadedChecksum() (string, error) {
	for i := len(m.fileRecords) - 1; i >= 0; i-- {
		if m.fileRecords[i].status == database.FILE_STATUS_DONE {
			return m.fileRecords[i].checksum, nil
		}
	}
	return "", nil
}

func (m *memoryDBManager) ReplaceResaleRecords(fn func(tx database.ResaleRecordTx) error) error {
	staged := &memoryTx{failOnBatch: m.failOnBatch, statuses: map[int]string{}}
	if err := fn(staged); err != nil {
		return err
	}

	m.resaleRecords = staged.records
	for fileID, status := range staged.statuses {
		if err := m.UpdateFileStatus(fileID, status, nil); err != nil {
			return err
		}
	}
	return nil
}

func (m *memoryDBManager) statusOf(fileID int) string {
	for _, record := range m.fileRecords {
		if record.id == fileID {
			return record.status
		}
	}
	return ""
}

type memoryTx struct {
	records     []*models.ResaleRecord
	statuses    map[int]string
	batches     int
	failOnBatch int
}

func (t *memoryTx) InsertResaleRecords(records []*models.ResaleRecord) error {
	t.batches++
	if t.batches == t.failOnBatch {
		return errors.New("copy failed")
	}
	t.records = append(t.records, records...)
	return nil
}

func (t *memoryTx) UpdateFileStatus(fileID int, status string, errors any) error {
	t.statuses[fileID] = status
	return nil
}

// MockProcessor is a mock implementation of the Processor interface.
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) ScanForFiles(paths []string) ([]models.FileInfo, error) {
	args := m.Called(paths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FileInfo), args.Error(1)
}

type MockConsolidator struct {
	mock.Mock
}

func (m *MockConsolidator) Consolidate(files []models.FileInfo) (*models.Table, error) {
	args := m.Called(files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

type MockTransformer struct {
	mock.Mock
}

func (m *MockTransformer) Transform(table *models.Table) (*models.Table, error) {
	args := m.Called(table)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) Write(outputPath string, table *models.Table) (string, error) {
	args := m.Called(outputPath, table)
	return args.String(0), args.Error(1)
}

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(fileName string, fileChecksum string, table *models.Table) (bool, error) {
	args := m.Called(fileName, fileChecksum, table)
	return args.Bool(0), args.Error(1)
}
