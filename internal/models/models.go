package models

import (
	"time"
)

// Column names shared by every resale extract.
const (
	ColumnMonth             = "month"
	ColumnResaleDate        = "resale_date"
	ColumnTown              = "town"
	ColumnFlatType          = "flat_type"
	ColumnBlock             = "block"
	ColumnStreetName        = "street_name"
	ColumnStoreyRange       = "storey_range"
	ColumnFloorAreaSqm      = "floor_area_sqm"
	ColumnFlatModel         = "flat_model"
	ColumnLeaseCommenceDate = "lease_commence_date"
	ColumnRemainingLease    = "remaining_lease"
	ColumnResalePrice       = "resale_price"
)

// Table is an in-memory CSV: a header plus rows of raw cell text.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

func NewTable(columns []string) *Table {
	return &Table{Columns: columns}
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) != -1
}

// DropColumn removes name from the header and from every row. It reports
// whether the column was present.
func (t *Table) DropColumn(name string) bool {
	idx := t.ColumnIndex(name)
	if idx == -1 {
		return false
	}

	t.Columns = append(t.Columns[:idx:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:idx:idx], row[idx+1:]...)
	}
	return true
}

// FileInfo describes a source extract found by the scanner.
type FileInfo struct {
	Path     string
	Checksum string
}

// ResaleRecord is the typed form of a transformed row, used when loading into the database.
type ResaleRecord struct {
	ResaleDate        time.Time `json:"resale_date"`
	Town              string    `json:"town"`
	FlatType          string    `json:"flat_type"`
	Block             string    `json:"block"`
	StreetName        string    `json:"street_name"`
	StoreyRange       string    `json:"storey_range"`
	FloorAreaSqm      float64   `json:"floor_area_sqm"`
	FlatModel         string    `json:"flat_model"`
	LeaseCommenceDate int       `json:"lease_commence_date"`
	ResalePrice       float64   `json:"resale_price"`
	FileID            int       `json:"file_id,omitempty"`
	CheckSum          string    `json:"checksum,omitempty"`
}

// Summary is what a pipeline run reports back to the caller.
type Summary struct {
	InputFiles     int
	InputRows      int
	OutputRows     int
	OutputPath     string
	OutputChecksum string
	Loaded         bool
}
