package parser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
)

const (
	MonthLayout      = "2006-01"
	ResaleDateLayout = "2006-01-02"

	// monthInputLayout takes the month with or without a leading zero.
	monthInputLayout = "2006-1"
)

const utf8BOM = "\ufeff"

// ReadTable loads a comma separated file with a header row. Rows with a different
// number of fields than the header are rejected.
func ReadTable(filePath string) (*models.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	table, err := DecodeTable(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	return table, nil
}

func DecodeTable(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(bufio.NewReader(r))

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, models.ErrEmptyFile
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
		if header[i] == "" {
			return nil, fmt.Errorf("header column %d is blank", i)
		}
	}

	table := models.NewTable(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", table.Len(), err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// WriteTable writes the table to filePath, replacing any existing file. The first
// column is an unnamed zero-based row index.
func WriteTable(filePath string, table *models.Table) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", filePath, err)
	}

	if err := EncodeTable(file, table); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", filePath, err)
	}
	return nil
}

func EncodeTable(w io.Writer, table *models.Table) error {
	buffered := bufio.NewWriter(w)
	writer := csv.NewWriter(buffered)

	record := make([]string, len(table.Columns)+1)
	copy(record[1:], table.Columns)
	if err := writer.Write(record); err != nil {
		return err
	}

	for i, row := range table.Rows {
		record[0] = strconv.Itoa(i)
		copy(record[1:], row)
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buffered.Flush()
}

// ParseResaleMonth turns a "YYYY-MM" value into the first day of that month, UTC.
// "YYYY-M" is accepted too.
func ParseResaleMonth(value string) (time.Time, error) {
	month, err := time.Parse(monthInputLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM", models.ErrInvalidMonth, value)
	}
	return month, nil
}

func FormatResaleDate(date time.Time) string {
	return date.Format(ResaleDateLayout)
}

// ParseRecord builds a typed record from a transformed row. columns must be the
// header of the transformed table.
func ParseRecord(columns []string, record []string) (*models.ResaleRecord, error) {
	value := func(name string) (string, error) {
		for i, col := range columns {
			if col == name {
				return record[i], nil
			}
		}
		return "", fmt.Errorf("%w: %s", models.ErrMissingColumn, name)
	}

	fields := make(map[string]string, len(columns))
	for _, name := range []string{
		models.ColumnResaleDate, models.ColumnTown, models.ColumnFlatType, models.ColumnBlock,
		models.ColumnStreetName, models.ColumnStoreyRange, models.ColumnFloorAreaSqm,
		models.ColumnFlatModel, models.ColumnLeaseCommenceDate, models.ColumnResalePrice,
	} {
		v, err := value(name)
		if err != nil {
			return nil, err
		}
		fields[name] = v
	}

	resaleDate, err := time.Parse(ResaleDateLayout, fields[models.ColumnResaleDate])
	if err != nil {
		return nil, fmt.Errorf("invalid resale date %q: %w", fields[models.ColumnResaleDate], err)
	}

	floorArea, err := strconv.ParseFloat(fields[models.ColumnFloorAreaSqm], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid floor area %q: %w", fields[models.ColumnFloorAreaSqm], err)
	}

	leaseCommence, err := strconv.Atoi(fields[models.ColumnLeaseCommenceDate])
	if err != nil {
		return nil, fmt.Errorf("invalid lease commence date %q: %w", fields[models.ColumnLeaseCommenceDate], err)
	}

	price, err := strconv.ParseFloat(fields[models.ColumnResalePrice], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid resale price %q: %w", fields[models.ColumnResalePrice], err)
	}

	return &models.ResaleRecord{
		ResaleDate:        resaleDate,
		Town:              fields[models.ColumnTown],
		FlatType:          fields[models.ColumnFlatType],
		Block:             fields[models.ColumnBlock],
		StreetName:        fields[models.ColumnStreetName],
		StoreyRange:       fields[models.ColumnStoreyRange],
		FloorAreaSqm:      floorArea,
		FlatModel:         fields[models.ColumnFlatModel],
		LeaseCommenceDate: leaseCommence,
		ResalePrice:       price,
	}, nil
}
