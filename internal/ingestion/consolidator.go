package ingestion

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
	"github.com/ThiagoRGoveia/hdb-resale/internal/parser"
	"github.com/samber/lo"
)

type Consolidator interface {
	Consolidate(files []models.FileInfo) (*models.Table, error)
}

// TableConsolidator stacks the source extracts into one table. The first file
// fixes the column order; later files are realigned to it by name.
type TableConsolidator struct {
	logger      *log.Logger
	dropColumns []string
}

func NewTableConsolidator(logger *log.Logger) *TableConsolidator {
	return &TableConsolidator{
		logger: logger.WithComponent(log.ComponentConsolidator),
		// remaining_lease only exists from 2015 onwards and can be derived from lease_commence_date.
		dropColumns: []string{models.ColumnRemainingLease},
	}
}

func (c *TableConsolidator) Consolidate(files []models.FileInfo) (*models.Table, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files to consolidate")
	}

	var consolidated *models.Table
	for _, file := range files {
		table, err := parser.ReadTable(file.Path)
		if err != nil {
			return nil, &models.AppError{File: file.Path, Row: -1, Message: "failed to load source file", Err: err}
		}

		for _, column := range c.dropColumns {
			if table.DropColumn(column) {
				c.logger.Debug("Dropped column", log.FieldFile, file.Path, "column", column)
			}
		}

		if consolidated == nil {
			consolidated = models.NewTable(slices.Clone(table.Columns))
		}

		rows, err := alignRows(consolidated.Columns, table)
		if err != nil {
			return nil, &models.AppError{File: file.Path, Row: -1, Message: "column mismatch", Err: err}
		}
		consolidated.Rows = append(consolidated.Rows, rows...)

		c.logger.Info("Consolidated source file", log.FieldFile, file.Path, log.FieldRows, table.Len(), "total_rows", consolidated.Len())
	}

	return consolidated, nil
}

// alignRows returns the rows of table with cells ordered as expected.
func alignRows(expected []string, table *models.Table) ([][]string, error) {
	if missing := lo.Without(expected, table.Columns...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrMissingColumn, strings.Join(missing, ", "))
	}
	if extra := lo.Without(table.Columns, expected...); len(extra) > 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrUnexpectedColumn, strings.Join(extra, ", "))
	}
	if len(table.Columns) != len(expected) {
		return nil, fmt.Errorf("duplicate columns in header: %s", strings.Join(table.Columns, ", "))
	}

	if slices.Equal(expected, table.Columns) {
		return table.Rows, nil
	}

	positions := lo.Map(expected, func(column string, _ int) int {
		return table.ColumnIndex(column)
	})
	return lo.Map(table.Rows, func(row []string, _ int) []string {
		return lo.Map(positions, func(pos int, _ int) string {
			return row[pos]
		})
	}), nil
}
