package ingestion

import (
	"fmt"
	"strings"

	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
	"github.com/ThiagoRGoveia/hdb-resale/internal/parser"
	"github.com/samber/lo"
)

type Transformer interface {
	Transform(table *models.Table) (*models.Table, error)
}

// ResaleTransformer replaces month with a leading resale_date column and
// upper-cases flat_model. The input table is left untouched.
type ResaleTransformer struct {
	logger *log.Logger
}

func NewResaleTransformer(logger *log.Logger) *ResaleTransformer {
	return &ResaleTransformer{
		logger: logger.WithComponent(log.ComponentTransformer),
	}
}

func (t *ResaleTransformer) Transform(table *models.Table) (*models.Table, error) {
	monthIdx := table.ColumnIndex(models.ColumnMonth)
	if monthIdx == -1 {
		return nil, fmt.Errorf("%w: %s", models.ErrMissingColumn, models.ColumnMonth)
	}
	flatModelIdx := table.ColumnIndex(models.ColumnFlatModel)
	if flatModelIdx == -1 {
		return nil, fmt.Errorf("%w: %s", models.ErrMissingColumn, models.ColumnFlatModel)
	}

	columns := append([]string{models.ColumnResaleDate}, lo.Without(table.Columns, models.ColumnMonth)...)
	transformed := models.NewTable(columns)
	transformed.Rows = make([][]string, 0, table.Len())

	for i, row := range table.Rows {
		resaleDate, err := parser.ParseResaleMonth(row[monthIdx])
		if err != nil {
			return nil, &models.AppError{Row: i, Message: "failed to parse month", Err: err, Record: row}
		}

		out := make([]string, 0, len(columns))
		out = append(out, parser.FormatResaleDate(resaleDate))
		for j, cell := range row {
			switch j {
			case monthIdx:
				continue
			case flatModelIdx:
				cell = strings.ToUpper(cell)
			}
			out = append(out, cell)
		}
		transformed.Rows = append(transformed.Rows, out)
	}

	t.logger.Info("Transformed table", log.FieldRows, transformed.Len(), log.FieldColumns, len(columns))
	return transformed, nil
}
