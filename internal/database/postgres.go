package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThiagoRGoveia/hdb-resale/internal/log"
	"github.com/ThiagoRGoveia/hdb-resale/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resaleRecordsTable = "resale_records"

// The column order here must match resaleRecordValues.
var resaleRecordColumns = []string{
	"resale_date", "town", "flat_type", "block", "street_name", "storey_range",
	"floor_area_sqm", "flat_model", "lease_commence_date", "resale_price", "file_id", "checksum",
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func ConnectDB(connStr string) (*pgxpool.Pool, error) {
	dbpool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	return dbpool, nil
}

type PostgresDBManager struct {
	dbpool *pgxpool.Pool
	ctx    context.Context
	logger *log.Logger
}

func NewPostgresDBManager(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) *PostgresDBManager {
	return &PostgresDBManager{dbpool: pool, ctx: ctx, logger: logger.WithComponent(log.ComponentDatabase)}
}

func (m *PostgresDBManager) CreateFileRecordsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS file_records (
		id SERIAL PRIMARY KEY,
		file_name VARCHAR(255) NOT NULL,
		processed_at TIMESTAMP NOT NULL,
		status VARCHAR(50) NOT NULL CHECK (status IN ('DONE', 'PROCESSING', 'FATAL')),
		checksum VARCHAR(64),
		row_count INTEGER,
		errors jsonb
	);`

	_, err := m.dbpool.Exec(m.ctx, query)
	if err != nil {
		return fmt.Errorf("error creating file_records table: %v", err)
	}

	return nil
}

// CreateResaleRecordsTable creates the table holding the latest consolidated output.
// It is replaced wholesale on every load, so no uniqueness is enforced.
func (m *PostgresDBManager) CreateResaleRecordsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS resale_records (
		id BIGSERIAL PRIMARY KEY,
		resale_date DATE NOT NULL,
		town VARCHAR(100) NOT NULL,
		flat_type VARCHAR(50) NOT NULL,
		block VARCHAR(20) NOT NULL,
		street_name VARCHAR(255) NOT NULL,
		storey_range VARCHAR(20) NOT NULL,
		floor_area_sqm NUMERIC(8, 2) NOT NULL,
		flat_model VARCHAR(100) NOT NULL,
		lease_commence_date INTEGER NOT NULL,
		resale_price NUMERIC(14, 2) NOT NULL,
		file_id INTEGER REFERENCES file_records (id),
		checksum VARCHAR(64) NOT NULL
	);`

	_, err := m.dbpool.Exec(m.ctx, query)
	if err != nil {
		return fmt.Errorf("error creating resale_records table: %v", err)
	}

	return nil
}

func (m *PostgresDBManager) CreateResaleRecordIndexes() error {
	return createResaleRecordIndexes(m.ctx, m.dbpool)
}

func createResaleRecordIndexes(ctx context.Context, db execer) error {
	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_resale_records_town_date ON resale_records (town, resale_date) INCLUDE (flat_type, resale_price);`,
		`CREATE INDEX IF NOT EXISTS idx_resale_records_flat_model ON resale_records (flat_model);`,
	}

	for _, query := range queries {
		_, err := db.Exec(ctx, query)
		if err != nil {
			return fmt.Errorf("error creating index: %v", err)
		}
	}

	return nil
}

func dropResaleRecordIndexes(ctx context.Context, db execer) error {
	queries := []string{
		`DROP INDEX IF EXISTS idx_resale_records_town_date`,
		`DROP INDEX IF EXISTS idx_resale_records_flat_model`,
	}

	for _, query := range queries {
		_, err := db.Exec(ctx, query)
		if err != nil {
			return fmt.Errorf("error dropping index: %v", err)
		}
	}

	return nil
}

func (m *PostgresDBManager) InsertFileRecord(fileName string, date time.Time, status string, checksum string, rowCount int) (int, error) {
	query := `
	INSERT INTO file_records (file_name, processed_at, status, checksum, row_count)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id;`

	var fileID int
	err := m.dbpool.QueryRow(m.ctx, query, fileName, date, status, checksum, rowCount).Scan(&fileID)
	if err != nil {
		return 0, fmt.Errorf("error inserting file record: %v", err)
	}

	return fileID, nil
}

func (m *PostgresDBManager) UpdateFileStatus(fileID int, status string, errors any) error {
	return updateFileStatus(m.ctx, m.dbpool, fileID, status, errors)
}

func updateFileStatus(ctx context.Context, db execer, fileID int, status string, errors any) error {
	query := `
	UPDATE file_records
	SET status = $1,
		errors = $2
	WHERE id = $3;`

	_, err := db.Exec(ctx, query, status, errors, fileID)
	if err != nil {
		return fmt.Errorf("error updating file status: %v", err)
	}

	return nil
}

func (m *PostgresDBManager) LatestLoadedChecksum() (string, error) {
	query := `
	SELECT COALESCE(checksum, '')
	FROM file_records
	WHERE status = 'DONE'
	ORDER BY processed_at DESC, id DESC
	LIMIT 1;`

	var checksum string

	err := m.dbpool.QueryRow(m.ctx, query).Scan(&checksum)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("error finding latest loaded checksum: %v", err)
	}

	return checksum, nil
}

// ReplaceResaleRecords drops the indexes, truncates the table and runs fn inside a
// single transaction. The indexes are rebuilt before commit, and a rollback
// restores both the previous rows and the indexes.
func (m *PostgresDBManager) ReplaceResaleRecords(fn func(tx ResaleRecordTx) error) error {
	tx, err := m.dbpool.Begin(m.ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %v", err)
	}
	defer tx.Rollback(m.ctx)

	if err := dropResaleRecordIndexes(m.ctx, tx); err != nil {
		return err
	}

	m.logger.Info("Truncating resale records table")
	query := fmt.Sprintf(`TRUNCATE %s;`, pgx.Identifier{resaleRecordsTable}.Sanitize())
	if _, err := tx.Exec(m.ctx, query); err != nil {
		return fmt.Errorf("error truncating %s: %v", resaleRecordsTable, err)
	}

	if err := fn(&postgresResaleRecordTx{ctx: m.ctx, tx: tx, logger: m.logger}); err != nil {
		return err
	}

	if err := createResaleRecordIndexes(m.ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(m.ctx); err != nil {
		return fmt.Errorf("error committing resale records: %v", err)
	}
	return nil
}

type postgresResaleRecordTx struct {
	ctx    context.Context
	tx     pgx.Tx
	logger *log.Logger
}

// InsertResaleRecords bulk loads one batch with COPY. The rows become visible only
// when the surrounding transaction commits.
func (t *postgresResaleRecordTx) InsertResaleRecords(records []*models.ResaleRecord) error {
	if len(records) == 0 {
		return nil
	}

	t.logger.Debug("Bulk loading resale records", log.FieldRows, len(records))
	copySource := pgx.CopyFromSlice(len(records), func(i int) ([]interface{}, error) {
		return resaleRecordValues(records[i]), nil
	})

	_, err := t.tx.CopyFrom(
		t.ctx,
		pgx.Identifier{resaleRecordsTable},
		resaleRecordColumns,
		copySource,
	)
	if err != nil {
		return fmt.Errorf("unable to copy resale records: %v", err)
	}

	return nil
}

func (t *postgresResaleRecordTx) UpdateFileStatus(fileID int, status string, errors any) error {
	return updateFileStatus(t.ctx, t.tx, fileID, status, errors)
}

func resaleRecordValues(record *models.ResaleRecord) []interface{} {
	return []interface{}{
		record.ResaleDate, record.Town, record.FlatType, record.Block, record.StreetName, record.StoreyRange,
		record.FloorAreaSqm, record.FlatModel, record.LeaseCommenceDate, record.ResalePrice, record.FileID, record.CheckSum,
	}
}
