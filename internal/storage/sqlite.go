package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/rootfinder-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStorage) querier() querier {
	return s.db
}

// Run operations

const runColumns = `id, method, expression, params, tolerance, max_iterations, status,
		       root, iterations, error_kind, error_message, duration_us, created_at`

// createRunWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) createRunWithQuerier(ctx context.Context, q querier, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Params == nil {
		run.Params = map[string]float64{}
	}
	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("failed to encode run params: %w", err)
	}

	var root sql.NullFloat64
	if run.Root != nil {
		root = sql.NullFloat64{Float64: *run.Root, Valid: true}
	}

	query := `
		INSERT INTO runs (id, method, expression, params, tolerance, max_iterations, status,
		                  root, iterations, error_kind, error_message, duration_us, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now().UTC()
	_, err = q.ExecContext(ctx, query,
		run.ID, string(run.Method), run.Expression, string(params), run.Tolerance, run.MaxIterations,
		string(run.Status), root, run.Iterations, run.ErrorKind, run.ErrorMessage,
		run.Duration.Microseconds(), now)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("run %s: %w", run.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create run: %w", err)
	}
	run.CreatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateRun(ctx context.Context, run *Run) error {
	return s.createRunWithQuerier(ctx, s.querier(), run)
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		method     string
		status     string
		params     string
		root       sql.NullFloat64
		durationUs int64
	)
	err := row.Scan(
		&run.ID, &method, &run.Expression, &params, &run.Tolerance, &run.MaxIterations, &status,
		&root, &run.Iterations, &run.ErrorKind, &run.ErrorMessage, &durationUs, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Method = types.Method(method)
	run.Status = types.Status(status)
	run.Duration = time.Duration(durationUs) * time.Microsecond
	if root.Valid {
		v := root.Float64
		run.Root = &v
	}
	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params of run %s: %w", run.ID, err)
	}
	return &run, nil
}

// getRunWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStorage) getRunWithQuerier(ctx context.Context, q querier, id string) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`
	run, err := scanRun(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*Run, error) {
	return s.getRunWithQuerier(ctx, s.querier(), id)
}

// listRunsWithQuerier returns runs newest first
func (s *SQLiteStorage) listRunsWithQuerier(ctx context.Context, q querier, filter RunFilter) ([]*Run, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Method != "" {
		where = append(where, "method = ?")
		args = append(args, string(filter.Method))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Expression != "" {
		where = append(where, "expression = ?")
		args = append(args, filter.Expression)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq DESC LIMIT ?"
	args = append(args, limit)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStorage) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	return s.listRunsWithQuerier(ctx, s.querier(), filter)
}

// deleteRunWithQuerier removes a run; its iterations go with it via ON DELETE CASCADE
func (s *SQLiteStorage) deleteRunWithQuerier(ctx context.Context, q querier, id string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	return s.deleteRunWithQuerier(ctx, s.querier(), id)
}

// Iteration operations

// insertIterationsWithQuerier stores records in trace order
func (s *SQLiteStorage) insertIterationsWithQuerier(ctx context.Context, q querier, runID string, records []types.Record) error {
	query := `
		INSERT INTO iterations (run_id, iteration, estimate, residual, payload)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode iteration %d: %w", rec.Index(), err)
		}
		_, err = q.ExecContext(ctx, query, runID, rec.Index(), rec.Estimate(), rec.Residual(), string(payload))
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("iteration %d of run %s: %w", rec.Index(), runID, ErrAlreadyExists)
			}
			if isForeignKeyViolation(err) {
				return fmt.Errorf("run %s: %w", runID, ErrNotFound)
			}
			return fmt.Errorf("failed to insert iteration %d: %w", rec.Index(), err)
		}
	}
	return nil
}

func (s *SQLiteStorage) InsertIterations(ctx context.Context, runID string, records []types.Record) error {
	return s.insertIterationsWithQuerier(ctx, s.querier(), runID, records)
}

// listIterationsWithQuerier decodes the stored trace of a run in iteration order
func (s *SQLiteStorage) listIterationsWithQuerier(ctx context.Context, q querier, runID string) ([]types.Record, error) {
	var method string
	err := q.QueryRowContext(ctx, "SELECT method FROM runs WHERE id = ?", runID).Scan(&method)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx,
		"SELECT payload FROM iterations WHERE run_id = ? ORDER BY iteration", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list iterations: %w", err)
	}
	defer rows.Close()

	records := []types.Record{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		rec, err := types.DecodeRecord(types.Method(method), []byte(payload))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStorage) ListIterations(ctx context.Context, runID string) ([]types.Record, error) {
	return s.listIterationsWithQuerier(ctx, s.querier(), runID)
}

// Status operations

// getStatsWithQuerier aggregates counts over the whole history
func (s *SQLiteStorage) getStatsWithQuerier(ctx context.Context, q querier) (*Stats, error) {
	stats := &Stats{
		ByStatus: map[types.Status]int{},
		ByMethod: map[types.Method]int{},
	}

	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&stats.RunsCount); err != nil {
		return nil, err
	}
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM iterations").Scan(&stats.IterationsCount); err != nil {
		return nil, err
	}

	rows, err := q.QueryContext(ctx, "SELECT method, status, COUNT(*) FROM runs GROUP BY method, status")
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var method, status string
		var n int
		if err := rows.Scan(&method, &status, &n); err != nil {
			_ = rows.Close()
			return nil, err
		}
		stats.ByMethod[types.Method(method)] += n
		stats.ByStatus[types.Status(status)] += n
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	if stats.RunsCount > 0 {
		err := q.QueryRowContext(ctx, "SELECT created_at FROM runs ORDER BY seq DESC LIMIT 1").Scan(&stats.LastRunAt)
		if err != nil {
			return nil, err
		}
	}

	// Calculate database size
	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	stats.Health = HealthStatus{
		DatabaseAccessible: true,
		SchemaVersion:      CurrentSchemaVersion,
	}
	return stats, nil
}

func (s *SQLiteStorage) GetStats(ctx context.Context) (*Stats, error) {
	return s.getStatsWithQuerier(ctx, s.querier())
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "PRIMARY KEY")
}

func isForeignKeyViolation(err error) bool {
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// Transaction implementations route every call through the transaction's querier,
// since the single pooled connection is held by the transaction.

func (t *sqliteTx) CreateRun(ctx context.Context, run *Run) error {
	return t.storage.createRunWithQuerier(ctx, t.querier(), run)
}

func (t *sqliteTx) GetRun(ctx context.Context, id string) (*Run, error) {
	return t.storage.getRunWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error) {
	return t.storage.listRunsWithQuerier(ctx, t.querier(), filter)
}

func (t *sqliteTx) DeleteRun(ctx context.Context, id string) error {
	return t.storage.deleteRunWithQuerier(ctx, t.querier(), id)
}

func (t *sqliteTx) InsertIterations(ctx context.Context, runID string, records []types.Record) error {
	return t.storage.insertIterationsWithQuerier(ctx, t.querier(), runID, records)
}

func (t *sqliteTx) ListIterations(ctx context.Context, runID string) ([]types.Record, error) {
	return t.storage.listIterationsWithQuerier(ctx, t.querier(), runID)
}

func (t *sqliteTx) GetStats(ctx context.Context) (*Stats, error) {
	return t.storage.getStatsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	// Transactions don't close the underlying connection
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	// SQLite does not support true nested transactions
	return nil, errors.New("nested transactions not supported")
}
