package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Run statuses
const (
	StatusStarted   = "STARTED"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// ErrRunNotFound is returned when no run matches the requested id
var ErrRunNotFound = errors.New("run not found")

// DB wraps the SQL database connection and stores one row per processing run.
type DB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunEntry represents a record in the runs table.
type RunEntry struct {
	ID           int64
	RunID        string
	Mode         string
	Inputs       []string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       string
	Responses    int
	Pages        int
	Diagnostics  int
	Failures     int
	Rows         int
	ExportPath   string
	ErrorMessage string
}

// RunSummary holds the counters written when a run finishes
type RunSummary struct {
	Status       string
	Responses    int
	Pages        int
	Diagnostics  int
	Failures     int
	Rows         int
	ExportPath   string
	ErrorMessage string
}

// NewDB opens (creating if needed) the history database at path and ensures the schema.
func NewDB(path string, logger zerolog.Logger) (*DB, error) {
	logger = logger.With().Str("component", "HistoryDB").Logger()
	logger.Debug().Str("db_path", path).Msg("Initializing history database connection")

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create history database directory")
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", path).Msg("Failed to open history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}

	db := &DB{
		db:     dbInstance,
		logger: logger,
	}

	if err := db.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InitSchema creates the runs table if it doesn't already exist.
func (d *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT UNIQUE NOT NULL,
		mode TEXT NOT NULL,
		inputs TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		status TEXT NOT NULL,
		responses INTEGER DEFAULT 0,
		pages INTEGER DEFAULT 0,
		diagnostics INTEGER DEFAULT 0,
		failures INTEGER DEFAULT 0,
		rows_exported INTEGER DEFAULT 0,
		export_path TEXT,
		error_message TEXT
	);
	`
	if _, err := d.db.Exec(query); err != nil {
		d.logger.Error().Err(err).Msg("Failed to initialize schema")
		return err
	}
	d.logger.Debug().Msg("Schema initialized (runs table ensured)")
	return nil
}

// RecordRunStart inserts a run with status STARTED and returns its row id.
func (d *DB) RecordRunStart(runID, mode string, inputs []string, startTime time.Time) (int64, error) {
	query := `INSERT INTO runs (run_id, mode, inputs, started_at, status) VALUES (?, ?, ?, ?, ?)`
	result, err := d.db.Exec(query, runID, mode, strings.Join(inputs, "\n"), startTime.UnixMilli(), StatusStarted)
	if err != nil {
		d.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to record run start")
		return 0, fmt.Errorf("failed to insert run start record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	d.logger.Info().Int64("db_id", id).Str("run_id", runID).Msg("Recorded run start in DB")
	return id, nil
}

// UpdateRunCompletion stores the final counters of a run.
func (d *DB) UpdateRunCompletion(dbID int64, endTime time.Time, summary RunSummary) error {
	query := `UPDATE runs SET finished_at = ?, status = ?, responses = ?, pages = ?, diagnostics = ?, failures = ?, rows_exported = ?, export_path = ?, error_message = ? WHERE id = ?`
	result, err := d.db.Exec(query,
		endTime.UnixMilli(),
		summary.Status,
		summary.Responses,
		summary.Pages,
		summary.Diagnostics,
		summary.Failures,
		summary.Rows,
		nullString(summary.ExportPath),
		nullString(summary.ErrorMessage),
		dbID,
	)
	if err != nil {
		d.logger.Error().Err(err).Int64("db_id", dbID).Msg("Failed to update run completion")
		return fmt.Errorf("failed to update run completion for ID %d: %w", dbID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run completion for ID %d: %w", dbID, ErrRunNotFound)
	}
	d.logger.Info().Int64("db_id", dbID).Str("status", summary.Status).Msg("Updated run completion in DB")
	return nil
}

const selectRunColumns = `SELECT id, run_id, mode, inputs, started_at, finished_at, status, responses, pages, diagnostics, failures, rows_exported, export_path, error_message FROM runs`

// GetRun looks up a run by its run id.
func (d *DB) GetRun(runID string) (*RunEntry, error) {
	row := d.db.QueryRow(selectRunColumns+` WHERE run_id = ?`, runID)
	entry, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", runID, err)
	}
	return entry, nil
}

// GetRecentRuns returns up to limit runs, newest first.
func (d *DB) GetRecentRuns(limit int) ([]RunEntry, error) {
	rows, err := d.db.Query(selectRunColumns+` ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		entry, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*RunEntry, error) {
	var (
		entry        RunEntry
		inputs       string
		startedAt    int64
		finishedAt   sql.NullInt64
		exportPath   sql.NullString
		errorMessage sql.NullString
	)
	err := s.Scan(
		&entry.ID, &entry.RunID, &entry.Mode, &inputs, &startedAt, &finishedAt, &entry.Status,
		&entry.Responses, &entry.Pages, &entry.Diagnostics, &entry.Failures, &entry.Rows,
		&exportPath, &errorMessage,
	)
	if err != nil {
		return nil, err
	}

	if inputs != "" {
		entry.Inputs = strings.Split(inputs, "\n")
	}
	entry.StartedAt = time.UnixMilli(startedAt)
	if finishedAt.Valid {
		t := time.UnixMilli(finishedAt.Int64)
		entry.FinishedAt = &t
	}
	entry.ExportPath = exportPath.String
	entry.ErrorMessage = errorMessage.String
	return &entry, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
