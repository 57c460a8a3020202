package exporter

import (
	"path/filepath"
	"time"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/config"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/projector"
	"github.com/rs/zerolog"
)

// FileName returns the default export name for the UTC date of t
func FileName(t time.Time) string {
	return FileNameWithPrefix(config.DefaultExportFilePrefix, t)
}

// FileNameWithPrefix returns <prefix>_<YYYY-MM-DD>.csv for the UTC date of t
func FileNameWithPrefix(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = config.DefaultExportFilePrefix
	}
	return prefix + "_" + t.UTC().Format("2006-01-02") + ".csv"
}

// Exporter writes projected rows to CSV files
type Exporter struct {
	cfg         config.ExportConfig
	logger      zerolog.Logger
	fileManager *common.FileManager
}

// New creates an exporter writing under cfg.OutputDir
func New(cfg config.ExportConfig, logger zerolog.Logger) *Exporter {
	componentLogger := logger.With().Str("component", "Exporter").Logger()
	return &Exporter{
		cfg:         cfg,
		logger:      componentLogger,
		fileManager: common.NewFileManager(componentLogger),
	}
}

// Columns derives the header according to the configured column mode
func (e *Exporter) Columns(rows []models.Row) []string {
	if e.cfg.ColumnMode == config.ColumnModeUnion {
		return projector.UnionColumns(rows)
	}
	return projector.Columns(rows)
}

// Export writes rows as CSV and returns the file path. Nothing is written for empty rows.
func (e *Exporter) Export(rows []models.Row, now time.Time) (string, error) {
	if len(rows) == 0 {
		e.logger.Info().Msg("No rows to export")
		return "", nil
	}

	columns := e.Columns(rows)
	content := SerializeColumns(rows, columns)
	path := filepath.Join(e.cfg.OutputDir, FileNameWithPrefix(e.cfg.FilePrefix, now))

	if err := e.fileManager.WriteFile(path, []byte(content), common.DefaultFileWriteOptions()); err != nil {
		return "", common.WrapError(err, "failed to write CSV export")
	}

	e.logger.Info().
		Str("path", path).
		Int("rows", len(rows)).
		Int("columns", len(columns)).
		Str("column_mode", e.cfg.ColumnMode).
		Msg("Successfully exported CSV")
	return path, nil
}
