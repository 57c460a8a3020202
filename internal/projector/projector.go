package projector

import (
	"fmt"

	"github.com/aleister1102/apiextract/internal/models"
	"github.com/rs/zerolog"
)

// Metadata column names, in the order they are appended to every row
const (
	ColumnSource    = "source"
	ColumnURL       = "url"
	ColumnPathname  = "pathname"
	ColumnHostname  = "hostname"
	ColumnMethod    = "method"
	ColumnStatus    = "status"
	ColumnTimestamp = "timestamp"
	ColumnPage      = "page"
	ColumnType      = "type"
)

// Evaluator extracts the value selected by path. It must not fail.
type Evaluator interface {
	Evaluate(value any, path string) any
}

// Projector turns responses into flat rows
type Projector struct {
	evaluator Evaluator
	logger    zerolog.Logger
}

// New creates a projector over the given evaluator
func New(evaluator Evaluator, logger zerolog.Logger) *Projector {
	return &Projector{
		evaluator: evaluator,
		logger:    logger.With().Str("component", "Projector").Logger(),
	}
}

// Project evaluates path against every response in order. An array result yields one
// row per element, anything else a single row. An empty path selects the whole document.
// Metadata columns are merged last.
func (p *Projector) Project(responses []models.ApiResponse, path string) []models.Row {
	var rows []models.Row
	for _, resp := range responses {
		projected, err := p.projectOne(resp, path)
		if err != nil {
			p.logger.Error().
				Err(err).
				Str("response_id", resp.ID).
				Str("source", resp.SourcePath).
				Msg("Failed to project response, skipping")
			continue
		}
		rows = append(rows, projected...)
	}

	p.logger.Debug().
		Int("responses", len(responses)).
		Int("rows", len(rows)).
		Str("path", path).
		Msg("Projection complete")
	return rows
}

func (p *Projector) projectOne(resp models.ApiResponse, path string) (rows []models.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("projection panicked: %v", r)
		}
	}()

	extracted := p.evaluator.Evaluate(resp.Content, path)
	items, isArray := extracted.([]any)
	if !isArray {
		items = []any{extracted}
	}

	rows = make([]models.Row, 0, len(items))
	for _, item := range items {
		row := FlattenOrdered(item, resp.KeyOrder)
		mergeMetadata(&row, resp)
		rows = append(rows, row)
	}
	return rows, nil
}

// mergeMetadata overwrites same-named content keys, which keep their position
func mergeMetadata(row *models.Row, resp models.ApiResponse) {
	row.Set(ColumnSource, resp.SourcePath)
	row.Set(ColumnURL, resp.SourcePath)
	row.Set(ColumnPathname, resp.Pathname)
	row.Set(ColumnHostname, resp.Hostname)
	row.Set(ColumnMethod, resp.Method)
	row.Set(ColumnStatus, resp.Status)
	row.Set(ColumnTimestamp, resp.Timestamp)
	row.Set(ColumnPage, resp.Page)
	row.Set(ColumnType, string(resp.Kind))
}

// Columns returns the keys of the first row, the CSV header
func Columns(rows []models.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	return append([]string(nil), rows[0].Keys...)
}

// UnionColumns returns every key across rows in first-seen order
func UnionColumns(rows []models.Row) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, row := range rows {
		for _, k := range row.Keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}
