package datastore

import (
	"encoding/json"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/normalizer"
	"github.com/rs/zerolog"
)

// RecordTransformer converts entities to and from their snapshot rows
type RecordTransformer struct {
	logger zerolog.Logger
}

// NewRecordTransformer creates a new RecordTransformer
func NewRecordTransformer(logger zerolog.Logger) *RecordTransformer {
	return &RecordTransformer{
		logger: logger.With().Str("component", "RecordTransformer").Logger(),
	}
}

// ToParquetResponse stores Content as JSON text
func (rt *RecordTransformer) ToParquetResponse(r models.ApiResponse, runID string, snapshotAt int64) (models.ParquetResponse, error) {
	content, err := json.Marshal(r.Content)
	if err != nil {
		rt.logger.Error().Err(err).Str("response_id", r.ID).Msg("Failed to marshal response content")
		return models.ParquetResponse{}, common.WrapErrorf(err, "failed to marshal content of %s", r.ID)
	}

	return models.ParquetResponse{
		RunID:        runID,
		ID:           r.ID,
		SourcePath:   r.SourcePath,
		Pathname:     r.Pathname,
		Hostname:     r.Hostname,
		Method:       r.Method,
		Status:       r.Status,
		ContentJSON:  string(content),
		ContentType:  r.ContentType,
		Timestamp:    r.Timestamp,
		Kind:         string(r.Kind),
		ParentPageID: models.StringPtr(r.ParentPageID),
		Page:         r.Page,
		Archive:      models.StringPtr(r.Archive),
		KeyOrder:     r.KeyOrder,
		SnapshotAt:   snapshotAt,
	}, nil
}

// FromParquetResponse parses ContentJSON back with the same number model as decoding
func (rt *RecordTransformer) FromParquetResponse(pr models.ParquetResponse) (models.ApiResponse, error) {
	content, err := normalizer.ParseJSON([]byte(pr.ContentJSON))
	if err != nil {
		return models.ApiResponse{}, common.WrapErrorf(err, "stored content of %s", pr.ID)
	}

	var keyOrder []string
	if len(pr.KeyOrder) > 0 {
		keyOrder = pr.KeyOrder
	}

	return models.ApiResponse{
		ID:           pr.ID,
		SourcePath:   pr.SourcePath,
		Pathname:     pr.Pathname,
		Hostname:     pr.Hostname,
		Method:       pr.Method,
		Status:       pr.Status,
		Content:      content,
		ContentType:  pr.ContentType,
		Timestamp:    pr.Timestamp,
		Kind:         models.ResponseKind(pr.Kind),
		ParentPageID: models.StringValue(pr.ParentPageID),
		Page:         pr.Page,
		Archive:      models.StringValue(pr.Archive),
		KeyOrder:     keyOrder,
	}, nil
}

// ToParquetPage converts a page to its snapshot row
func (rt *RecordTransformer) ToParquetPage(p models.Page, runID string, snapshotAt int64) models.ParquetPage {
	return models.ParquetPage{
		RunID:      runID,
		ID:         p.ID,
		URL:        p.URL,
		Title:      models.StringPtr(p.Title),
		Timestamp:  p.Timestamp,
		Hostname:   p.Hostname,
		Pathname:   p.Pathname,
		Archive:    models.StringPtr(p.Archive),
		SnapshotAt: snapshotAt,
	}
}

// FromParquetPage restores a page from its snapshot row
func (rt *RecordTransformer) FromParquetPage(pp models.ParquetPage) models.Page {
	return models.Page{
		ID:        pp.ID,
		URL:       pp.URL,
		Title:     models.StringValue(pp.Title),
		Timestamp: pp.Timestamp,
		Hostname:  pp.Hostname,
		Pathname:  pp.Pathname,
		Archive:   models.StringValue(pp.Archive),
	}
}
