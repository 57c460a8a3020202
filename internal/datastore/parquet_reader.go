package datastore

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/models"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

const readBatchSize = 256

// ParquetReader loads snapshots written by ParquetWriter
type ParquetReader struct {
	logger      zerolog.Logger
	transformer *RecordTransformer
}

// NewParquetReader creates a new ParquetReader
func NewParquetReader(logger zerolog.Logger) *ParquetReader {
	componentLogger := logger.With().Str("component", "ParquetReader").Logger()
	return &ParquetReader{
		logger:      componentLogger,
		transformer: NewRecordTransformer(componentLogger),
	}
}

// Read loads the response and page sets stored in dir.
// Diagnostics are not part of a snapshot. A missing pages file yields no pages.
func (pr *ParquetReader) Read(dir string) (models.ProcessResult, error) {
	var result models.ProcessResult

	responsesPath := filepath.Join(dir, ResponsesFileName)
	storedResponses, err := readParquetFile[models.ParquetResponse](responsesPath)
	if err != nil {
		return result, common.WrapError(err, "failed to read responses snapshot")
	}

	for _, stored := range storedResponses {
		resp, err := pr.transformer.FromParquetResponse(stored)
		if err != nil {
			pr.logger.Warn().Err(err).Str("response_id", stored.ID).Msg("Failed to restore response from snapshot, skipping")
			continue
		}
		if result.RunID == "" {
			result.RunID = stored.RunID
		}
		result.Responses = append(result.Responses, resp)
	}

	pagesPath := filepath.Join(dir, PagesFileName)
	storedPages, err := readParquetFile[models.ParquetPage](pagesPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		pr.logger.Debug().Str("file", pagesPath).Msg("No pages snapshot found")
	case err != nil:
		return result, common.WrapError(err, "failed to read pages snapshot")
	}
	for _, stored := range storedPages {
		if result.RunID == "" {
			result.RunID = stored.RunID
		}
		result.Pages = append(result.Pages, pr.transformer.FromParquetPage(stored))
	}

	pr.logger.Info().
		Str("directory", dir).
		Str("run_id", result.RunID).
		Int("responses", len(result.Responses)).
		Int("pages", len(result.Pages)).
		Msg("Successfully read snapshot from Parquet files")
	return result, nil
}

func readParquetFile[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := parquet.NewGenericReader[T](file)
	defer reader.Close()

	var rows []T
	buf := make([]T, readBatchSize)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, common.WrapError(err, "failed to read row from "+path)
		}
		if n == 0 {
			return rows, nil
		}
	}
}
