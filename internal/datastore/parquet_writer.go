package datastore

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/config"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/urlhandler"

	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ParquetWriter writes processed response and page sets to a snapshot directory
type ParquetWriter struct {
	config       *config.StorageConfig
	logger       zerolog.Logger
	fileManager  *common.FileManager
	writerConfig ParquetWriterConfig
	transformer  *RecordTransformer
}

// WriteResult contains the result of a write operation
type WriteResult struct {
	Directory        string
	ResponsesWritten int
	PagesWritten     int
	WriteTime        time.Duration
}

// DefaultSnapshotDir returns <base>/snapshots/<run id>
func (pw *ParquetWriter) DefaultSnapshotDir(runID string) string {
	return filepath.Join(pw.config.ParquetBasePath, snapshotsDir, urlhandler.SanitizeFilename(runID))
}

// Write stores result under dir, or under DefaultSnapshotDir when dir is empty.
// Existing snapshot files in dir are replaced.
func (pw *ParquetWriter) Write(ctx context.Context, result models.ProcessResult, dir string) (*WriteResult, error) {
	startTime := time.Now()

	if dir == "" {
		if pw.config.ParquetBasePath == "" {
			return nil, common.NewValidationError("parquet_base_path", pw.config.ParquetBasePath, "ParquetBasePath is not configured")
		}
		dir = pw.DefaultSnapshotDir(result.RunID)
	}

	if err := pw.checkCancellation(ctx, "snapshot write start"); err != nil {
		return nil, err
	}

	if err := pw.fileManager.EnsureDirectory(dir, 0755); err != nil {
		return nil, common.WrapError(err, "failed to create snapshot directory")
	}

	snapshotAt := startTime.UnixMilli()
	responses := make([]models.ParquetResponse, 0, len(result.Responses))
	for _, r := range result.Responses {
		pr, err := pw.transformer.ToParquetResponse(r, result.RunID, snapshotAt)
		if err != nil {
			return nil, err
		}
		responses = append(responses, pr)
	}

	pages := make([]models.ParquetPage, 0, len(result.Pages))
	for _, p := range result.Pages {
		pages = append(pages, pw.transformer.ToParquetPage(p, result.RunID, snapshotAt))
	}

	if err := pw.checkCancellation(ctx, "before parquet write"); err != nil {
		return nil, err
	}

	responsesWritten, err := writeParquetFile(filepath.Join(dir, ResponsesFileName), responses, pw.getCompressionOption())
	if err != nil {
		return nil, common.WrapError(err, "failed to write responses snapshot")
	}
	pagesWritten, err := writeParquetFile(filepath.Join(dir, PagesFileName), pages, pw.getCompressionOption())
	if err != nil {
		return nil, common.WrapError(err, "failed to write pages snapshot")
	}

	writeResult := &WriteResult{
		Directory:        dir,
		ResponsesWritten: responsesWritten,
		PagesWritten:     pagesWritten,
		WriteTime:        time.Since(startTime),
	}

	pw.logger.Info().
		Str("directory", dir).
		Str("run_id", result.RunID).
		Int("responses_written", responsesWritten).
		Int("pages_written", pagesWritten).
		Dur("write_time", writeResult.WriteTime).
		Msg("Successfully wrote snapshot to Parquet files")

	return writeResult, nil
}

func (pw *ParquetWriter) checkCancellation(ctx context.Context, operation string) error {
	if result := common.CheckCancellationWithLog(ctx, pw.logger, operation); result.Cancelled {
		return result.Error
	}
	return nil
}

// getCompressionOption returns the compression option based on configuration
func (pw *ParquetWriter) getCompressionOption() parquet.WriterOption {
	switch pw.writerConfig.CompressionType {
	case "gzip":
		return parquet.Compression(&parquet.Gzip)
	case "snappy":
		return parquet.Compression(&parquet.Snappy)
	case "none":
		return parquet.Compression(&parquet.Uncompressed)
	default:
		return parquet.Compression(&parquet.Zstd)
	}
}

// writeParquetFile truncates path and writes rows to it
func writeParquetFile[T any](path string, rows []T, options ...parquet.WriterOption) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, common.WrapError(err, "failed to create/truncate parquet file: "+path)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[T](file, options...)
	written, err := writer.Write(rows)
	if err != nil {
		_ = writer.Close()
		return 0, err
	}
	if err := writer.Close(); err != nil {
		return 0, common.WrapError(err, "failed to finalize parquet file: "+path)
	}
	return written, nil
}
