package datastore

// Snapshot file names inside a snapshot directory
const (
	ResponsesFileName = "responses.parquet"
	PagesFileName     = "pages.parquet"
	snapshotsDir      = "snapshots"
)

// ParquetWriterConfig holds configuration for ParquetWriter
type ParquetWriterConfig struct {
	CompressionType string
}

// DefaultParquetWriterConfig returns default configuration
func DefaultParquetWriterConfig() ParquetWriterConfig {
	return ParquetWriterConfig{
		CompressionType: "zstd",
	}
}
