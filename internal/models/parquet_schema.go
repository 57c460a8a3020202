package models

// ParquetResponse defines the snapshot schema for ApiResponse.
// Content is stored as its JSON text.
type ParquetResponse struct {
	RunID        string   `parquet:"run_id"`
	ID           string   `parquet:"id"`
	SourcePath   string   `parquet:"source_path"`
	Pathname     string   `parquet:"pathname"`
	Hostname     string   `parquet:"hostname"`
	Method       string   `parquet:"method"`
	Status       string   `parquet:"status"`
	ContentJSON  string   `parquet:"content_json"`
	ContentType  string   `parquet:"content_type"`
	Timestamp    string   `parquet:"timestamp"`
	Kind         string   `parquet:"kind"`
	ParentPageID *string  `parquet:"parent_page_id,optional"`
	Page         string   `parquet:"page"`
	Archive      *string  `parquet:"archive,optional"`
	KeyOrder     []string `parquet:"key_order,list"`
	SnapshotAt   int64    `parquet:"snapshot_at"` // unix millis
}

// ParquetPage defines the snapshot schema for Page
type ParquetPage struct {
	RunID      string  `parquet:"run_id"`
	ID         string  `parquet:"id"`
	URL        string  `parquet:"url"`
	Title      *string `parquet:"title,optional"`
	Timestamp  string  `parquet:"timestamp"`
	Hostname   string  `parquet:"hostname"`
	Pathname   string  `parquet:"pathname"`
	Archive    *string `parquet:"archive,optional"`
	SnapshotAt int64   `parquet:"snapshot_at"`
}
