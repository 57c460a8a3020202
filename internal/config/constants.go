package config

const (
	// Archive Defaults
	DefaultArchiveMaxSizeMB      = 512
	DefaultArchiveMaxEntrySizeMB = 256

	// Extractor Defaults
	DefaultExtractorEngine       = EngineJQ
	DefaultExtractorTimeoutMs    = 2000
	DefaultExtractorMaxOutputs   = 100000
	DefaultExtractorMaxCacheSize = 256

	// Export Defaults
	DefaultExportOutputDir  = "exports"
	DefaultExportFilePrefix = "api_data_extract"
	DefaultExportColumnMode = ColumnModeFirstRow

	// Storage Defaults
	DefaultStorageParquetBasePath  = "database"
	DefaultStorageCompressionCodec = "zstd"

	// History Defaults
	DefaultHistorySQLiteDBPath = "database/history/runs.db"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// ConfigPathEnvVar overrides the config file location
	ConfigPathEnvVar = "APIEXTRACT_CONFIG_PATH"
)

// Path evaluation engines
const (
	EngineJQ   = "jq"
	EnginePath = "path"
)

// CSV column derivation modes
const (
	ColumnModeFirstRow = "first_row"
	ColumnModeUnion    = "union"
)

// Default extension and sidecar lists, shared by the archive config constructor and tests
var (
	DefaultRecordExtensions   = []string{".warc", ".warc.gz"}
	DefaultPackageExtensions  = []string{".wacz"}
	DefaultSidecarPaths       = []string{"pages/pages.jsonl", "pages.jsonl"}
	DefaultManifestMarkers    = []string{"datapackage", "digest"}
	DefaultStandaloneJSONExts = []string{".json"}
)

