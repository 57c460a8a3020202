package config

// ExportConfig defines where and how CSV exports are written
type ExportConfig struct {
	OutputDir  string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	FilePrefix string `json:"file_prefix,omitempty" yaml:"file_prefix,omitempty" validate:"omitempty,excludesall=/\\"`
	ColumnMode string `json:"column_mode,omitempty" yaml:"column_mode,omitempty" validate:"omitempty,columnmode"`
}

// NewDefaultExportConfig creates default export configuration
func NewDefaultExportConfig() ExportConfig {
	return ExportConfig{
		OutputDir:  DefaultExportOutputDir,
		FilePrefix: DefaultExportFilePrefix,
		ColumnMode: DefaultExportColumnMode,
	}
}
