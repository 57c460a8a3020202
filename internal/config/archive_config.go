package config

// ArchiveConfig controls how input archives are recognised and read
type ArchiveConfig struct {
	RecordExtensions   []string `json:"record_extensions,omitempty" yaml:"record_extensions,omitempty" validate:"omitempty,dive,extension"`
	PackageExtensions  []string `json:"package_extensions,omitempty" yaml:"package_extensions,omitempty" validate:"omitempty,dive,extension"`
	SidecarPaths       []string `json:"sidecar_paths,omitempty" yaml:"sidecar_paths,omitempty" validate:"omitempty,dive,required"`
	ManifestMarkers    []string `json:"manifest_markers,omitempty" yaml:"manifest_markers,omitempty"`
	StandaloneJSONExts []string `json:"standalone_json_extensions,omitempty" yaml:"standalone_json_extensions,omitempty" validate:"omitempty,dive,extension"`
	MaxArchiveSizeMB   int      `json:"max_archive_size_mb,omitempty" yaml:"max_archive_size_mb,omitempty" validate:"omitempty,min=1"`
	MaxEntrySizeMB     int      `json:"max_entry_size_mb,omitempty" yaml:"max_entry_size_mb,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultArchiveConfig creates default archive configuration
func NewDefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		RecordExtensions:   append([]string(nil), DefaultRecordExtensions...),
		PackageExtensions:  append([]string(nil), DefaultPackageExtensions...),
		SidecarPaths:       append([]string(nil), DefaultSidecarPaths...),
		ManifestMarkers:    append([]string(nil), DefaultManifestMarkers...),
		StandaloneJSONExts: append([]string(nil), DefaultStandaloneJSONExts...),
		MaxArchiveSizeMB:   DefaultArchiveMaxSizeMB,
		MaxEntrySizeMB:     DefaultArchiveMaxEntrySizeMB,
	}
}

// MaxArchiveBytes returns the archive size cap in bytes, 0 meaning unlimited
func (c ArchiveConfig) MaxArchiveBytes() int64 {
	return int64(c.MaxArchiveSizeMB) * 1024 * 1024
}

// MaxEntryBytes returns the per-entry size cap in bytes, 0 meaning unlimited
func (c ArchiveConfig) MaxEntryBytes() int64 {
	return int64(c.MaxEntrySizeMB) * 1024 * 1024
}
