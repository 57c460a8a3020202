package config

import "time"

// ExtractorConfig controls path evaluation
type ExtractorConfig struct {
	Engine       string `json:"engine,omitempty" yaml:"engine,omitempty" validate:"omitempty,engine"`
	TimeoutMs    int    `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty" validate:"omitempty,min=1"`
	MaxOutputs   int    `json:"max_outputs,omitempty" yaml:"max_outputs,omitempty" validate:"omitempty,min=1"`
	MaxCacheSize int    `json:"max_cache_size,omitempty" yaml:"max_cache_size,omitempty" validate:"omitempty,min=0"`
}

// NewDefaultExtractorConfig creates default extractor configuration
func NewDefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Engine:       DefaultExtractorEngine,
		TimeoutMs:    DefaultExtractorTimeoutMs,
		MaxOutputs:   DefaultExtractorMaxOutputs,
		MaxCacheSize: DefaultExtractorMaxCacheSize,
	}
}

// Timeout returns the per-query jq timeout as a duration
func (c ExtractorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}
