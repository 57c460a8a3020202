package logger

import (
	"github.com/aleister1102/apiextract/internal/config"
	"github.com/rs/zerolog"
)

// Logger pairs a zerolog instance with the configuration that built it
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// FilePath returns the resolved log file path, empty when file logging is off
func (l *Logger) FilePath() string {
	if !l.config.EnableFile {
		return ""
	}
	return BuildLogPath(l.config)
}

// New creates a logger from the application log section
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	logger, err := NewLoggerBuilder().WithConfig(cfg).Build()
	if err != nil {
		return zerolog.Logger{}, err
	}
	return *logger.GetZerolog(), nil
}
