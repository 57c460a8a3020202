package archive

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Input is one archive handed to the processor: a display name plus a way to open its bytes.
type Input struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileInput reads an archive from disk
func FileInput(path string) Input {
	return Input{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// BytesInput serves an archive already held in memory
func BytesInput(name string, data []byte) Input {
	return Input{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// FileInputs maps paths to inputs, keeping their order
func FileInputs(paths []string) []Input {
	inputs := make([]Input, 0, len(paths))
	for _, p := range paths {
		inputs = append(inputs, FileInput(p))
	}
	return inputs
}

// Format is the container form of an input
type Format int

const (
	FormatUnknown Format = iota
	// FormatRecords is a raw WARC stream, possibly gzipped
	FormatRecords
	// FormatPackage is a WACZ zip bundle
	FormatPackage
)

func (f Format) String() string {
	switch f {
	case FormatRecords:
		return "warc"
	case FormatPackage:
		return "wacz"
	default:
		return "unknown"
	}
}

// DetectFormat classifies a file name by its extension, case-insensitively
func DetectFormat(name string, recordExts, packageExts []string) Format {
	lower := strings.ToLower(name)
	if hasAnySuffix(lower, packageExts) {
		return FormatPackage
	}
	if hasAnySuffix(lower, recordExts) {
		return FormatRecords
	}
	return FormatUnknown
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(name, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
