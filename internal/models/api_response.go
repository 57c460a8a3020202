package models

// ResponseKind tells whether a response came from a captured exchange or a loose JSON file
type ResponseKind string

const (
	KindAPIResponse ResponseKind = "api_response"
	KindJSONFile    ResponseKind = "json_file"
)

// Defaults applied when the source record does not carry a value
const (
	DefaultMethod      = "GET"
	DefaultStatus      = "200"
	DefaultContentType = "application/json"
	ArchiveHostname    = "archive"
)

// ApiResponse is one recovered JSON-bearing exchange or loose JSON file.
// Content always holds a successfully parsed JSON value.
type ApiResponse struct {
	ID           string       `json:"id"`
	SourcePath   string       `json:"source_path"`
	Pathname     string       `json:"pathname"`
	Hostname     string       `json:"hostname"`
	Method       string       `json:"method"`
	Status       string       `json:"status"`
	Content      any          `json:"content"`
	ContentType  string       `json:"content_type"`
	Timestamp    string       `json:"timestamp"`
	Kind         ResponseKind `json:"kind"`
	ParentPageID string       `json:"parent_page_id,omitempty"`
	// Page is the display label of the enclosing page, its hostname in practice
	Page    string `json:"page"`
	Archive string `json:"archive,omitempty"`
	// KeyOrder is the first-appearance order of object keys in the source document
	KeyOrder []string `json:"key_order,omitempty"`
}

// HasPage reports whether the response is linked to a page
func (r ApiResponse) HasPage() bool {
	return r.ParentPageID != ""
}

// Page is one browsed page recorded in a package's sidecar metadata
type Page struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
	Hostname  string `json:"hostname"`
	Pathname  string `json:"pathname"`
	Archive   string `json:"archive,omitempty"`
}

// FileFailure records an input file that could not be decoded
type FileFailure struct {
	Archive string `json:"archive"`
	Error   string `json:"error"`
}

// ProcessResult is everything one processing run produced. It replaces the previous run's result.
type ProcessResult struct {
	RunID       string        `json:"run_id,omitempty"`
	Responses   []ApiResponse `json:"responses"`
	Pages       []Page        `json:"pages"`
	Diagnostics DiagnosticLog `json:"diagnostics"`
	Skipped     []string      `json:"skipped,omitempty"`
	Failures    []FileFailure `json:"failures,omitempty"`
}
