package normalizer

import (
	"time"

	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/urlhandler"
	"github.com/rs/zerolog"
)

// ResponseInput carries whatever one discovery mechanism knows about a JSON body.
// Empty fields receive the defaults applied by NewAPIResponse.
type ResponseInput struct {
	ID           string
	SourcePath   string
	Method       string
	Status       string
	ContentType  string
	Timestamp    string
	Kind         models.ResponseKind
	ParentPageID string
	Page         string
	Archive      string
	Content      any
	KeyOrder     []string
	// Hostname and Pathname override the values parsed from SourcePath
	Hostname string
	Pathname string
}

// NewAPIResponse is the single construction path for ApiResponse
func NewAPIResponse(in ResponseInput, now time.Time) models.ApiResponse {
	loc := urlhandler.ParseLocation(in.SourcePath)
	if in.Hostname != "" {
		loc.Hostname = in.Hostname
	}
	if in.Pathname != "" {
		loc.Pathname = in.Pathname
	}

	resp := models.ApiResponse{
		ID:           in.ID,
		SourcePath:   in.SourcePath,
		Pathname:     loc.Pathname,
		Hostname:     loc.Hostname,
		Method:       firstNonEmpty(in.Method, models.DefaultMethod),
		Status:       firstNonEmpty(in.Status, models.DefaultStatus),
		Content:      in.Content,
		ContentType:  firstNonEmpty(in.ContentType, models.DefaultContentType),
		Timestamp:    firstNonEmpty(in.Timestamp, models.FormatTimestamp(now)),
		Kind:         in.Kind,
		ParentPageID: in.ParentPageID,
		Page:         firstNonEmpty(in.Page, loc.Hostname),
		Archive:      in.Archive,
		KeyOrder:     in.KeyOrder,
	}
	if resp.Kind == "" {
		resp.Kind = models.KindAPIResponse
	}
	return resp
}

// NewPage builds a Page from a sidecar descriptor's fields
func NewPage(id, pageURL, title, ts, archive string, now time.Time) models.Page {
	pageURL = firstNonEmpty(pageURL, UnknownPageURL)
	loc := urlhandler.ParseLocation(pageURL)
	return models.Page{
		ID:        id,
		URL:       pageURL,
		Title:     title,
		Timestamp: firstNonEmpty(ts, models.FormatTimestamp(now)),
		Hostname:  loc.Hostname,
		Pathname:  loc.Pathname,
		Archive:   archive,
	}
}

// UnknownPageURL stands in for a page descriptor without a url
const UnknownPageURL = "unknown-url"

// Normalizer turns decoded records into entities. It holds no per-run state.
type Normalizer struct {
	logger       zerolog.Logger
	maxBodyBytes int64
	now          func() time.Time
}

// NewNormalizer creates a Normalizer. maxBodyBytes caps decompressed bodies, 0 means no cap.
func NewNormalizer(logger zerolog.Logger, maxBodyBytes int64) *Normalizer {
	return &Normalizer{
		logger:       logger.With().Str("component", "Normalizer").Logger(),
		maxBodyBytes: maxBodyBytes,
		now:          time.Now,
	}
}

// WithClock replaces the time source used for missing timestamps
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
