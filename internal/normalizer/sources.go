package normalizer

import (
	"strconv"
	"strings"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/warc"
	"github.com/tidwall/gjson"
)

// Result is the outcome of normalizing one exchange or file.
// Response is nil when the body was not JSON; Err then says why.
type Result struct {
	Response   *models.ApiResponse
	Diagnostic models.DiagnosticEntry
	Err        error
}

// WARCContext is what the caller knows about a response record beyond the record itself
type WARCContext struct {
	Archive    string
	FallbackID string
	// Method comes from a request record paired through WARC-Concurrent-To
	Method string
}

// FromWARCResponse normalizes a WARC response record
func (n *Normalizer) FromWARCResponse(rec *warc.Record, wc WARCContext) Result {
	targetURI := rec.TargetURI()
	status := ""
	contentType := ""
	body := rec.Content

	httpResp, err := warc.ParseHTTPResponse(rec.Content)
	if err != nil {
		n.logger.Debug().Err(err).Str("url", targetURI).Msg("Response block is not an HTTP message, using it as the body")
	} else {
		status = httpResp.Status()
		contentType = httpResp.Header.Get("Content-Type")
		decoded, decodeErr := DecodeBody(httpResp.Body, httpResp.Header.Get("Content-Encoding"), contentType, n.maxBodyBytes)
		if decodeErr != nil {
			n.logger.Debug().Err(decodeErr).Str("url", targetURI).Msg("Body decoding failed, using stored bytes")
		}
		body = decoded
	}

	res := Result{Diagnostic: models.DiagnosticEntry{
		URL:         targetURI,
		Method:      firstNonEmpty(wc.Method, models.DefaultMethod),
		Status:      firstNonEmpty(status, models.DefaultStatus),
		ContentType: contentType,
		Archive:     wc.Archive,
		Source:      models.SourceWARC,
	}}

	if !IsJSONShaped(body) {
		res.Err = common.WrapError(common.ErrNotJSON, "body is empty or does not start with { or [")
		return res
	}
	content, err := ParseJSON(body)
	if err != nil {
		res.Err = err
		return res
	}

	resp := NewAPIResponse(ResponseInput{
		ID:          firstNonEmpty(rec.RecordID(), wc.FallbackID),
		SourcePath:  targetURI,
		Method:      wc.Method,
		Status:      status,
		ContentType: contentType,
		Timestamp:   rec.Date(),
		Kind:        models.KindAPIResponse,
		Archive:     wc.Archive,
		Content:     content,
		KeyOrder:    KeyOrder(body),
	}, n.now())

	res.Response = &resp
	res.Diagnostic.IsJSON = true
	return res
}

// PageFromDescriptor builds a Page from one parsed sidecar line
func (n *Normalizer) PageFromDescriptor(desc gjson.Result, fallbackID, archive string) models.Page {
	return NewPage(
		firstNonEmpty(desc.Get("id").String(), fallbackID),
		desc.Get("url").String(),
		desc.Get("title").String(),
		desc.Get("ts").String(),
		archive,
		n.now(),
	)
}

// FromPageRequest normalizes the index-th request embedded in a page descriptor.
// ok is false for requests without a url, which leave no trace at all.
func (n *Normalizer) FromPageRequest(page models.Page, req gjson.Result, index int) (res Result, ok bool) {
	reqURL := req.Get("url").String()
	if reqURL == "" {
		return Result{}, false
	}

	contentType := requestContentType(req)
	method := req.Get("method").String()
	status := req.Get("status").String()

	res.Diagnostic = models.DiagnosticEntry{
		URL:         reqURL,
		Method:      firstNonEmpty(method, models.DefaultMethod),
		Status:      firstNonEmpty(status, models.DefaultStatus),
		ContentType: contentType,
		PageURL:     page.URL,
		PageID:      page.ID,
		Archive:     page.Archive,
		Source:      models.SourceSidecar,
	}

	body := responseText(req.Get("response"))
	if strings.TrimSpace(body) == "" {
		res.Err = common.WrapError(common.ErrNotJSON, "request has no response body")
		return res, true
	}
	if !IsLikelyJSONContentType(contentType) && !IsJSONShaped([]byte(body)) {
		res.Err = common.WrapError(common.ErrNotJSON, "content type and body do not look like JSON")
		return res, true
	}
	content, err := ParseJSON([]byte(body))
	if err != nil {
		res.Err = err
		return res, true
	}

	resp := NewAPIResponse(ResponseInput{
		ID:           "page-" + page.ID + "-request-" + strconv.Itoa(index),
		SourcePath:   reqURL,
		Method:       method,
		Status:       status,
		ContentType:  contentType,
		Timestamp:    firstNonEmpty(req.Get("timestamp").String(), page.Timestamp),
		Kind:         models.KindAPIResponse,
		ParentPageID: page.ID,
		Page:         page.Hostname,
		Archive:      page.Archive,
		Content:      content,
		KeyOrder:     KeyOrder([]byte(body)),
	}, n.now())

	res.Response = &resp
	res.Diagnostic.IsJSON = true
	return res, true
}

// FromJSONFile normalizes a standalone JSON entry of a package
func (n *Normalizer) FromJSONFile(name string, data []byte, archive string) Result {
	res := Result{Diagnostic: models.DiagnosticEntry{
		URL:         name,
		Method:      models.DefaultMethod,
		Status:      models.DefaultStatus,
		ContentType: models.DefaultContentType,
		Archive:     archive,
		Source:      models.SourceJSONFile,
	}}

	content, err := ParseJSON(data)
	if err != nil {
		res.Err = err
		return res
	}

	resp := NewAPIResponse(ResponseInput{
		ID:         name,
		SourcePath: name,
		Kind:       models.KindJSONFile,
		Hostname:   models.ArchiveHostname,
		Pathname:   "/" + name,
		Page:       models.ArchiveHostname,
		Archive:    archive,
		Content:    content,
		KeyOrder:   KeyOrder(data),
	}, n.now())

	res.Response = &resp
	res.Diagnostic.IsJSON = true
	return res
}

// requestContentType reads responseHeaders["content-type"] case-insensitively, then contentType
func requestContentType(req gjson.Result) string {
	var ct string
	req.Get("responseHeaders").ForEach(func(key, value gjson.Result) bool {
		if strings.EqualFold(key.String(), "content-type") {
			ct = value.String()
			return false
		}
		return true
	})
	if ct != "" {
		return ct
	}
	return req.Get("contentType").String()
}

// responseText accepts a body stored as a string or embedded as raw JSON
func responseText(r gjson.Result) string {
	switch {
	case r.Type == gjson.String:
		return r.Str
	case r.IsObject(), r.IsArray():
		return r.Raw
	default:
		return ""
	}
}
