package warc

import (
	"net/textproto"
	"strings"
)

// Record types
const (
	TypeWarcinfo     = "warcinfo"
	TypeResponse     = "response"
	TypeResource     = "resource"
	TypeRequest      = "request"
	TypeMetadata     = "metadata"
	TypeRevisit      = "revisit"
	TypeConversion   = "conversion"
	TypeContinuation = "continuation"
)

// Header holds WARC named fields. Lookups are case-insensitive.
type Header map[string][]string

// Get returns the first value of key
func (h Header) Get(key string) string {
	return textproto.MIMEHeader(h).Get(key)
}

// Set replaces the values of key
func (h Header) Set(key, value string) {
	textproto.MIMEHeader(h).Set(key, value)
}

func (h Header) add(key, value string) {
	textproto.MIMEHeader(h).Add(key, value)
}

// Record is one WARC record with its content block read in full
type Record struct {
	Version string
	Header  Header
	Content []byte
	// Oversized is set when the block exceeded the reader's limit and was discarded
	Oversized     bool
	ContentLength int64
	// Offset is the record's position in the decompressed stream
	Offset int64
}

// Type returns the lower-cased WARC-Type
func (r *Record) Type() string {
	return strings.ToLower(strings.TrimSpace(r.Header.Get("WARC-Type")))
}

// TargetURI returns WARC-Target-URI without the angle brackets some writers add
func (r *Record) TargetURI() string {
	return trimBrackets(r.Header.Get("WARC-Target-URI"))
}

// RecordID returns the WARC-Record-ID, usually of the form <urn:uuid:...>
func (r *Record) RecordID() string {
	return strings.TrimSpace(r.Header.Get("WARC-Record-ID"))
}

// ConcurrentTo returns the WARC-Concurrent-To record id
func (r *Record) ConcurrentTo() string {
	return strings.TrimSpace(r.Header.Get("WARC-Concurrent-To"))
}

// Date returns the raw WARC-Date value
func (r *Record) Date() string {
	return strings.TrimSpace(r.Header.Get("WARC-Date"))
}

func trimBrackets(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		return s[1 : len(s)-1]
	}
	return s
}
