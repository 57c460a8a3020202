package archive

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/apiextract/internal/config"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestProcessor() *Processor {
	return NewProcessor(config.NewDefaultArchiveConfig(), zerolog.Nop()).
		WithRunID("test-run").
		WithClock(func() time.Time { return fixedNow })
}

type warcRecord struct {
	warcType     string
	target       string
	id           string
	concurrentTo string
	block        string
}

func (r warcRecord) String() string {
	var b strings.Builder
	b.WriteString("WARC/1.1\r\n")
	fmt.Fprintf(&b, "WARC-Type: %s\r\n", r.warcType)
	if r.target != "" {
		fmt.Fprintf(&b, "WARC-Target-URI: %s\r\n", r.target)
	}
	if r.id != "" {
		fmt.Fprintf(&b, "WARC-Record-ID: %s\r\n", r.id)
	}
	if r.concurrentTo != "" {
		fmt.Fprintf(&b, "WARC-Concurrent-To: %s\r\n", r.concurrentTo)
	}
	b.WriteString("WARC-Date: 2024-01-01T00:00:00Z\r\n")
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(r.block))
	b.WriteString(r.block)
	b.WriteString("\r\n\r\n")
	return b.String()
}

func jsonResponse(target, id, body string) warcRecord {
	return warcRecord{
		warcType: "response",
		target:   target,
		id:       id,
		block:    "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\n\r\n" + body,
	}
}

func htmlResponse(target, id string) warcRecord {
	return warcRecord{
		warcType: "response",
		target:   target,
		id:       id,
		block:    "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n<html></html>",
	}
}

func requestRecord(target, id, concurrentTo, method string) warcRecord {
	return warcRecord{
		warcType:     "request",
		target:       target,
		id:           id,
		concurrentTo: concurrentTo,
		block:        method + " / HTTP/1.1\r\nHost: example.com\r\n\r\n",
	}
}

func buildWARC(records ...warcRecord) []byte {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.String())
	}
	return []byte(b.String())
}

func buildWARCGz(t *testing.T, records ...warcRecord) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, r := range records {
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(r.String()))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
	}
	return buf.Bytes()
}

type zipEntry struct {
	name string
	data []byte
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func itemsBody(prefix string) string {
	return fmt.Sprintf(`{"data":{"items":[{"name":"%s-1"},{"name":"%s-2"}]}}`, prefix, prefix)
}

// sidecarRequest renders one request descriptor with its body embedded as a JSON string
func sidecarRequest(url, body string) string {
	quoted := strings.ReplaceAll(body, `"`, `\"`)
	return fmt.Sprintf(`{"url":"%s","method":"GET","status":200,"contentType":"application/json","response":"%s"}`, url, quoted)
}
