package warc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// ReaderOptions tunes a Reader
type ReaderOptions struct {
	// MaxRecordBytes discards content blocks larger than this, 0 means no limit
	MaxRecordBytes int64
}

// Reader streams records out of a WARC file. Gzip input, including one member
// per record, is detected from the magic bytes and decoded transparently.
type Reader struct {
	br      *bufio.Reader
	gz      *gzip.Reader
	opts    ReaderOptions
	offset  int64
	records int
}

// NewReader wraps r. It fails when r looks gzipped but the gzip header is invalid.
func NewReader(r io.Reader, opts ReaderOptions) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	reader := &Reader{opts: opts}

	magic, err := br.Peek(2)
	if err == nil && bytes.Equal(magic, gzipMagic) {
		gz, gzErr := gzip.NewReader(br)
		if gzErr != nil {
			return nil, common.WrapError(common.ErrMalformedContainer, "invalid gzip header: "+gzErr.Error())
		}
		gz.Multistream(true)
		reader.gz = gz
		reader.br = bufio.NewReaderSize(gz, 64*1024)
		return reader, nil
	}

	reader.br = br
	return reader, nil
}

// Close releases the gzip decoder, if any. The underlying reader is not closed.
func (r *Reader) Close() error {
	if r.gz != nil {
		return r.gz.Close()
	}
	return nil
}

// Next returns the next record, or io.EOF after the last one.
// Errors other than io.EOF wrap common.ErrMalformedContainer.
func (r *Reader) Next() (*Record, error) {
	version, err := r.readVersionLine()
	if err != nil {
		return nil, err
	}

	record := &Record{Version: version, Header: make(Header), Offset: r.offset}
	if err := r.readHeader(record.Header); err != nil {
		return nil, r.malformed(err, "header")
	}

	lengthField := strings.TrimSpace(record.Header.Get("Content-Length"))
	length, err := strconv.ParseInt(lengthField, 10, 64)
	if err != nil || length < 0 {
		return nil, r.malformed(fmt.Errorf("bad Content-Length %q", lengthField), "header")
	}
	record.ContentLength = length

	if r.opts.MaxRecordBytes > 0 && length > r.opts.MaxRecordBytes {
		n, err := io.CopyN(io.Discard, r.br, length)
		r.offset += n
		if err != nil {
			return nil, r.malformed(err, "block")
		}
		record.Oversized = true
	} else {
		record.Content = make([]byte, length)
		n, err := io.ReadFull(r.br, record.Content)
		r.offset += int64(n)
		if err != nil {
			return nil, r.malformed(err, "block")
		}
	}

	r.records++
	return record, nil
}

// readVersionLine skips the blank lines separating records and returns the WARC/x.y marker.
func (r *Reader) readVersionLine() (string, error) {
	for {
		line, err := r.readLine()
		if line == "" {
			if err == nil {
				continue
			}
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", r.malformed(err, "version line")
		}
		if !strings.HasPrefix(line, "WARC/") {
			return "", r.malformed(fmt.Errorf("expected WARC version line, got %q", truncate(line, 40)), "version line")
		}
		return line, nil
	}
}

func (r *Reader) readHeader(h Header) error {
	var lastKey string
	for {
		line, err := r.readLine()
		if err != nil && line == "" {
			return err
		}
		if line == "" {
			return nil
		}
		if (line[0] == ' ' || line[0] == '\t') && lastKey != "" {
			values := h[lastKey]
			values[len(values)-1] += " " + strings.TrimSpace(line)
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("invalid header line %q", truncate(line, 40))
		}
		key = strings.TrimSpace(key)
		h.add(key, strings.TrimSpace(value))
		lastKey = textproto.CanonicalMIMEHeaderKey(key)
	}
}

// readLine returns one line without its CRLF or LF terminator.
func (r *Reader) readLine() (string, error) {
	line, err := r.br.ReadString('\n')
	r.offset += int64(len(line))
	return strings.TrimRight(line, "\r\n"), err
}

func (r *Reader) malformed(err error, stage string) error {
	return fmt.Errorf("%w: record %d %s at offset %d: %v", common.ErrMalformedContainer, r.records+1, stage, r.offset, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
