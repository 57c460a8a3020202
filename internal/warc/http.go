package warc

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/textproto"
	"regexp"
	"strconv"
	"strings"
)

// versionlessProto matches status lines whose protocol net/http cannot parse, such as "HTTP/2 200"
var versionlessProto = regexp.MustCompile(`^HTTP/[23]\s`)

// HTTPResponse is the HTTP message stored in a response record block
type HTTPResponse struct {
	StatusCode int
	Header     http.Header
	// Body is de-chunked but still carries any Content-Encoding
	Body []byte
}

// Status returns the numeric status as text
func (hr *HTTPResponse) Status() string {
	return strconv.Itoa(hr.StatusCode)
}

// ParseHTTPResponse parses a response record block.
// A body that ends before its declared length is returned as far as it was read.
func ParseHTTPResponse(block []byte) (*HTTPResponse, error) {
	block = normalizeStatusLine(block)
	resp, err := http.ReadResponse(bufio.NewReader(bytes.NewReader(block)), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}

	header := resp.Header
	// net/http strips these into dedicated fields
	if len(resp.TransferEncoding) > 0 {
		header.Set("Transfer-Encoding", strings.Join(resp.TransferEncoding, ", "))
	}

	return &HTTPResponse{StatusCode: resp.StatusCode, Header: header, Body: body}, nil
}

// RequestMethod returns the method of the HTTP request stored in a request record block
func RequestMethod(block []byte) string {
	line, err := textproto.NewReader(bufio.NewReader(bytes.NewReader(block))).ReadLine()
	if err != nil && line == "" {
		return ""
	}
	method, _, ok := strings.Cut(line, " ")
	if !ok {
		return ""
	}
	return strings.ToUpper(method)
}

func normalizeStatusLine(block []byte) []byte {
	loc := versionlessProto.FindIndex(block)
	if loc == nil {
		return block
	}
	out := make([]byte, 0, len(block)+2)
	out = append(out, "HTTP/1.1"...)
	return append(out, block[loc[1]-1:]...)
}
