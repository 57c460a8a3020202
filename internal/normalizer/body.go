package normalizer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
)

// DecodeBody undoes Content-Encoding and converts a declared non-UTF-8 charset to UTF-8.
// maxBytes caps the decompressed size, 0 means no cap. When a step fails the body is
// returned as it was before that step, together with the error.
func DecodeBody(body []byte, contentEncoding, contentType string, maxBytes int64) ([]byte, error) {
	decoded, err := decompress(body, contentEncoding, maxBytes)
	if err != nil {
		return body, err
	}
	return toUTF8(decoded, contentType)
}

func decompress(body []byte, contentEncoding string, maxBytes int64) ([]byte, error) {
	encodings := strings.Split(contentEncoding, ",")
	out := body
	// Encodings are listed in the order they were applied
	for i := len(encodings) - 1; i >= 0; i-- {
		enc := strings.ToLower(strings.TrimSpace(encodings[i]))
		if enc == "" || enc == "identity" {
			continue
		}
		next, err := decompressOne(out, enc, maxBytes)
		if err != nil {
			return nil, fmt.Errorf("content-encoding %s: %w", enc, err)
		}
		out = next
	}
	return out, nil
}

func decompressOne(body []byte, encoding string, maxBytes int64) ([]byte, error) {
	switch encoding {
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return readAllLimited(gz, maxBytes)
	case "deflate":
		// Servers send either zlib-wrapped or raw deflate under this name
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			out, readErr := readAllLimited(zr, maxBytes)
			zr.Close()
			if readErr == nil || errors.Is(readErr, common.ErrEntryTooLarge) {
				return out, readErr
			}
		}
		fr := flate.NewReader(bytes.NewReader(body))
		defer fr.Close()
		return readAllLimited(fr, maxBytes)
	case "br":
		return readAllLimited(brotli.NewReader(bytes.NewReader(body)), maxBytes)
	case "zstd":
		zr, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return readAllLimited(zr, maxBytes)
	default:
		return nil, fmt.Errorf("%w: content-encoding %q", common.ErrUnsupportedFormat, encoding)
	}
}

func readAllLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(out)) > maxBytes {
		return nil, common.WrapErrorf(common.ErrEntryTooLarge, "decoded body exceeds %d bytes", maxBytes)
	}
	return out, nil
}

func toUTF8(body []byte, contentType string) ([]byte, error) {
	label := charsetParam(contentType)
	if label == "" {
		return body, nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return body, fmt.Errorf("unknown charset %q", label)
	}
	if name == "utf-8" {
		return body, nil
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return body, fmt.Errorf("charset %s: %w", name, err)
	}
	return out, nil
}

func charsetParam(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(params["charset"])
}
