package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"strings"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/tidwall/gjson"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IsJSONShaped reports whether body is non-empty and its trimmed text starts with { or [
func IsJSONShaped(body []byte) bool {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(body, utf8BOM))
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// IsLikelyJSONContentType reports whether a declared content type names JSON or JavaScript
func IsLikelyJSONContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "json") || strings.Contains(ct, "javascript")
}

// ParseJSON decodes exactly one JSON value. Numbers come back as int, *big.Int or float64.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, common.WrapError(common.ErrNotJSON, err.Error())
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, common.WrapError(common.ErrNotJSON, "trailing data after JSON value")
	}
	return NormalizeNumbers(v), nil
}

// NormalizeNumbers replaces json.Number values inside v, recursively and in place
func NormalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		return normalizeNumber(t)
	case map[string]any:
		for k, child := range t {
			t[k] = NormalizeNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = NormalizeNumbers(child)
		}
		return t
	default:
		return v
	}
}

func normalizeNumber(n json.Number) any {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil && int64(int(i)) == i {
			return int(i)
		}
		if b, ok := new(big.Int).SetString(s, 10); ok {
			return b
		}
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	// Out of float64 range; keep the literal so nothing is lost
	return s
}

// KeyOrder lists the distinct object keys of a JSON document in the order they first appear,
// depth first. It returns nil for invalid JSON.
func KeyOrder(data []byte) []string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !gjson.ValidBytes(data) {
		return nil
	}

	var keys []string
	seen := make(map[string]bool)
	var walk func(r gjson.Result)
	walk = func(r gjson.Result) {
		isObject := r.IsObject()
		r.ForEach(func(k, v gjson.Result) bool {
			if isObject && !seen[k.String()] {
				seen[k.String()] = true
				keys = append(keys, k.String())
			}
			if v.IsObject() || v.IsArray() {
				walk(v)
			}
			return true
		})
	}
	walk(gjson.ParseBytes(data))
	return keys
}
