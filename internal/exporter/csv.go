package exporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/projector"
)

// Serialize renders rows as CSV text with the first row's keys as header.
// Empty input yields an empty string.
func Serialize(rows []models.Row) string {
	return SerializeColumns(rows, projector.Columns(rows))
}

// SerializeColumns renders rows against an explicit header. Missing values render empty.
func SerializeColumns(rows []models.Row, columns []string) string {
	if len(rows) == 0 {
		return ""
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(columns, ","))

	cells := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			v, ok := row.Get(col)
			if !ok {
				cells[i] = ""
				continue
			}
			cells[i] = formatCell(v)
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return quote(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatFloat(val)
	case *big.Int:
		return val.String()
	case json.Number:
		return val.String()
	case []any, map[string]any:
		return quote(compactJSON(val))
	default:
		return quote(fmt.Sprint(val))
	}
}

// quote wraps values containing a comma, quote or newline, doubling inner quotes
func quote(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatFloat switches to exponent form outside [1e-6, 1e21) like the JSON number printer
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func compactJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
