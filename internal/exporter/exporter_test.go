package exporter

import (
	"encoding/csv"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/apiextract/internal/config"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRow(kv ...any) models.Row {
	row := models.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		row.Set(kv[i].(string), kv[i+1])
	}
	return *row
}

func TestFormatCell(t *testing.T) {
	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: ""},
		{name: "plain string", value: "abc", want: "abc"},
		{name: "comma", value: "a,b", want: `"a,b"`},
		{name: "quote", value: `say "hi"`, want: `"say ""hi"""`},
		{name: "newline", value: "a\nb", want: "\"a\nb\""},
		{name: "bool", value: false, want: "false"},
		{name: "int", value: 42, want: "42"},
		{name: "float", value: 1.5, want: "1.5"},
		{name: "integral float", value: 2.0, want: "2"},
		{name: "large float", value: 1e21, want: "1e+21"},
		{name: "big int", value: huge, want: "123456789012345678901234567890"},
		{name: "array", value: []any{1, "x"}, want: `"[1,""x""]"`},
		{name: "object", value: map[string]any{"k": "<v>"}, want: `"{""k"":""<v>""}"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatCell(tt.value))
		})
	}
}

func TestSerialize(t *testing.T) {
	rows := []models.Row{
		makeRow("id", 1, "name", "a"),
		makeRow("name", "b", "extra", true),
	}

	assert.Equal(t, "id,name\n1,a\n,b", Serialize(rows))
	assert.Equal(t, "", Serialize(nil))
	assert.Equal(t, "id,name,extra\n1,a,\n,b,true", SerializeColumns(rows, []string{"id", "name", "extra"}))
}

func TestSerialize_RoundTripsThroughCSVReader(t *testing.T) {
	rows := []models.Row{
		makeRow("id", 1, "note", "plain", "tags", []any{"a", "b"}),
		makeRow("id", 2, "note", "with, comma", "tags", nil),
		makeRow("id", 3, "note", "multi\nline \"quoted\"", "tags", map[string]any{"k": 1}),
	}

	records, err := csv.NewReader(strings.NewReader(Serialize(rows))).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"id", "note", "tags"},
		{"1", "plain", `["a","b"]`},
		{"2", "with, comma", ""},
		{"3", "multi\nline \"quoted\"", `{"k":1}`},
	}, records)
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("east", -5*3600))

	assert.Equal(t, "api_data_extract_2024-03-10.csv", FileName(ts))
	assert.Equal(t, "custom_2024-03-10.csv", FileNameWithPrefix("custom", ts))
	assert.Equal(t, "api_data_extract_2024-03-10.csv", FileNameWithPrefix("", ts))
}

func TestExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	cfg := config.NewDefaultExportConfig()
	cfg.OutputDir = dir
	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := []models.Row{makeRow("a", 1), makeRow("b", 2)}
	path, err := New(cfg, zerolog.Nop()).Export(rows, ts)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "api_data_extract_2024-05-01.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))
}

func TestExporter_UnionColumns(t *testing.T) {
	cfg := config.NewDefaultExportConfig()
	cfg.OutputDir = t.TempDir()
	cfg.ColumnMode = config.ColumnModeUnion

	rows := []models.Row{makeRow("a", 1), makeRow("b", 2)}
	path, err := New(cfg, zerolog.Nop()).Export(rows, time.Now())

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\n,2", string(data))
}

func TestExporter_EmptyRowsIsNoop(t *testing.T) {
	cfg := config.NewDefaultExportConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "never")

	path, err := New(cfg, zerolog.Nop()).Export(nil, time.Now())

	require.NoError(t, err)
	assert.Empty(t, path)
	_, statErr := os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(statErr))
}
