package projector

import (
	"fmt"
	"testing"

	"github.com/aleister1102/apiextract/internal/config"
	"github.com/aleister1102/apiextract/internal/jsonpath"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var metadataColumns = []string{
	ColumnSource, ColumnURL, ColumnPathname, ColumnHostname, ColumnMethod,
	ColumnStatus, ColumnTimestamp, ColumnPage, ColumnType,
}

func newTestProjector() *Projector {
	evaluator := jsonpath.NewEvaluator(config.NewDefaultExtractorConfig(), zerolog.Nop())
	return New(evaluator, zerolog.Nop())
}

func testResponse(content any) models.ApiResponse {
	return models.ApiResponse{
		ID:         "r1",
		SourcePath: "https://api.example.com/v1/items?page=1",
		Pathname:   "/v1/items",
		Hostname:   "api.example.com",
		Method:     "GET",
		Status:     "200",
		Content:    content,
		Timestamp:  "2024-01-01T00:00:00Z",
		Kind:       models.KindAPIResponse,
		Page:       "shop.example.com",
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantKeys []string
		want     map[string]any
	}{
		{
			name:     "nested object and array",
			value:    map[string]any{"a": map[string]any{"b": 1}, "c": []any{1, 2}},
			wantKeys: []string{"a.b", "c"},
			want:     map[string]any{"a.b": 1, "c": []any{1, 2}},
		},
		{
			name:     "keys sorted per object",
			value:    map[string]any{"z": 1, "m": map[string]any{"y": 2, "b": 3}, "a": nil},
			wantKeys: []string{"a", "m.b", "m.y", "z"},
			want:     map[string]any{"a": nil, "m.b": 3, "m.y": 2, "z": 1},
		},
		{
			name:     "empty nested object disappears",
			value:    map[string]any{"a": map[string]any{}, "b": true},
			wantKeys: []string{"b"},
			want:     map[string]any{"b": true},
		},
		{
			name:     "scalar",
			value:    "text",
			wantKeys: []string{ScalarKey},
			want:     map[string]any{ScalarKey: "text"},
		},
		{
			name:     "null",
			value:    nil,
			wantKeys: []string{ScalarKey},
			want:     map[string]any{ScalarKey: nil},
		},
		{
			name:     "top-level array by index",
			value:    []any{[]any{1, 2}, map[string]any{"k": "v"}, 3},
			wantKeys: []string{"0", "1.k", "2"},
			want:     map[string]any{"0": []any{1, 2}, "1.k": "v", "2": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := Flatten(tt.value)
			assert.Equal(t, tt.wantKeys, row.Keys)
			assert.Equal(t, tt.want, row.Values)
		})
	}
}

func TestProject_ArrayYieldsRowPerElement(t *testing.T) {
	content := map[string]any{
		"data": map[string]any{
			"items": []any{
				map[string]any{"id": 1, "name": "a"},
				map[string]any{"id": 2, "name": "b"},
			},
		},
	}

	rows := newTestProjector().Project([]models.ApiResponse{testResponse(content)}, "data.items")

	require.Len(t, rows, 2)
	assert.Equal(t, append([]string{"id", "name"}, metadataColumns...), rows[0].Keys)
	assert.Equal(t, 2, rows[1].Values["id"])
	assert.Equal(t, "https://api.example.com/v1/items?page=1", rows[1].Values[ColumnURL])
	assert.Equal(t, "api_response", rows[1].Values[ColumnType])
}

func TestProject_MetadataOverwritesContent(t *testing.T) {
	content := map[string]any{"status": "archived", "name": "x"}

	rows := newTestProjector().Project([]models.ApiResponse{testResponse(content)}, ".")

	require.Len(t, rows, 1)
	assert.Equal(t, "200", rows[0].Values[ColumnStatus])
	// The overwritten key keeps its content position
	assert.Equal(t, "status", rows[0].Keys[1])
	assert.Equal(t, 10, rows[0].Len())
}

func TestProject_NonArrayResults(t *testing.T) {
	responses := []models.ApiResponse{
		testResponse(map[string]any{"total": 5}),
		testResponse(map[string]any{"other": 1}),
	}

	rows := newTestProjector().Project(responses, "total")

	require.Len(t, rows, 2)
	assert.Equal(t, 5, rows[0].Values[ScalarKey])
	// Absent path still yields one row holding null
	v, ok := rows[1].Get(ScalarKey)
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestProject_EmptyPathIsIdentity(t *testing.T) {
	responses := []models.ApiResponse{
		testResponse(map[string]any{"k": 1}),
		testResponse(map[string]any{"k": 2}),
	}

	for _, path := range []string{"", "  ", "."} {
		t.Run(fmt.Sprintf("%q", path), func(t *testing.T) {
			rows := newTestProjector().Project(responses, path)

			require.Len(t, rows, 2)
			assert.Equal(t, "k", rows[0].Keys[0])
			assert.Equal(t, 1, rows[0].Values["k"])
			assert.Equal(t, 2, rows[1].Values["k"])
		})
	}
}

func TestFlattenOrdered(t *testing.T) {
	value := map[string]any{
		"zeta":  1,
		"alpha": map[string]any{"y": 2, "x": 3},
		"extra": true,
	}

	row := FlattenOrdered(value, []string{"zeta", "alpha", "y", "x"})

	assert.Equal(t, []string{"zeta", "alpha.y", "alpha.x", "extra"}, row.Keys)
	assert.Equal(t, []string{"alpha.x", "alpha.y", "extra", "zeta"}, Flatten(value).Keys)
}

func TestProject_FollowsDocumentKeyOrder(t *testing.T) {
	resp := testResponse(map[string]any{
		"items": []any{map[string]any{"name": "a", "id": 1}},
	})
	resp.KeyOrder = []string{"items", "name", "id"}

	rows := newTestProjector().Project([]models.ApiResponse{resp}, "items")

	require.Len(t, rows, 1)
	assert.Equal(t, append([]string{"name", "id"}, metadataColumns...), rows[0].Keys)
}

func TestProject_EmptyArrayYieldsNoRows(t *testing.T) {
	rows := newTestProjector().Project([]models.ApiResponse{testResponse(map[string]any{"items": []any{}})}, "items")
	assert.Empty(t, rows)
}

type panicEvaluator struct{}

func (panicEvaluator) Evaluate(value any, path string) any {
	if m, ok := value.(map[string]any); ok && m["explode"] == true {
		panic("boom")
	}
	return value
}

func TestProject_PanicSkipsResponse(t *testing.T) {
	p := New(panicEvaluator{}, zerolog.Nop())
	responses := []models.ApiResponse{
		testResponse(map[string]any{"explode": true}),
		testResponse(map[string]any{"ok": 1}),
	}

	var rows []models.Row
	assert.NotPanics(t, func() { rows = p.Project(responses, ".") })
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Values["ok"])
}

func TestColumns(t *testing.T) {
	first := models.NewRow()
	first.Set("a", 1)
	first.Set("b", 2)
	second := models.NewRow()
	second.Set("c", 3)
	second.Set("a", 4)
	rows := []models.Row{*first, *second}

	assert.Equal(t, []string{"a", "b"}, Columns(rows))
	assert.Equal(t, []string{"a", "b", "c"}, UnionColumns(rows))
	assert.Nil(t, Columns(nil))
	assert.Nil(t, UnionColumns(nil))
}
