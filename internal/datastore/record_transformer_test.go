package datastore

import (
	"testing"

	"github.com/aleister1102/apiextract/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTransformer_Response(t *testing.T) {
	rt := NewRecordTransformer(zerolog.Nop())
	original := sampleResult().Responses[0]

	stored, err := rt.ToParquetResponse(original, "run-1", 1700000000000)
	require.NoError(t, err)

	assert.Equal(t, "run-1", stored.RunID)
	assert.Equal(t, `{"id":98765432109876543210,"items":[1,2.5,"x"]}`, stored.ContentJSON)
	require.NotNil(t, stored.ParentPageID)
	assert.Equal(t, "p1", *stored.ParentPageID)
	assert.Equal(t, int64(1700000000000), stored.SnapshotAt)

	restored, err := rt.FromParquetResponse(stored)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestRecordTransformer_OptionalColumns(t *testing.T) {
	rt := NewRecordTransformer(zerolog.Nop())
	loose := sampleResult().Responses[1]

	stored, err := rt.ToParquetResponse(loose, "run-1", 0)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentPageID)
	assert.Nil(t, stored.Archive)

	page := rt.ToParquetPage(models.Page{ID: "p2"}, "run-1", 0)
	assert.Nil(t, page.Title)
	assert.Equal(t, models.Page{ID: "p2"}, rt.FromParquetPage(page))
}

func TestRecordTransformer_CorruptContent(t *testing.T) {
	rt := NewRecordTransformer(zerolog.Nop())

	_, err := rt.FromParquetResponse(models.ParquetResponse{ID: "bad", ContentJSON: "{oops"})
	assert.Error(t, err)
}

func TestRecordTransformer_UnmarshalableContent(t *testing.T) {
	rt := NewRecordTransformer(zerolog.Nop())

	_, err := rt.ToParquetResponse(models.ApiResponse{ID: "x", Content: make(chan int)}, "run", 0)
	assert.Error(t, err)
}
