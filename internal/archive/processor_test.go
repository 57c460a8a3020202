package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aleister1102/apiextract/internal/config"
	"github.com/aleister1102/apiextract/internal/jsonpath"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/projector"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	cfg := config.NewDefaultArchiveConfig()
	tests := map[string]Format{
		"crawl.warc":     FormatRecords,
		"crawl.WARC.GZ":  FormatRecords,
		"bundle.wacz":    FormatPackage,
		"notes.txt":      FormatUnknown,
		"crawl.warc.zip": FormatUnknown,
	}
	for name, want := range tests {
		assert.Equal(t, want, DetectFormat(name, cfg.RecordExtensions, cfg.PackageExtensions), name)
	}
	assert.Equal(t, "wacz", FormatPackage.String())
}

func TestProcessArchives_EndToEndPackage(t *testing.T) {
	sidecar := strings.Join([]string{
		`{"format":"json-pages-1.0","id":"pages","title":"All Pages"}`,
		`{"id":"p1","url":"https://shop.example.com/","title":"Shop","ts":"2024-02-01T00:00:00Z","requests":[` +
			sidecarRequest("https://api.example.com/a", itemsBody("a")) + "," +
			sidecarRequest("https://api.example.com/b", itemsBody("b")) + "," +
			sidecarRequest("https://api.example.com/c", itemsBody("c")) + `]}`,
		`{"id":"p2","url":"https://shop.example.com/empty","title":"Empty"}`,
		"",
	}, "\n")

	wacz := buildZip(t,
		zipEntry{name: "archive/data.warc", data: buildWARC(htmlResponse("https://shop.example.com/", "<urn:uuid:h1>"))},
		zipEntry{name: "pages/pages.jsonl", data: []byte(sidecar)},
		zipEntry{name: "datapackage.json", data: []byte(`{"resources":[]}`)},
		zipEntry{name: "datapackage-digest.json", data: []byte(`{"hash":"x"}`)},
		zipEntry{name: "extra/export.json", data: []byte(`{"exported":true}`)},
	)

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{BytesInput("bundle.wacz", wacz)})

	require.Empty(t, result.Failures)
	assert.Equal(t, "test-run", result.RunID)
	require.Len(t, result.Pages, 2)
	assert.Equal(t, "p1", result.Pages[0].ID)
	assert.Equal(t, "Shop", result.Pages[0].Title)
	assert.Equal(t, "p2", result.Pages[1].ID)
	assert.Equal(t, "2024-06-01T12:00:00Z", result.Pages[1].Timestamp)

	require.Len(t, result.Responses, 4)
	var linked []models.ApiResponse
	for _, r := range result.Responses[:3] {
		assert.Equal(t, models.KindAPIResponse, r.Kind)
		assert.Equal(t, "p1", r.ParentPageID)
		assert.Equal(t, "shop.example.com", r.Page)
		assert.Equal(t, "2024-02-01T00:00:00Z", r.Timestamp)
		linked = append(linked, r)
	}
	assert.Equal(t, "page-p1-request-0", result.Responses[0].ID)
	assert.Equal(t, "page-p1-request-2", result.Responses[2].ID)

	loose := result.Responses[3]
	assert.Equal(t, models.KindJSONFile, loose.Kind)
	assert.Equal(t, "extra/export.json", loose.ID)
	assert.False(t, loose.HasPage())

	// html record + 3 sidecar requests + 1 json file
	assert.Equal(t, 5, result.Diagnostics.Len())
	assert.Equal(t, 4, result.Diagnostics.JSONCount())

	evaluator := jsonpath.NewEvaluator(config.NewDefaultExtractorConfig(), zerolog.Nop())
	rows := projector.New(evaluator, zerolog.Nop()).Project(linked, "data.items")
	assert.Len(t, rows, 6)
}

func TestProcessArchives_MalformedFileDoesNotBlockNext(t *testing.T) {
	good := buildWARC(jsonResponse("https://api.example.com/ok", "<urn:uuid:1>", `{"ok":true}`))

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{
		BytesInput("broken.warc.gz", []byte{0x1f, 0x8b, 0x08, 0x00, 0xde, 0xad}),
		BytesInput("good.warc", good),
	})

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "broken.warc.gz", result.Failures[0].Archive)
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "<urn:uuid:1>", result.Responses[0].ID)
	assert.Equal(t, "good.warc", result.Responses[0].Archive)
}

func TestProcessArchives_CorruptZipDoesNotBlockNext(t *testing.T) {
	good := buildWARCGz(t, jsonResponse("https://api.example.com/ok", "<urn:uuid:1>", `[1]`))

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{
		BytesInput("broken.wacz", []byte("PK not really a zip")),
		BytesInput("good.warc.gz", good),
	})

	require.Len(t, result.Failures, 1)
	assert.Len(t, result.Responses, 1)
}

func TestProcessArchives_UnsupportedSkipped(t *testing.T) {
	result := newTestProcessor().ProcessArchives(context.Background(), []Input{BytesInput("notes.txt", []byte("hi"))})

	assert.Equal(t, []string{"notes.txt"}, result.Skipped)
	assert.Empty(t, result.Responses)
	assert.Empty(t, result.Failures)
}

func TestProcessArchives_RecordStream(t *testing.T) {
	data := buildWARCGz(t,
		warcRecord{warcType: "warcinfo", block: "software: test\r\n"},
		requestRecord("https://api.example.com/create", "<urn:uuid:req1>", "<urn:uuid:r1>", "POST"),
		jsonResponse("https://api.example.com/create", "<urn:uuid:r1>", `{"id":1}`),
		jsonResponse("https://api.example.com/update", "<urn:uuid:r2>", `{"id":2}`),
		requestRecord("https://api.example.com/update", "<urn:uuid:req2>", "<urn:uuid:r2>", "PUT"),
		htmlResponse("https://www.example.com/", "<urn:uuid:r3>"),
		jsonResponse("https://api.example.com/noid", "", `[]`),
		warcRecord{warcType: "revisit", target: "https://api.example.com/create", block: ""},
	)

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{BytesInput("crawl.warc.gz", data)})

	require.Empty(t, result.Failures)
	require.Len(t, result.Responses, 3)
	assert.Equal(t, "POST", result.Responses[0].Method)
	assert.Equal(t, "PUT", result.Responses[1].Method)
	assert.Equal(t, "record-3", result.Responses[2].ID)
	assert.Equal(t, "GET", result.Responses[2].Method)
	assert.Equal(t, "api.example.com", result.Responses[0].Hostname)
	assert.Equal(t, "/create", result.Responses[0].Pathname)
	assert.Equal(t, "2024-01-01T00:00:00Z", result.Responses[0].Timestamp)

	require.Equal(t, 4, result.Diagnostics.Len())
	assert.Equal(t, "PUT", result.Diagnostics.Entries[1].Method)
	assert.False(t, result.Diagnostics.Entries[2].IsJSON)
}

func TestProcessArchives_NonExchangeRecordsSkipped(t *testing.T) {
	data := buildWARC(
		warcRecord{warcType: "warcinfo", block: "software: test\r\n"},
		warcRecord{warcType: "metadata", target: "https://a.example.com/x", block: "outlink: https://a.example.com/y\r\n"},
		warcRecord{warcType: "conversion", target: "https://a.example.com/x", block: `{"converted":true}`},
		warcRecord{warcType: "x-custom", target: "https://a.example.com/x", block: `{"custom":true}`},
		jsonResponse("https://a.example.com/x", "<urn:uuid:r>", `{"ok":1}`),
	)

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{BytesInput("a.warc", data)})

	require.Empty(t, result.Failures)
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "<urn:uuid:r>", result.Responses[0].ID)
	assert.Equal(t, 1, result.Diagnostics.Len())
}

func TestProcessArchives_DuplicateIDsAcrossFiles(t *testing.T) {
	wacz := func() []byte {
		return buildZip(t,
			zipEntry{name: "pages.jsonl", data: []byte(`{"id":"p1","url":"https://a.example.com/","requests":[` + sidecarRequest("https://a.example.com/api", `{"v":1}`) + `]}`)},
		)
	}

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{
		BytesInput("one.wacz", wacz()),
		BytesInput("two.wacz", wacz()),
	})

	require.Len(t, result.Pages, 2)
	assert.Equal(t, "p1", result.Pages[0].ID)
	assert.Equal(t, "p1#2", result.Pages[1].ID)

	require.Len(t, result.Responses, 2)
	assert.Equal(t, "page-p1-request-0", result.Responses[0].ID)
	assert.Equal(t, "p1", result.Responses[0].ParentPageID)
	assert.Equal(t, "page-p1#2-request-0", result.Responses[1].ID)
	assert.Equal(t, "p1#2", result.Responses[1].ParentPageID)
	assert.Equal(t, "p1#2", result.Diagnostics.Entries[1].PageID)
}

func TestProcessArchives_DuplicatePageIDInOneSidecar(t *testing.T) {
	sidecar := strings.Join([]string{
		`{"id":"p1","url":"https://a.example.com/","requests":[` + sidecarRequest("https://a.example.com/first", `{"n":1}`) + `]}`,
		`{"id":"p1","url":"https://b.example.com/","requests":[` + sidecarRequest("https://b.example.com/second", `{"n":2}`) + `]}`,
	}, "\n")
	wacz := buildZip(t, zipEntry{name: "pages/pages.jsonl", data: []byte(sidecar)})

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{BytesInput("dup.wacz", wacz)})

	require.Len(t, result.Pages, 2)
	assert.Equal(t, "p1", result.Pages[0].ID)
	assert.Equal(t, "p1#2", result.Pages[1].ID)

	require.Len(t, result.Responses, 2)
	assert.Equal(t, "https://a.example.com/first", result.Responses[0].SourcePath)
	assert.Equal(t, "p1", result.Responses[0].ParentPageID)
	assert.Equal(t, "https://b.example.com/second", result.Responses[1].SourcePath)
	assert.Equal(t, "p1#2", result.Responses[1].ParentPageID)

	require.Len(t, result.Diagnostics.Entries, 2)
	assert.Equal(t, "p1", result.Diagnostics.Entries[0].PageID)
	assert.Equal(t, "p1#2", result.Diagnostics.Entries[1].PageID)
}

func TestProcessArchives_SidecarEdgeCases(t *testing.T) {
	sidecar := strings.Join([]string{
		`{"url":"https://a.example.com/one"}`,
		`{not json`,
		`[1,2,3]`,
		`{"url":"https://a.example.com/two","requests":"not-an-array"}`,
		`{"title":"no url"}`,
	}, "\n")
	wacz := buildZip(t, zipEntry{name: "pages/pages.jsonl", data: []byte(sidecar)})

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{BytesInput("a.wacz", wacz)})

	require.Empty(t, result.Failures)
	require.Len(t, result.Pages, 3)
	assert.Equal(t, "page-0", result.Pages[0].ID)
	assert.Equal(t, "page-1", result.Pages[1].ID)
	assert.Equal(t, "page-2", result.Pages[2].ID)
	assert.Equal(t, "unknown-url", result.Pages[2].URL)
	assert.Empty(t, result.Responses)
}

func TestProcessArchives_FailingEntryDoesNotStopOthers(t *testing.T) {
	wacz := buildZip(t,
		zipEntry{name: "archive/bad.warc", data: []byte("garbage that is not a warc\n")},
		zipEntry{name: "archive/good.warc", data: buildWARC(jsonResponse("https://a.example.com/x", "<urn:uuid:g>", `{"g":1}`))},
	)

	result := newTestProcessor().ProcessArchives(context.Background(), []Input{BytesInput("mixed.wacz", wacz)})

	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Error, "archive/bad.warc")
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "<urn:uuid:g>", result.Responses[0].ID)
}

func TestProcessArchives_EntrySizeLimit(t *testing.T) {
	cfg := config.NewDefaultArchiveConfig()
	cfg.MaxEntrySizeMB = 1
	big := `{"pad":"` + strings.Repeat("x", 2*1024*1024) + `"}`
	wacz := buildZip(t,
		zipEntry{name: "huge.json", data: []byte(big)},
		zipEntry{name: "small.json", data: []byte(`{"ok":1}`)},
	)

	result := NewProcessor(cfg, zerolog.Nop()).ProcessArchives(context.Background(), []Input{BytesInput("a.wacz", wacz)})

	require.Len(t, result.Responses, 1)
	assert.Equal(t, "small.json", result.Responses[0].ID)
}

func TestProcessArchives_OversizedSidecarIsRecordedAsFailure(t *testing.T) {
	cfg := config.NewDefaultArchiveConfig()
	cfg.MaxEntrySizeMB = 1
	sidecar := `{"url":"https://a.example.com/","title":"` + strings.Repeat("x", 2*1024*1024) + `"}`
	wacz := buildZip(t,
		zipEntry{name: "pages/pages.jsonl", data: []byte(sidecar)},
		zipEntry{name: "small.json", data: []byte(`{"ok":1}`)},
	)

	result := NewProcessor(cfg, zerolog.Nop()).ProcessArchives(context.Background(), []Input{BytesInput("a.wacz", wacz)})

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "a.wacz", result.Failures[0].Archive)
	assert.Contains(t, result.Failures[0].Error, "pages/pages.jsonl")
	assert.Empty(t, result.Pages)
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "small.json", result.Responses[0].ID)
}

func TestProcessArchives_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestProcessor().ProcessArchives(ctx, []Input{
		BytesInput("a.warc", buildWARC(jsonResponse("https://a/", "<urn:uuid:1>", `{}`))),
	})

	assert.Empty(t, result.Responses)
	assert.Empty(t, result.Failures)
}

func TestProcessArchives_FileInputFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.warc")
	require.NoError(t, os.WriteFile(path, buildWARC(jsonResponse("https://a.example.com/", "<urn:uuid:d>", `{"d":1}`)), 0644))

	result := newTestProcessor().ProcessArchives(context.Background(), FileInputs([]string{path, filepath.Join(dir, "missing.warc")}))

	require.Len(t, result.Responses, 1)
	assert.Equal(t, "disk.warc", result.Responses[0].Archive)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "missing.warc", result.Failures[0].Archive)
}

func TestProcessArchives_GeneratesRunID(t *testing.T) {
	result := NewProcessor(config.NewDefaultArchiveConfig(), zerolog.Nop()).ProcessArchives(context.Background(), nil)
	assert.Len(t, result.RunID, 36)
}

func TestUniqueID(t *testing.T) {
	seen := map[string]int{}
	assert.Equal(t, "a", uniqueID("a", seen))
	assert.Equal(t, "a#2", uniqueID("a", seen))
	assert.Equal(t, "a#3", uniqueID("a", seen))
	// an original id that looks like a generated suffix is also kept unique
	assert.Equal(t, "b#2", uniqueID("b#2", seen))
	assert.Equal(t, "b", uniqueID("b", seen))
	assert.Equal(t, "b#3", uniqueID("b", seen))
}
