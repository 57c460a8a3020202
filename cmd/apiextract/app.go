package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/aleister1102/apiextract/internal/archive"
	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/config"
	"github.com/aleister1102/apiextract/internal/datastore"
	"github.com/aleister1102/apiextract/internal/exporter"
	"github.com/aleister1102/apiextract/internal/history"
	"github.com/aleister1102/apiextract/internal/jsonpath"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/projector"
	"github.com/aleister1102/apiextract/internal/selection"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
)

const maxSuggestionsShown = 10

// App runs one mode against one response set
type App struct {
	cfg    *config.GlobalConfig
	flags  AppFlags
	runID  string
	logger zerolog.Logger
	out    io.Writer
	now    func() time.Time
}

// NewApp wires the application for a single run
func NewApp(cfg *config.GlobalConfig, flags AppFlags, runID string, logger zerolog.Logger, out io.Writer) *App {
	return &App{
		cfg:    cfg,
		flags:  flags,
		runID:  runID,
		logger: logger.With().Str("component", "App").Logger(),
		out:    out,
		now:    time.Now,
	}
}

// Run loads the response set, applies the selection and executes the mode
func (a *App) Run(ctx context.Context) (history.RunSummary, error) {
	summary := history.RunSummary{Status: history.StatusFailed}

	result, err := a.loadResult(ctx)
	if err != nil {
		return summary, err
	}
	summary.Responses = len(result.Responses)
	summary.Pages = len(result.Pages)
	summary.Diagnostics = result.Diagnostics.Len()
	summary.Failures = len(result.Failures)

	if a.flags.SnapshotDir != "" {
		if err := a.writeSnapshot(ctx, result); err != nil {
			return summary, err
		}
	}

	sortMode, err := selection.ParseSortMode(a.flags.Sort)
	if err != nil {
		return summary, err
	}
	criteria := selection.Criteria{Search: a.flags.Search, PageIDs: a.flags.PageIDs}
	selected := selection.Sort(selection.Filter(result.Responses, result.Pages, criteria), sortMode)

	a.logger.Info().
		Int("responses", len(result.Responses)).
		Int("selected", len(selected)).
		Str("sort", string(sortMode)).
		Msg("Applied selection")

	switch a.flags.Mode {
	case ModeInspect:
		a.printInspect(result, selected)
	case ModeSuggest:
		a.printSuggestions(selected)
	default:
		rows, path, err := a.extract(selected)
		summary.Rows = rows
		summary.ExportPath = path
		if err != nil {
			return summary, err
		}
	}

	summary.Status = history.StatusCompleted
	return summary, nil
}

func (a *App) loadResult(ctx context.Context) (models.ProcessResult, error) {
	if a.flags.LoadDir != "" {
		result, err := datastore.NewParquetReader(a.logger).Read(a.flags.LoadDir)
		if err != nil {
			return result, common.WrapError(err, "failed to load snapshot")
		}
		return result, nil
	}

	processor := archive.NewProcessor(a.cfg.ArchiveConfig, a.logger).WithRunID(a.runID)
	result := processor.ProcessArchives(ctx, archive.FileInputs(a.flags.Inputs))
	if err := ctx.Err(); err != nil {
		return result, common.WrapError(err, "processing interrupted")
	}
	for _, f := range result.Failures {
		a.logger.Warn().Str("archive", f.Archive).Str("error", f.Error).Msg("Archive could not be fully decoded")
	}
	return result, nil
}

func (a *App) writeSnapshot(ctx context.Context, result models.ProcessResult) error {
	writer, err := datastore.NewParquetWriter(&a.cfg.StorageConfig, a.logger)
	if err != nil {
		return err
	}
	dir := a.flags.SnapshotDir
	if dir == SnapshotAuto {
		dir = ""
	}
	written, err := writer.Write(ctx, result, dir)
	if err != nil {
		return common.WrapError(err, "failed to write snapshot")
	}
	a.logger.Info().Str("directory", written.Directory).Msg("Snapshot available for -load")
	return nil
}

// extract projects the selected responses and writes the CSV. An empty path falls back to the suggestion.
func (a *App) extract(selected []models.ApiResponse) (int, string, error) {
	path := a.flags.Path
	if path == "" {
		path = selection.SuggestPath(selected)
		if path == "" {
			a.logger.Warn().Msg("No path given and no array found to suggest, nothing to export")
			return 0, "", nil
		}
		a.logger.Info().Str("path", path).Msg("No path given, using suggested path")
	}

	evaluator := jsonpath.NewEvaluator(a.cfg.ExtractorConfig, a.logger)
	rows := projector.New(evaluator, a.logger).Project(selected, path)

	exportPath, err := exporter.New(a.cfg.ExportConfig, a.logger).Export(rows, a.now())
	if err != nil {
		return len(rows), "", err
	}
	if exportPath == "" {
		fmt.Fprintln(a.out, "No rows to export")
		return 0, "", nil
	}
	fmt.Fprintln(a.out, exportPath)
	return len(rows), exportPath, nil
}

func (a *App) printInspect(result models.ProcessResult, selected []models.ApiResponse) {
	shownPages := selection.FilterPages(result.Pages, a.flags.Search)
	fmt.Fprintf(a.out, "Run %s\n\nPages (%d of %d)\n", result.RunID, len(shownPages), len(result.Pages))
	pages := newTable(a.out, []string{"ID", "URL", "Title", "Timestamp", "Archive"})
	for _, p := range shownPages {
		pages.Append([]string{p.ID, p.URL, p.Title, p.Timestamp, p.Archive})
	}
	pages.Render()

	fmt.Fprintf(a.out, "\nResponses (%d of %d)\n", len(selected), len(result.Responses))
	responses := newTable(a.out, []string{"ID", "Method", "Status", "URL", "Page", "Type", "Size"})
	for _, r := range selected {
		responses.Append([]string{
			r.ID, r.Method, r.Status, r.SourcePath, r.Page, string(r.Kind),
			strconv.Itoa(selection.ContentSize(r.Content)),
		})
	}
	responses.Render()

	fmt.Fprintf(a.out, "\nDiagnostics (%d entries, %d JSON)\n", result.Diagnostics.Len(), result.Diagnostics.JSONCount())
	for _, group := range result.Diagnostics.ByPage() {
		label := group.PageURL
		if label == "" {
			label = "(no page)"
		}
		fmt.Fprintf(a.out, "\n%s\n", label)
		diag := newTable(a.out, []string{"Method", "Status", "JSON", "Content-Type", "URL", "Source"})
		for _, e := range group.Entries {
			diag.Append([]string{e.Method, e.Status, strconv.FormatBool(e.IsJSON), e.ContentType, e.URL, e.Source})
		}
		diag.Render()
	}

	if len(result.Failures) > 0 {
		fmt.Fprintf(a.out, "\nFailures (%d)\n", len(result.Failures))
		failures := newTable(a.out, []string{"Archive", "Error"})
		for _, f := range result.Failures {
			failures.Append([]string{f.Archive, f.Error})
		}
		failures.Render()
	}
}

func (a *App) printSuggestions(selected []models.ApiResponse) {
	suggestions := selection.Suggestions(selected)
	if len(suggestions) == 0 {
		fmt.Fprintln(a.out, "No array found in the selected responses")
		return
	}

	fmt.Fprintln(a.out, suggestions[0].Path)
	if len(suggestions) > maxSuggestionsShown {
		suggestions = suggestions[:maxSuggestionsShown]
	}
	table := newTable(a.out, []string{"Path", "Responses", "Avg Items"})
	for _, s := range suggestions {
		table.Append([]string{s.Path, strconv.Itoa(s.Occurrences), strconv.FormatFloat(s.AverageLength, 'f', 1, 64)})
	}
	table.Render()
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	return table
}
