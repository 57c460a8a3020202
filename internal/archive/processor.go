package archive

import (
	"context"
	"strconv"
	"time"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/config"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/normalizer"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Processor decodes archives into responses, pages and a diagnostic log.
// Files are processed one after another in input order.
type Processor struct {
	cfg        config.ArchiveConfig
	logger     zerolog.Logger
	normalizer *normalizer.Normalizer
	runID      string
}

// NewProcessor creates a Processor for the given archive settings
func NewProcessor(cfg config.ArchiveConfig, logger zerolog.Logger) *Processor {
	return &Processor{
		cfg:        cfg,
		logger:     logger.With().Str("component", "ArchiveProcessor").Logger(),
		normalizer: normalizer.NewNormalizer(logger, cfg.MaxEntryBytes()),
	}
}

// WithRunID tags results with an existing run id instead of generating one
func (p *Processor) WithRunID(runID string) *Processor {
	p.runID = runID
	return p
}

// WithClock replaces the time source used for missing timestamps
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.normalizer.WithClock(now)
	return p
}

// runState is shared by all files of one ProcessArchives call
type runState struct {
	recordCount int
	pageCount   int
	responseIDs map[string]int
	pageIDs     map[string]int
}

func newRunState() *runState {
	return &runState{
		responseIDs: make(map[string]int),
		pageIDs:     make(map[string]int),
	}
}

func (s *runState) nextRecordID() string {
	id := "record-" + strconv.Itoa(s.recordCount)
	s.recordCount++
	return id
}

func (s *runState) nextPageID() string {
	id := "page-" + strconv.Itoa(s.pageCount)
	s.pageCount++
	return id
}

// fileResult collects one file's entities before they are merged
type fileResult struct {
	responses   []models.ApiResponse
	pages       []models.Page
	diagnostics models.DiagnosticLog
	failures    []models.FileFailure
}

// ProcessArchives decodes every input in order. A failing file is logged and recorded
// in the result's Failures; it never stops the remaining files. Cancellation stops
// the run between files and records and returns what was decoded so far.
func (p *Processor) ProcessArchives(ctx context.Context, inputs []Input) models.ProcessResult {
	runID := p.runID
	if runID == "" {
		runID = uuid.NewString()
	}
	result := models.ProcessResult{RunID: runID}
	state := newRunState()
	started := time.Now()

	for _, in := range inputs {
		if check := common.CheckCancellationWithLog(ctx, p.logger, "process archives"); check.Cancelled {
			break
		}

		format := DetectFormat(in.Name, p.cfg.RecordExtensions, p.cfg.PackageExtensions)
		if format == FormatUnknown {
			p.logger.Warn().Str("archive", in.Name).Msg("Unsupported file type, skipping")
			result.Skipped = append(result.Skipped, in.Name)
			continue
		}

		fr, err := p.processFile(ctx, in, format, state)
		if err != nil {
			p.logger.Error().Err(err).Str("archive", in.Name).Msg("Failed to process archive")
			fr.failures = append(fr.failures, models.FileFailure{Archive: in.Name, Error: err.Error()})
		}
		p.merge(&result, fr, state)
	}

	p.logger.Info().
		Str("run_id", runID).
		Int("archives", len(inputs)).
		Int("responses", len(result.Responses)).
		Int("pages", len(result.Pages)).
		Int("diagnostics", result.Diagnostics.Len()).
		Int("failures", len(result.Failures)).
		Dur("duration", time.Since(started)).
		Msg("Finished processing archives")

	return result
}

// processFile decodes one input, turning panics into errors. The partial result is
// returned alongside any error.
func (p *Processor) processFile(ctx context.Context, in Input, format Format, state *runState) (fr *fileResult, err error) {
	fr = &fileResult{}
	defer func() {
		if r := recover(); r != nil {
			err = common.NewArchiveError(in.Name, "", common.RecoverToError(r))
		}
	}()

	p.logger.Info().Str("archive", in.Name).Str("format", format.String()).Msg("Processing archive")

	rc, err := in.Open()
	if err != nil {
		return fr, common.NewArchiveError(in.Name, "", err)
	}
	defer rc.Close()

	switch format {
	case FormatPackage:
		err = p.processPackage(ctx, in.Name, rc, state, fr)
	default:
		err = p.processRecords(ctx, in.Name, rc, state, fr)
	}
	if err != nil {
		return fr, common.NewArchiveError(in.Name, "", err)
	}

	p.logger.Info().
		Str("archive", in.Name).
		Int("responses", len(fr.responses)).
		Int("pages", len(fr.pages)).
		Msg("Successfully processed archive")
	return fr, nil
}

// merge appends a file's entities to the run result, making response ids unique run-wide.
// Page ids are already unique: they are settled when each page is emitted.
func (p *Processor) merge(result *models.ProcessResult, fr *fileResult, state *runState) {
	result.Pages = append(result.Pages, fr.pages...)

	for _, resp := range fr.responses {
		resp.ID = uniqueID(resp.ID, state.responseIDs)
		result.Responses = append(result.Responses, resp)
	}

	result.Diagnostics.Merge(fr.diagnostics)
	result.Failures = append(result.Failures, fr.failures...)
}

// uniqueID returns id, or id#k for the k-th occurrence of an id already seen
func uniqueID(id string, seen map[string]int) string {
	seen[id]++
	if seen[id] == 1 {
		return id
	}
	for k := seen[id]; ; k++ {
		candidate := id + "#" + strconv.Itoa(k)
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
	}
}
