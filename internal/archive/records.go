package archive

import (
	"context"
	"errors"
	"io"

	"github.com/aleister1102/apiextract/internal/models"
	"github.com/aleister1102/apiextract/internal/normalizer"
	"github.com/aleister1102/apiextract/internal/warc"
)

// emitted locates a response already appended to a fileResult
type emitted struct {
	response   int // -1 when the body was not JSON
	diagnostic int
}

// processRecords streams a WARC and appends a response for every JSON response record.
// Request records paired through WARC-Concurrent-To supply the method, in either order.
func (p *Processor) processRecords(ctx context.Context, archiveName string, r io.Reader, state *runState, fr *fileResult) error {
	reader, err := warc.NewReader(r, warc.ReaderOptions{MaxRecordBytes: p.cfg.MaxEntryBytes()})
	if err != nil {
		return err
	}
	defer reader.Close()

	byRecordID := make(map[string]emitted)
	pendingMethods := make(map[string]string)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch rec.Type() {
		case warc.TypeResponse:
			p.handleResponseRecord(rec, archiveName, state, fr, byRecordID, pendingMethods)
		case warc.TypeRequest:
			method := warc.RequestMethod(rec.Content)
			target := rec.ConcurrentTo()
			if method == "" || target == "" {
				continue
			}
			if e, ok := byRecordID[target]; ok {
				fr.diagnostics.Entries[e.diagnostic].Method = method
				if e.response >= 0 {
					fr.responses[e.response].Method = method
				}
				continue
			}
			pendingMethods[target] = method
		case warc.TypeWarcinfo, warc.TypeMetadata, warc.TypeResource, warc.TypeRevisit,
			warc.TypeConversion, warc.TypeContinuation:
			// carry no captured exchange
		default:
			p.logger.Debug().
				Str("archive", archiveName).
				Str("warc_type", rec.Type()).
				Int64("offset", rec.Offset).
				Msg("Skipping record of unknown WARC type")
		}
	}
}

func (p *Processor) handleResponseRecord(
	rec *warc.Record,
	archiveName string,
	state *runState,
	fr *fileResult,
	byRecordID map[string]emitted,
	pendingMethods map[string]string,
) {
	fallbackID := state.nextRecordID()
	recordID := rec.RecordID()

	if rec.Oversized {
		p.logger.Warn().
			Str("archive", archiveName).
			Str("url", rec.TargetURI()).
			Int64("content_length", rec.ContentLength).
			Msg("Response record exceeds entry size limit, skipping")
		fr.diagnostics.Add(models.DiagnosticEntry{
			URL:     rec.TargetURI(),
			Method:  models.DefaultMethod,
			Status:  models.DefaultStatus,
			Archive: archiveName,
			Source:  models.SourceWARC,
		})
		return
	}

	res := p.normalizer.FromWARCResponse(rec, normalizer.WARCContext{
		Archive:    archiveName,
		FallbackID: fallbackID,
		Method:     pendingMethods[recordID],
	})

	e := emitted{response: -1, diagnostic: fr.diagnostics.Len()}
	fr.diagnostics.Add(res.Diagnostic)
	if res.Response != nil {
		e.response = len(fr.responses)
		fr.responses = append(fr.responses, *res.Response)
	} else {
		p.logger.Debug().Err(res.Err).Str("url", res.Diagnostic.URL).Msg("Skipping non-JSON response")
	}
	if recordID != "" {
		byRecordID[recordID] = e
		delete(pendingMethods, recordID)
	}
}
