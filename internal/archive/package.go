package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aleister1102/apiextract/internal/common"
	"github.com/aleister1102/apiextract/internal/models"
	"github.com/klauspost/compress/zip"
	"github.com/tidwall/gjson"
)

// processPackage reads a WACZ in memory. Record entries are decoded first, in zip order,
// then the pages sidecar, then standalone JSON entries.
func (p *Processor) processPackage(ctx context.Context, archiveName string, r io.Reader, state *runState, fr *fileResult) error {
	data, err := readLimited(r, p.cfg.MaxArchiveBytes())
	if err != nil {
		return err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedContainer, err)
	}

	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		byName[f.Name] = f
	}

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() || DetectFormat(f.Name, p.cfg.RecordExtensions, nil) != FormatRecords {
			continue
		}
		if err := p.processRecordEntry(ctx, archiveName, f, state, fr); err != nil {
			p.logger.Error().Err(err).Str("archive", archiveName).Str("entry", f.Name).Msg("Failed to process record entry")
			fr.failures = append(fr.failures, models.FileFailure{
				Archive: archiveName,
				Error:   common.NewArchiveError(archiveName, f.Name, err).Error(),
			})
		}
	}

	if sidecar := p.findSidecar(byName); sidecar != nil {
		if err := p.processSidecar(ctx, archiveName, sidecar, state, fr); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error().Err(err).Str("archive", archiveName).Str("entry", sidecar.Name).Msg("Failed to read pages sidecar")
			fr.failures = append(fr.failures, models.FileFailure{
				Archive: archiveName,
				Error:   common.NewArchiveError(archiveName, sidecar.Name, err).Error(),
			})
		}
	}

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.isStandaloneJSON(f) {
			continue
		}
		content, err := p.readEntry(f)
		if err != nil {
			p.logger.Error().Err(err).Str("archive", archiveName).Str("entry", f.Name).Msg("Failed to read JSON file")
			continue
		}
		res := p.normalizer.FromJSONFile(f.Name, content, archiveName)
		fr.diagnostics.Add(res.Diagnostic)
		if res.Response == nil {
			p.logger.Warn().Err(res.Err).Str("archive", archiveName).Str("entry", f.Name).Msg("Error parsing JSON file")
			continue
		}
		fr.responses = append(fr.responses, *res.Response)
	}
	return nil
}

// processRecordEntry recovers a panic from one entry so the next entries still run
func (p *Processor) processRecordEntry(ctx context.Context, archiveName string, f *zip.File, state *runState, fr *fileResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = common.RecoverToError(r)
		}
	}()

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedContainer, err)
	}
	defer rc.Close()

	return p.processRecords(ctx, archiveName, rc, state, fr)
}

func (p *Processor) findSidecar(byName map[string]*zip.File) *zip.File {
	for _, name := range p.cfg.SidecarPaths {
		if f, ok := byName[name]; ok && !f.FileInfo().IsDir() {
			return f
		}
	}
	return nil
}

func (p *Processor) isStandaloneJSON(f *zip.File) bool {
	if f.FileInfo().IsDir() {
		return false
	}
	if !hasAnySuffix(strings.ToLower(f.Name), p.cfg.StandaloneJSONExts) {
		return false
	}
	for _, marker := range p.cfg.ManifestMarkers {
		if marker != "" && strings.Contains(f.Name, marker) {
			return false
		}
	}
	return true
}

// processSidecar reads one page descriptor per line. Malformed lines are skipped.
func (p *Processor) processSidecar(ctx context.Context, archiveName string, f *zip.File, state *runState, fr *fileResult) error {
	data, err := p.readEntry(f)
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	for lineNo, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			p.logger.Warn().Str("archive", archiveName).Int("line", lineNo+1).Msg("Skipping malformed line in pages sidecar")
			continue
		}
		desc := gjson.Parse(line)
		if !desc.IsObject() {
			p.logger.Warn().Str("archive", archiveName).Int("line", lineNo+1).Msg("Skipping non-object line in pages sidecar")
			continue
		}
		if isSidecarHeader(desc) {
			continue
		}
		p.processPageDescriptor(desc, archiveName, state, fr)
	}
	return nil
}

// isSidecarHeader matches the first line of a JSON-pages file, e.g. {"format":"json-pages-1.0",...}
func isSidecarHeader(desc gjson.Result) bool {
	return desc.Get("format").Exists() && !desc.Get("url").Exists()
}

func (p *Processor) processPageDescriptor(desc gjson.Result, archiveName string, state *runState, fr *fileResult) {
	page := p.normalizer.PageFromDescriptor(desc, state.nextPageID(), archiveName)
	// Requests below inherit the final id, so a repeated id never relinks earlier pages.
	page.ID = uniqueID(page.ID, state.pageIDs)
	fr.pages = append(fr.pages, page)

	requests := desc.Get("requests")
	if !requests.IsArray() {
		return
	}

	for i, req := range requests.Array() {
		res, ok := p.normalizer.FromPageRequest(page, req, i)
		if !ok {
			continue
		}
		fr.diagnostics.Add(res.Diagnostic)
		if res.Response == nil {
			p.logger.Debug().Err(res.Err).Str("url", res.Diagnostic.URL).Msg("Skipping non-JSON page request")
			continue
		}
		fr.responses = append(fr.responses, *res.Response)
	}
}

// readEntry reads a whole zip entry, refusing entries above the entry size limit
func (p *Processor) readEntry(f *zip.File) ([]byte, error) {
	limit := p.cfg.MaxEntryBytes()
	if limit > 0 && f.UncompressedSize64 > uint64(limit) {
		return nil, common.WrapErrorf(common.ErrEntryTooLarge, "entry %s is %d bytes", path.Clean(f.Name), f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedContainer, err)
	}
	defer rc.Close()
	return readLimited(rc, limit)
}

// readLimited reads r fully, failing with ErrEntryTooLarge past limit bytes (0 = no limit)
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedContainer, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, common.WrapErrorf(common.ErrEntryTooLarge, "exceeds %d bytes", limit)
	}
	return data, nil
}
