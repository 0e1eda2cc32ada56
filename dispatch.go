package csvstream

import (
	"strings"

	"go.uber.org/zap"

	"github.com/brinkdata/csvstream/internal/headerproject"
	"github.com/brinkdata/csvstream/internal/scanner"
)

// dispatch turns one Scan result into header capture, data-row
// filtering/projection, and the configured callbacks. It is the only
// place row-index bookkeeping (dataRowCount, preview, abort) happens.
func (s *Streamer) dispatch(result scanner.Result) {
	if len(result.Rows) == 0 && len(result.Errors) == 0 {
		return
	}

	// errsByRow groups the scanner's chunk-local errors by the local row
	// index they belong to, so they can be attached to that row's Step
	// callback before the absolute row index is even known.
	errsByRow := make(map[int][]scanner.Error, len(result.Errors))
	for _, e := range result.Errors {
		errsByRow[e.RowIndex] = append(errsByRow[e.RowIndex], e)
	}

	var chunkData []any
	var chunkErrs []ParseError

	for li, row := range result.Rows {
		if s.stopped {
			continue
		}

		if s.cfg.Header && !s.headerDone {
			names, renamed := headerproject.Dedupe(row.Fields)
			s.headers = names
			s.renamedHeaders = renamed
			s.headerDone = true
			continue
		}

		absolute := s.dataRowCount
		s.dataRowCount++

		var rowErrs []ParseError
		for _, e := range errsByRow[li] {
			pe := ParseError{Type: e.Type, Code: e.Code, Message: e.Message, Row: intPtr(absolute), Index: intPtr(e.CharIndex)}
			rowErrs = append(rowErrs, pe)
			chunkErrs = append(chunkErrs, pe)
			s.appendErr(pe)
			s.logger.Warn("parse error", zap.String("code", pe.Code), zap.Int("row", absolute))
		}

		if isEmptyRow(row.Fields, s.res.skipEmpty) {
			continue
		}

		if s.cfg.Preview > 0 && s.keptCount >= s.cfg.Preview {
			s.truncated = true
			s.stopped = true
			continue
		}

		var out any
		if s.cfg.Header {
			projected, perr := headerproject.Project(s.headers, row.Fields, absolute)
			if perr != nil {
				pe := ParseError{Type: perr.Type, Code: perr.Code, Message: perr.Message, Row: intPtr(perr.RowIndex)}
				rowErrs = append(rowErrs, pe)
				chunkErrs = append(chunkErrs, pe)
				s.appendErr(pe)
				s.logger.Warn("parse error", zap.String("code", pe.Code), zap.Int("row", perr.RowIndex))
			}
			out = projected
		} else {
			out = row.Fields
		}

		s.keptCount++
		chunkData = append(chunkData, out)

		if s.cfg.Step != nil {
			s.cfg.Step(StepResult{Data: out, Meta: s.meta(), Errs: rowErrs}, s.abort)
		} else if s.accumulate {
			s.data = append(s.data, out)
		}

		if s.abort.Aborted() {
			s.aborted = true
			s.stopped = true
		}
	}

	if s.cfg.Chunk != nil {
		s.cfg.Chunk(ChunkResult{Data: chunkData, Meta: s.meta(), Errs: chunkErrs}, s.abort)
		if s.abort.Aborted() {
			s.aborted = true
			s.stopped = true
		}
	}
}

// isEmptyRow reports whether a row should be dropped under the active
// SkipEmptyLines policy.
func isEmptyRow(fields []string, policy SkipEmptyLines) bool {
	switch policy {
	case SkipEmptyLinesStrict:
		return len(fields) == 1 && fields[0] == ""
	case SkipEmptyLinesGreedy:
		for _, f := range fields {
			if strings.TrimSpace(f) != "" {
				return false
			}
		}
		return true
	default:
		return false
	}
}
