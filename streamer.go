package csvstream

import (
	"context"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brinkdata/csvstream/internal/delimiter"
	"github.com/brinkdata/csvstream/internal/scanner"
)

// Streamer owns one parse from construction through its complete (or
// aborted) callback. It segments whatever chunkSource backs it into
// the Scanner, carries the cross-chunk tail, performs delimiter
// detection once, applies header interpretation, and enforces preview
// and abort.
type Streamer struct {
	id     string
	cfg    Config
	res    resolved
	logger *zap.Logger

	source chunkSource
	sc     *scanner.Scanner

	delimiter     string
	discoveredNL  string
	skipLinesWant int
	skipLinesDone bool

	headerDone     bool
	headers        []string
	renamedHeaders map[string]string

	dataRowCount int
	keptCount    int
	truncated    bool
	aborted      bool
	abort        *AbortHandle

	accumulate bool
	data       []any
	errs       []ParseError

	tail           string
	baseIndex      int
	firstChunkSeen bool
	stopped        bool
	firstByte      int64
}

func newStreamer(cfg Config, src chunkSource) (*Streamer, error) {
	res, err := cfg.resolve()
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	skip := cfg.SkipFirstNLines
	if skip < 0 {
		skip = 0
	}
	return &Streamer{
		id:            id,
		cfg:           cfg,
		res:           res,
		logger:        res.logger.With(zap.String("parse_id", id)),
		source:        src,
		skipLinesWant: skip,
		skipLinesDone: skip == 0,
		abort:         &AbortHandle{},
		accumulate:    cfg.Step == nil && cfg.Chunk == nil,
		firstByte:     cfg.Offset,
	}, nil
}

// NewStringStreamer builds a Streamer over in-memory text.
func NewStringStreamer(text string, cfg Config) (*Streamer, error) {
	return newStreamer(cfg, newStringSource(text, cfg.ChunkSize))
}

// NewReaderStreamer builds a Streamer that chunks an io.Reader the
// same way a remote source is chunked, so large on-disk files don't
// need to be read into memory up front.
func NewReaderStreamer(r io.Reader, cfg Config) (*Streamer, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	return newStreamer(cfg, newReaderSource(r, cfg.ChunkSize))
}

// NewRemoteStreamer builds a Streamer fed by range requests against
// url, issued through fetcher.
func NewRemoteStreamer(fetcher Fetcher, url string, cfg Config) (*Streamer, error) {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = remoteChunkSize
	}
	return newStreamer(cfg, newTransportSource(fetcher, url, cfg, chunkSize, cfg.Offset))
}

// Abort requests early termination; equivalent to calling Abort on the
// AbortHandle passed to Step/Chunk callbacks.
func (s *Streamer) Abort() { s.abort.Abort() }

// Run drives the chunk protocol to completion, invoking Config.Step,
// Config.Chunk, and Config.Complete as configured, and returns the
// final result. A fatal error is routed to Config.Error when set;
// otherwise it is returned.
func (s *Streamer) Run(ctx context.Context) (*CompleteResult, error) {
	for {
		text, atEnd, err := s.source.next(ctx)
		if err != nil {
			if s.cfg.Error != nil {
				s.cfg.Error(err)
				return nil, nil
			}
			return nil, err
		}

		s.ingest(text, atEnd)

		if s.stopped || atEnd {
			break
		}
	}

	result := &CompleteResult{
		Data: s.finalData(),
		Meta: s.meta(),
		Errs: s.finalErrs(),
	}
	if s.cfg.Complete != nil {
		s.cfg.Complete(*result)
	}
	return result, nil
}

func (s *Streamer) finalData() []any {
	if !s.accumulate {
		return nil
	}
	return s.data
}

func (s *Streamer) finalErrs() []ParseError {
	if !s.accumulate {
		return nil
	}
	return s.errs
}

func (s *Streamer) meta() Meta {
	return Meta{
		Delimiter:      s.delimiter,
		Newline:        s.discoveredNL,
		Aborted:        s.aborted,
		Truncated:      s.truncated,
		Cursor:         s.baseIndex,
		Fields:         s.headers,
		RenamedHeaders: s.renamedHeaders,
		FirstByte:      s.firstByte,
		NumBytes:       s.source.bytesFetched(),
	}
}

// ingest runs one chunk of text through the first-chunk preamble (BOM
// strip, beforeFirstChunk, skipFirstNLines, delimiter detection),
// scans it, and dispatches the resulting rows to callbacks or the
// accumulator.
func (s *Streamer) ingest(text string, atEnd bool) {
	// baseIndex stays 0 until some input has been consumed, so a chunk
	// that arrives while SkipFirstNLines is still discarding lines does
	// not get the first-chunk preamble a second time.
	if !s.firstChunkSeen && s.baseIndex == 0 {
		text = stripBOM(text)
		if s.cfg.BeforeFirstChunk != nil {
			if rewritten, ok := s.cfg.BeforeFirstChunk(text); ok {
				text = rewritten
			}
		}
	}

	if !s.skipLinesDone {
		rest, done := s.consumeSkippedLines(text)
		text = rest
		if !done {
			if atEnd {
				// Input exhausted before skipFirstNLines was
				// satisfied; nothing left to parse.
				text = ""
				s.skipLinesDone = true
			} else {
				return
			}
		}
	}

	if !s.firstChunkSeen {
		s.chooseDelimiter(text, atEnd)
		s.sc = scanner.New(scanner.Config{
			Delimiter: s.delimiter,
			Quote:     s.res.quote,
			Escape:    s.res.escape,
			Newline:   s.effectiveNewline(),
			Comment:   s.res.comments,
		})
		s.firstChunkSeen = true
	}

	combined := s.tail + text
	result := s.sc.Scan(combined, s.baseIndex, !atEnd)
	s.discoveredNL = result.Newline
	consumedLocal := result.Cursor - s.baseIndex
	s.tail = combined[consumedLocal:]
	s.baseIndex = result.Cursor
	s.logger.Debug("chunk scanned", zap.Int("rows", len(result.Rows)), zap.Int("cursor", s.baseIndex), zap.Bool("at_end", atEnd))

	s.dispatch(result)

	if s.aborted {
		s.logger.Debug("parse aborted", zap.Int("cursor", s.baseIndex))
	}
}

func (s *Streamer) effectiveNewline() string {
	if s.cfg.Newline != "" {
		return s.cfg.Newline
	}
	return s.discoveredNL
}

// consumeSkippedLines strips skipLinesWant logical lines of input,
// verbatim, from the very front of text. It returns the remainder and
// whether the requested count has now been fully discarded.
func (s *Streamer) consumeSkippedLines(text string) (rest string, done bool) {
	i := 0
	discarded := 0
	want := s.skipLinesWant
	nl := s.cfg.Newline
	for discarded < want {
		idx, seq := findNewline(text[i:], nl)
		if idx == -1 {
			// All of text belongs to lines being skipped.
			s.skipLinesWant = want - discarded
			s.baseIndex += len(text)
			return text[i:], false
		}
		if nl == "" {
			nl = seq
		}
		i += idx + len(seq)
		discarded++
	}
	s.discoveredNL = nl
	s.baseIndex += i
	s.skipLinesDone = true
	return text[i:], true
}

// findNewline returns the index (relative to s) and sequence of the
// first newline in s. When locked is non-empty, only that sequence is
// searched for; otherwise the usual \r\n / \r / \n auto-detect rule
// applies.
func findNewline(s, locked string) (idx int, seq string) {
	if locked != "" {
		i := indexString(s, locked)
		if i == -1 {
			return -1, ""
		}
		return i, locked
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\r' && c != '\n' {
			continue
		}
		if c == '\r' {
			if i+1 < len(s) && s[i+1] == '\n' {
				return i, "\r\n"
			}
			return i, "\r"
		}
		return i, "\n"
	}
	return -1, ""
}

func indexString(s, sub string) int {
	n, m := len(s), len(sub)
	if m == 0 || m > n {
		return -1
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

func stripBOM(s string) string {
	const bomPrefix = "\xef\xbb\xbf"
	if len(s) >= len(bomPrefix) && s[:len(bomPrefix)] == bomPrefix {
		return s[len(bomPrefix):]
	}
	return s
}

func (s *Streamer) chooseDelimiter(sample string, atEnd bool) {
	switch {
	case s.cfg.DelimiterFunc != nil:
		s.delimiter = s.cfg.DelimiterFunc(sample)
	case s.cfg.Delimiter != "":
		s.delimiter = s.cfg.Delimiter
	default:
		best, ok := delimiter.Detect(sample, delimiter.Options{
			Candidates: s.cfg.DelimitersToGuess,
			Quote:      s.res.quote,
			Escape:     s.res.escape,
			Newline:    s.cfg.Newline,
			Comment:    s.res.comments,
			FinalChunk: atEnd,
		})
		if !ok {
			s.delimiter = DefaultDelimiter()
			s.logger.Warn("delimiter undetectable, falling back to default", zap.String("delimiter", s.delimiter))
			s.appendErr(ParseError{
				Type:    ErrorTypeDelimiter,
				Code:    CodeUndetectableDelimiter,
				Message: "no candidate delimiter produced more than one field",
			})
			return
		}
		s.delimiter = best
	}
	s.logger.Debug("delimiter chosen", zap.String("delimiter", s.delimiter))
}

func (s *Streamer) appendErr(e ParseError) {
	if s.accumulate {
		s.errs = append(s.errs, e)
	}
}
