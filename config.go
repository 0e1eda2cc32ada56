package csvstream

import (
	"strings"

	"go.uber.org/zap"
)

// SkipEmptyLines controls which blank rows the Streamer filters out of
// its output before header projection and preview counting.
type SkipEmptyLines int

const (
	// KeepEmptyLines passes every row the Scanner emits through,
	// including rows with a single empty field.
	KeepEmptyLines SkipEmptyLines = iota
	// SkipEmptyLinesStrict filters rows with a single empty field.
	SkipEmptyLinesStrict
	// SkipEmptyLinesGreedy additionally filters rows whose every field
	// is whitespace-only.
	SkipEmptyLinesGreedy
)

// Special characters. BOM may not appear in a configured Delimiter
// (see BadDelimiterSubstrings); RecordSep and UnitSep are among the
// candidates delimiter auto-detection tries.
const (
	BOM       = "\xef\xbb\xbf"
	RecordSep = "\x1e"
	UnitSep   = "\x1f"
)

// BadDelimiterSubstrings lists the bytes a Delimiter may never contain.
var BadDelimiterSubstrings = []string{"\r", "\n", "\"", BOM}

var (
	remoteChunkSize  int64 = 5 * 1024 * 1024
	defaultDelimiter       = ","
)

// SetRemoteChunkSize changes the process-wide default remote chunk
// size (in bytes) for Streamers constructed after the call. It exists
// for backward-compatible global tuning; a Streamer only ever reads
// this at construction, never afterward.
func SetRemoteChunkSize(n int64) { remoteChunkSize = n }

// RemoteChunkSize returns the process-wide default remote chunk size.
func RemoteChunkSize() int64 { return remoteChunkSize }

// SetDefaultDelimiter changes the process-wide fallback delimiter used
// when auto-detection cannot settle on one.
func SetDefaultDelimiter(d string) { defaultDelimiter = d }

// DefaultDelimiter returns the process-wide fallback delimiter.
func DefaultDelimiter() string { return defaultDelimiter }

// StepResult is delivered to Config.Step once per data row.
type StepResult struct {
	Data any // []string, or map[string]any when Config.Header is set
	Meta Meta
	Errs []ParseError
}

// ChunkResult is delivered to Config.Chunk once per ingested chunk.
type ChunkResult struct {
	Data []any
	Meta Meta
	Errs []ParseError
}

// CompleteResult is delivered to Config.Complete exactly once, unless
// a fatal error occurred.
type CompleteResult struct {
	Data []any
	Meta Meta
	Errs []ParseError
}

// Config is a record fixed for the lifetime of one parse.
type Config struct {
	// Delimiter is the fixed field delimiter. Leave empty (with
	// DelimiterFunc also nil) to trigger auto-detection.
	Delimiter string
	// DelimiterFunc, when set, is handed a leading sample of the input
	// and must return the delimiter to use; it takes priority over
	// auto-detection and Delimiter.
	DelimiterFunc func(sample string) string

	// Newline is the line terminator. Empty means auto-detect.
	Newline string
	// QuoteChar defaults to '"'.
	QuoteChar byte
	// EscapeChar defaults to QuoteChar.
	EscapeChar byte

	// Header treats the first emitted row as header names.
	Header bool

	// Comments, when non-empty, marks lines starting with it (at the
	// very start of a row) as comments to be skipped entirely.
	Comments string

	// SkipEmptyLines controls blank-row filtering.
	SkipEmptyLines SkipEmptyLines

	// DelimitersToGuess overrides the candidate set auto-detection
	// scores against. Defaults to delimiter.DefaultCandidates.
	DelimitersToGuess []string

	// Preview caps the number of data rows emitted; 0 means no limit.
	Preview int

	// Step, when set, is invoked once per data row.
	Step func(StepResult, *AbortHandle)
	// Chunk, when set, is invoked once per ingested chunk.
	Chunk func(ChunkResult, *AbortHandle)
	// Complete is invoked once, at the end of a successful parse.
	Complete func(CompleteResult)
	// Error is invoked on a fatal (non-recoverable) error. When nil, a
	// synchronous call surfaces the error as a returned error instead.
	Error func(error)

	// BeforeFirstChunk, when set, may rewrite the first ingested chunk
	// of text before anything else sees it. Returning ok=false leaves
	// the chunk untouched.
	BeforeFirstChunk func(chunk string) (rewritten string, ok bool)

	// SkipFirstNLines discards that many logical lines of input,
	// verbatim, before parsing begins. Zero or negative is a no-op.
	SkipFirstNLines int

	// ChunkSize overrides the default chunk size: bytes for remote
	// input, characters for in-memory/reader input. Zero means use the
	// process-wide default for remote and reader input; in-memory text
	// is then handed to the Scanner as a single chunk.
	ChunkSize int64

	// DownloadRequestHeaders are attached to every remote range request.
	DownloadRequestHeaders map[string]string
	// DownloadRequestBody, if non-nil, switches remote requests to POST.
	DownloadRequestBody []byte
	// WithCredentials is forwarded to the Fetcher implementation.
	WithCredentials bool
	// Offset starts the first remote chunk at this byte offset. The
	// caller is responsible for the offset landing on a row boundary.
	Offset int64

	// Logger receives diagnostic logging. Nil means no-op.
	Logger *zap.Logger
}

// resolved is the fully-defaulted, validated form of Config a Streamer
// actually runs against.
type resolved struct {
	quote, escape byte
	comments      string
	preview       int
	skipEmpty     SkipEmptyLines
	chunkSize     int64
	logger        *zap.Logger
}

func (c Config) resolve() (resolved, error) {
	quote := c.QuoteChar
	if quote == 0 {
		quote = '"'
	}
	escape := c.EscapeChar
	if escape == 0 {
		escape = quote
	}

	if c.Delimiter != "" {
		for _, bad := range BadDelimiterSubstrings {
			if strings.Contains(c.Delimiter, bad) {
				return resolved{}, &ConfigError{Message: "delimiter may not contain CR, LF, the quote character, or a byte-order mark"}
			}
		}
	}

	chunkSize := c.ChunkSize
	if chunkSize <= 0 {
		chunkSize = remoteChunkSize
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return resolved{
		quote:     quote,
		escape:    escape,
		comments:  c.Comments,
		preview:   c.Preview,
		skipEmpty: c.SkipEmptyLines,
		chunkSize: chunkSize,
		logger:    logger,
	}, nil
}
