package csvstream

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ParseError types and codes, per the data model's enumerated set.
const (
	ErrorTypeQuotes        = "Quotes"
	ErrorTypeDelimiter     = "Delimiter"
	ErrorTypeFieldMismatch = "FieldMismatch"

	CodeMissingQuotes         = "MissingQuotes"
	CodeInvalidQuotes         = "InvalidQuotes"
	CodeUndetectableDelimiter = "UndetectableDelimiter"
	CodeTooFewFields          = "TooFewFields"
	CodeTooManyFields         = "TooManyFields"
)

// ParseError is a non-fatal condition recorded alongside a parse's
// output; parsing always continues past one.
type ParseError struct {
	Type    string
	Code    string
	Message string
	// Row is the zero-based index of the data row the error belongs to.
	// The header row and comment lines are not counted; rows dropped by
	// SkipEmptyLines are. Nil when not applicable to this error.
	Row *int
	// Index is the character offset within the current row where the
	// error was detected. Nil when not applicable.
	Index *int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Type, e.Code, e.Message)
}

func intPtr(v int) *int { return &v }

// ConfigError reports a configuration contradiction discovered before
// scanning starts — a fatal error, not a ParseError.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return "csvstream: " + e.Message }

// ErrReaderNil is a fatal error returned when a Streamer is asked to
// read from a nil io.Reader.
var ErrReaderNil = eris.New("csvstream: reader is nil")
