// Package scanner implements the character-at-a-time row/field state
// machine that underlies the csvstream Streamer. It knows nothing about
// headers, delimiter detection, or remote transports; it only turns a
// text buffer plus a configuration snapshot into rows, errors, and a
// cursor, the same way the scanner in a hand-rolled bufio.SplitFunc
// only knows how to find the next token.
package scanner

import "strings"

// Error types and codes, matching the ParseError vocabulary the rest
// of the module surfaces to callers.
const (
	TypeQuotes = "Quotes"

	CodeMissingQuotes = "MissingQuotes"
	CodeInvalidQuotes = "InvalidQuotes"
)

// Error is a non-fatal condition raised while scanning a single row.
// RowIndex indexes into the Rows slice of the Result that carries this
// Error; it is only meaningful together with that Result.
type Error struct {
	Type      string
	Code      string
	Message   string
	RowIndex  int
	CharIndex int
}

// Row is a single emitted record: an ordered list of fields.
type Row struct {
	Fields []string
}

// Config is a snapshot of the character classes the scanner runs
// against. It is fixed for the lifetime of a Scanner.
type Config struct {
	// Delimiter separates fields within a row. One or more bytes.
	Delimiter string
	// Quote opens and closes a quoted field.
	Quote byte
	// Escape precedes a literal Quote inside a quoted field. Equal to
	// Quote by default (doubled-quote escaping).
	Escape byte
	// Newline is the line terminator. Empty means auto-detect on the
	// first newline byte encountered, then lock for the rest of the scan.
	Newline string
	// Comment, when non-empty, marks the rest of a line as a comment
	// when it appears at the very start of a row.
	Comment string
}

// Result is what one call to Scan produces.
type Result struct {
	Rows   []Row
	Errors []Error
	// Cursor is the absolute index (within the original, unbounded
	// input) up to which parsing has definitively committed rows.
	Cursor int
	// Newline is the (possibly just-locked) newline sequence in effect
	// at the end of this call.
	Newline string
}

// Scanner is a stateful row/field tokenizer. The only state that
// survives between calls to Scan is the locked newline sequence, once
// auto-detection has chosen one.
type Scanner struct {
	cfg     Config
	newline string // "" until locked
}

// New returns a Scanner snapshotting cfg. If cfg.Newline is non-empty,
// the newline sequence starts out locked.
func New(cfg Config) *Scanner {
	return &Scanner{cfg: cfg, newline: cfg.Newline}
}

// Newline returns the currently locked newline sequence, or "" if
// auto-detection has not yet observed one.
func (s *Scanner) Newline() string {
	return s.newline
}

// Scan tokenizes text into rows. baseIndex is the absolute input
// position corresponding to text[0]; the returned Cursor is expressed
// in those same absolute coordinates.
//
// When ignoreLastRow is true, a row left incomplete by the end of text
// (mid-field, mid-quote, or simply still accumulating) is withheld:
// it is not added to Result.Rows, its Errors are not reported, and
// Cursor is set to the start of that row so a later call fed
// text[Cursor-baseIndex:] plus more input reproduces it identically.
// When ignoreLastRow is false, any such row is finalized as-is; an
// unterminated quoted field yields a MissingQuotes error.
func (s *Scanner) Scan(text string, baseIndex int, ignoreLastRow bool) Result {
	var (
		rows    []Row
		errs    []Error
		field   strings.Builder
		row     []string
		pending []Error

		i            = 0
		rowStart     = 0
		quoted       = false
		quoteOpenPos = 0
		n            = len(text)
		delim        = s.cfg.Delimiter
		quote        = s.cfg.Quote
		escape       = s.cfg.Escape
		comment      = s.cfg.Comment
		hasComment   = comment != ""
		autoDetectNL = s.newline == ""
	)

	detectNewlineAt := func(i int) (string, int) {
		if text[i] == '\r' {
			if i+1 < n && text[i+1] == '\n' {
				return "\r\n", 2
			}
			return "\r", 1
		}
		return "\n", 1
	}

	// matchNewline reports the newline sequence starting at i, locking
	// auto-detection on first use. ok is false when no newline starts here.
	matchNewline := func(i int) (seq string, length int, ok bool) {
		if i >= n {
			return "", 0, false
		}
		if !autoDetectNL {
			if strings.HasPrefix(text[i:], s.newline) {
				return s.newline, len(s.newline), true
			}
			return "", 0, false
		}
		c := text[i]
		if c != '\r' && c != '\n' {
			return "", 0, false
		}
		seq, length = detectNewlineAt(i)
		s.newline = seq
		autoDetectNL = false
		return seq, length, true
	}

	skipComment := func(i int) (next int, hitEOF bool) {
		for i < n {
			c := text[i]
			if c == '\r' || c == '\n' {
				_, length, ok := matchNewline(i)
				if !ok {
					// Shouldn't happen: c is \r or \n so matchNewline
					// always recognizes it when auto-detecting; if the
					// newline is already locked to something else, this
					// byte is just comment content.
					i++
					continue
				}
				return i + length, false
			}
			i++
		}
		return i, true
	}

	commitRow := func() {
		rows = append(rows, Row{Fields: row})
		idx := len(rows) - 1
		for _, pe := range pending {
			pe.RowIndex = idx
			errs = append(errs, pe)
		}
		pending = nil
		row = nil
		field.Reset()
	}

	closeField := func() {
		row = append(row, field.String())
		field.Reset()
	}

	withheldCursor := -1

	for i < n {
		if !quoted {
			if i == rowStart && hasComment && strings.HasPrefix(text[i:], comment) {
				next, hitEOF := skipComment(i)
				if hitEOF {
					if ignoreLastRow {
						withheldCursor = rowStart
						i = n
						break
					}
					i = n
					break
				}
				i = next
				rowStart = i
				pending = nil
				continue
			}

			if delim != "" && strings.HasPrefix(text[i:], delim) {
				closeField()
				i += len(delim)
				continue
			}

			if _, length, ok := matchNewline(i); ok {
				closeField()
				commitRow()
				i += length
				rowStart = i
				continue
			}

			if field.Len() == 0 && text[i] == quote {
				quoted = true
				quoteOpenPos = i
				i++
				continue
			}

			field.WriteByte(text[i])
			i++
			continue
		}

		// Quoted mode.
		if escape != quote {
			if text[i] == escape && i+1 < n && text[i+1] == quote {
				field.WriteByte(quote)
				i += 2
				continue
			}
		} else if text[i] == quote && i+1 < n && text[i+1] == quote {
			field.WriteByte(quote)
			i += 2
			continue
		}

		if text[i] == quote {
			closePos := i
			j := i + 1
			for j < n && (text[j] == ' ' || text[j] == '\t') {
				j++
			}
			if delim != "" && j < n && strings.HasPrefix(text[j:], delim) {
				closeField()
				quoted = false
				i = j + len(delim)
				continue
			}
			if _, length, ok := matchNewline(j); ok {
				closeField()
				commitRow()
				quoted = false
				i = j + length
				rowStart = i
				continue
			}
			if j >= n {
				// Closing quote runs straight into end-of-buffer with
				// only trailing spaces/tabs after it: leave the field
				// unclosed here and let the end-of-buffer handling
				// below close and (if warranted) commit it exactly
				// once, the same as any other field that ends at EOF.
				quoted = false
				i = j
				continue
			}
			pending = append(pending, Error{
				Type:      TypeQuotes,
				Code:      CodeInvalidQuotes,
				Message:   "invalid quote placement: expected delimiter or end of row after closing quote",
				CharIndex: closePos - rowStart,
			})
			field.WriteByte(quote)
			i++
			continue
		}

		field.WriteByte(text[i])
		i++
	}

	// End of buffer.
	if withheldCursor >= 0 {
		return Result{Rows: rows, Errors: errs, Cursor: baseIndex + withheldCursor, Newline: s.newline}
	}

	hasPendingContent := quoted || field.Len() > 0 || len(row) > 0
	if hasPendingContent {
		if ignoreLastRow {
			return Result{Rows: rows, Errors: errs, Cursor: baseIndex + rowStart, Newline: s.newline}
		}
		if quoted {
			pending = append(pending, Error{
				Type:      TypeQuotes,
				Code:      CodeMissingQuotes,
				Message:   "quoted field was never closed before end of input",
				CharIndex: quoteOpenPos + 1 - rowStart,
			})
		}
		closeField()
		commitRow()
		return Result{Rows: rows, Errors: errs, Cursor: baseIndex + n, Newline: s.newline}
	}

	return Result{Rows: rows, Errors: errs, Cursor: baseIndex + n, Newline: s.newline}
}
