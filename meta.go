package csvstream

// Meta carries observable metadata about a parse, separate from the
// rows/records it produced.
type Meta struct {
	Delimiter string
	Newline   string
	Aborted   bool
	Truncated bool
	// Cursor is the character offset within the original input after
	// the last fully parsed row.
	Cursor int
	// Fields holds the header names, post-deduplication, when
	// Config.Header is set.
	Fields []string
	// RenamedHeaders maps an assigned-unique header name to the
	// original duplicated name; nil when no renaming occurred.
	RenamedHeaders map[string]string
	// FirstByte is the byte offset the first remote chunk started at.
	FirstByte int64
	// NumBytes is the total bytes consumed from the source: fetched for
	// remote input, read for reader input, taken from the text for
	// in-memory input.
	NumBytes int64
}
