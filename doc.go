// Package csvstream provides facilities for permissively parsing
// delimited text that does not necessarily conform to RFC 4180: files
// with inconsistent field counts, \n, \r or \r\n line endings (the
// first one found is used for the rest of the input), bare or
// extraneous quotes, and an unknown delimiter (detected once per
// parse).
//
// Input can be an in-memory string, an io.Reader, or a remote URL
// fetched in byte-range chunks through a Fetcher. All three paths run
// the same chunk-at-a-time Scanner. With Step or Chunk callbacks, rows
// are handed off as each chunk is parsed; without them, every row is
// kept until the parse completes.
package csvstream
