package csvstream

import (
	"context"
	"io"
)

// ParseString runs a synchronous, in-memory parse of text and returns
// the accumulated result. It is a convenience wrapper around
// NewStringStreamer + Run for callers that don't need Step/Chunk
// callbacks. When cfg.Step or cfg.Chunk is set, rows go to those
// callbacks instead of being accumulated, and the returned result's
// Data and Errs are nil.
func ParseString(text string, cfg Config) (*CompleteResult, error) {
	s, err := NewStringStreamer(text, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(context.Background())
}

// ParseReader runs a synchronous, chunked parse of r. The reader is
// consumed incrementally in cfg.ChunkSize pieces, the same way a
// remote source is, so the whole file never needs to fit in memory at
// once.
func ParseReader(r io.Reader, cfg Config) (*CompleteResult, error) {
	s, err := NewReaderStreamer(r, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(context.Background())
}

// ParseRemote runs a synchronous, range-request-driven parse of url
// through fetcher. Passing a nil fetcher uses a default HTTPFetcher.
func ParseRemote(ctx context.Context, fetcher Fetcher, url string, cfg Config) (*CompleteResult, error) {
	if fetcher == nil {
		fetcher = NewHTTPFetcher()
	}
	s, err := NewRemoteStreamer(fetcher, url, cfg)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}
