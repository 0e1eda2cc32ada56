package csvstream

import "context"

// TransportRange describes one request for bytes [Start, End) of a URL.
// This is the full transport contract the Streamer depends on for
// remote input; the spec that this module implements treats the
// transport implementation itself as an external collaborator, so this
// type exists to let callers plug in their own Fetcher.
type TransportRange struct {
	URL             string
	Headers         map[string]string
	Body            []byte
	WithCredentials bool
	Start, End      int64
}

// TransportChunk is the result of fetching one TransportRange.
type TransportChunk struct {
	Text      string
	BytesRead int64
	AtEnd     bool
}

// Fetcher is the minimal byte-range source a remote Streamer depends
// on. Implementations decode the fetched bytes as text and report
// AtEnd when fewer bytes came back than requested.
type Fetcher interface {
	FetchRange(ctx context.Context, r TransportRange) (TransportChunk, error)
}
