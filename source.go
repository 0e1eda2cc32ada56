package csvstream

import (
	"context"
	"errors"
	"io"
)

// chunkSource yields successive chunks of input text. All three input
// modes the Streamer supports (in-memory string, io.Reader, remote
// Fetcher) are adapted to this one shape so the chunk protocol in
// streamer.go doesn't need to know which kind of source it's driving.
type chunkSource interface {
	next(ctx context.Context) (text string, atEnd bool, err error)
	// bytesFetched reports cumulative bytes consumed, for Meta.NumBytes.
	// In-memory sources report the same as characters consumed.
	bytesFetched() int64
}

type stringSource struct {
	data      string
	pos       int
	chunkSize int
}

func newStringSource(data string, chunkSize int64) *stringSource {
	size := int(chunkSize)
	if size <= 0 {
		size = len(data)
		if size == 0 {
			size = 1
		}
	}
	return &stringSource{data: data, chunkSize: size}
}

func (s *stringSource) next(_ context.Context) (string, bool, error) {
	if s.pos >= len(s.data) {
		return "", true, nil
	}
	end := s.pos + s.chunkSize
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := s.data[s.pos:end]
	s.pos = end
	return chunk, s.pos >= len(s.data), nil
}

func (s *stringSource) bytesFetched() int64 { return int64(s.pos) }

type readerSource struct {
	r         io.Reader
	chunkSize int
	buf       []byte
	total     int64
	eof       bool
}

func newReaderSource(r io.Reader, chunkSize int64) *readerSource {
	size := int(chunkSize)
	if size <= 0 {
		size = int(remoteChunkSize)
	}
	return &readerSource{r: r, chunkSize: size}
}

func (s *readerSource) next(_ context.Context) (string, bool, error) {
	if s.eof {
		return "", true, nil
	}
	if s.buf == nil {
		s.buf = make([]byte, s.chunkSize)
	}
	n, err := io.ReadFull(s.r, s.buf)
	s.total += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.eof = true
			return string(s.buf[:n]), true, nil
		}
		return "", false, err
	}
	return string(s.buf[:n]), false, nil
}

func (s *readerSource) bytesFetched() int64 { return s.total }

type transportSource struct {
	fetcher         Fetcher
	url             string
	headers         map[string]string
	body            []byte
	withCredentials bool
	chunkSize       int64
	pos             int64
	total           int64
	done            bool
}

func newTransportSource(f Fetcher, url string, cfg Config, chunkSize, offset int64) *transportSource {
	return &transportSource{
		fetcher:         f,
		url:             url,
		headers:         cfg.DownloadRequestHeaders,
		body:            cfg.DownloadRequestBody,
		withCredentials: cfg.WithCredentials,
		chunkSize:       chunkSize,
		pos:             offset,
	}
}

func (s *transportSource) next(ctx context.Context) (string, bool, error) {
	if s.done {
		return "", true, nil
	}
	rg := TransportRange{
		URL:             s.url,
		Headers:         s.headers,
		Body:            s.body,
		WithCredentials: s.withCredentials,
		Start:           s.pos,
		End:             s.pos + s.chunkSize,
	}
	chunk, err := s.fetcher.FetchRange(ctx, rg)
	if err != nil {
		return "", false, err
	}
	s.pos += chunk.BytesRead
	s.total += chunk.BytesRead
	if chunk.AtEnd {
		s.done = true
	}
	return chunk.Text, chunk.AtEnd, nil
}

func (s *transportSource) bytesFetched() int64 { return s.total }
