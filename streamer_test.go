package csvstream

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Streamer_ChunkCallback_CarriesTailAcrossChunks(t *testing.T) {
	text := "a,b\nc,d\ne,f\n"
	var chunks [][]any

	cfg := Config{
		ChunkSize: 5, // splits mid-row; the Streamer must carry the remainder
		Chunk: func(r ChunkResult, abort *AbortHandle) {
			chunks = append(chunks, r.Data)
		},
	}

	s, err := NewStringStreamer(text, cfg)
	assert.NoError(t, err)
	result, err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, result.Data) // accumulation is off once Chunk is set

	var all []any
	for _, c := range chunks {
		all = append(all, c...)
	}
	assert.Equal(t, []any{
		[]string{"a", "b"},
		[]string{"c", "d"},
		[]string{"e", "f"},
	}, all)
}

type fakeFetcher struct {
	data  string
	calls int
}

func (f *fakeFetcher) FetchRange(ctx context.Context, rg TransportRange) (TransportChunk, error) {
	f.calls++
	start := rg.Start
	end := rg.End
	if end > int64(len(f.data)) {
		end = int64(len(f.data))
	}
	if start >= int64(len(f.data)) {
		return TransportChunk{AtEnd: true}, nil
	}
	chunk := f.data[start:end]
	return TransportChunk{
		Text:      chunk,
		BytesRead: int64(len(chunk)),
		AtEnd:     end >= int64(len(f.data)),
	}, nil
}

func Test_Streamer_Remote(t *testing.T) {
	fetcher := &fakeFetcher{data: "a,b\nc,d\ne,f\n"}
	s, err := NewRemoteStreamer(fetcher, "https://example.invalid/data.csv", Config{ChunkSize: 4})
	assert.NoError(t, err)

	result, err := s.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []any{
		[]string{"a", "b"},
		[]string{"c", "d"},
		[]string{"e", "f"},
	}, result.Data)
	assert.Greater(t, fetcher.calls, 1)
	assert.Equal(t, int64(len(fetcher.data)), result.Meta.NumBytes)
}
