package csvstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_HTTPFetcher_FetchRange(t *testing.T) {
	const body = "a,b\nc,d\ne,f\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Range"))
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte(body[:4]))
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	chunk, err := f.FetchRange(context.Background(), TransportRange{URL: srv.URL, Start: 0, End: 4})
	assert.NoError(t, err)
	assert.Equal(t, body[:4], chunk.Text)
	assert.Equal(t, int64(4), chunk.BytesRead)
}

func Test_HTTPFetcher_RetriesTransientStatus(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(WithMaxRetries(5))
	chunk, err := f.FetchRange(context.Background(), TransportRange{URL: srv.URL, Start: 0, End: 2})
	assert.NoError(t, err)
	assert.Equal(t, "ok", chunk.Text)
	assert.Equal(t, 3, attempts)
}

func Test_HTTPFetcher_NonTransientStatusFailsFast(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(WithMaxRetries(5))
	_, err := f.FetchRange(context.Background(), TransportRange{URL: srv.URL, Start: 0, End: 2})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}
