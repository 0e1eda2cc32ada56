package csvstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

// HTTPFetcherOption configures an HTTPFetcher at construction.
type HTTPFetcherOption func(*HTTPFetcher)

// WithClient overrides the *http.Client used for range requests.
func WithClient(c *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithRateLimit bounds how many range requests per second the fetcher
// is willing to issue. A burst of 1 is typical since a Streamer issues
// requests one at a time.
func WithRateLimit(requestsPerSecond float64, burst int) HTTPFetcherOption {
	return func(f *HTTPFetcher) { f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst) }
}

// WithMaxRetries bounds how many times a transient failure is retried
// with exponential backoff before FetchRange gives up.
func WithMaxRetries(n uint64) HTTPFetcherOption {
	return func(f *HTTPFetcher) { f.maxRetries = n }
}

// HTTPFetcher is the module's default Fetcher, backed by net/http
// Range requests. It is a convenience default; the Streamer only ever
// depends on the Fetcher interface.
type HTTPFetcher struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxRetries uint64
}

// NewHTTPFetcher returns an HTTPFetcher with sane defaults: the
// default http.Client, no rate limiting, and 3 retries.
func NewHTTPFetcher(opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:     http.DefaultClient,
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchRange issues a single Range request, retrying transient
// failures (timeouts, 5xx) with exponential backoff.
func (f *HTTPFetcher) FetchRange(ctx context.Context, rg TransportRange) (TransportChunk, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return TransportChunk{}, eris.Wrap(err, "transport: rate limiter")
		}
	}

	var out TransportChunk
	backoff, err := retry.NewExponential(100 * time.Millisecond)
	if err != nil {
		return TransportChunk{}, eris.Wrap(err, "transport: configure backoff")
	}
	backoff = retry.WithMaxRetries(f.maxRetries, backoff)

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		chunk, err := f.doRequest(ctx, rg)
		if err != nil {
			if isTransientTransportErr(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		out = chunk
		return nil
	})
	if err != nil {
		return TransportChunk{}, eris.Wrapf(err, "transport: range fetch %s [%d,%d)", rg.URL, rg.Start, rg.End)
	}
	return out, nil
}

func (f *HTTPFetcher) doRequest(ctx context.Context, rg TransportRange) (TransportChunk, error) {
	method := http.MethodGet
	var body io.Reader
	if rg.Body != nil {
		method = http.MethodPost
		body = bytes.NewReader(rg.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rg.URL, body)
	if err != nil {
		return TransportChunk{}, eris.Wrap(err, "transport: build request")
	}
	for k, v := range rg.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", rg.Start, rg.End-1))

	resp, err := f.client.Do(req)
	if err != nil {
		return TransportChunk{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return TransportChunk{}, &transientStatusError{status: resp.StatusCode}
	}
	if resp.StatusCode >= 400 {
		return TransportChunk{}, eris.Errorf("transport: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportChunk{}, eris.Wrap(err, "transport: read body")
	}

	requested := rg.End - rg.Start
	atEnd := int64(len(data)) < requested
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		if total, ok := parseContentRangeTotal(cr); ok && rg.End >= total {
			atEnd = true
		}
	}

	return TransportChunk{Text: string(data), BytesRead: int64(len(data)), AtEnd: atEnd}, nil
}

type transientStatusError struct{ status int }

func (e *transientStatusError) Error() string {
	return fmt.Sprintf("transport: transient status %d", e.status)
}

func isTransientTransportErr(err error) bool {
	var se *transientStatusError
	if errors.As(err, &se) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// parseContentRangeTotal extracts the total size from a
// "bytes a-b/total" Content-Range header value.
func parseContentRangeTotal(v string) (int64, bool) {
	i := -1
	for idx := len(v) - 1; idx >= 0; idx-- {
		if v[idx] == '/' {
			i = idx
			break
		}
	}
	if i == -1 || i+1 >= len(v) {
		return 0, false
	}
	total, err := strconv.ParseInt(v[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return total, true
}
