package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Response is the result of starting a fetch: the declared total size when
// the server sent one (0 means unknown) and the body stream. The stream is
// restartable from the start only; range resumption is not supported.
type Response struct {
	TotalBytes int64
	Body       io.ReadCloser
}

// TransportError wraps a connection or HTTP-layer failure
type TransportError struct {
	URL string
	Err error
}

// Error returns the error message
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error fetching %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPFetcher streams bytes over plain HTTP GET
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with the given timeout applied to the
// connection phase. Zero disables the timeout; body reads are never subject
// to a deadline, matching the no-per-transfer-timeout policy.
func NewHTTPFetcher(connectTimeout time.Duration) *HTTPFetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if connectTimeout > 0 {
		transport.ResponseHeaderTimeout = connectTimeout
	}
	return &HTTPFetcher{
		client: &http.Client{Transport: transport},
	}
}

// Fetch starts a GET request and returns the body stream once response
// headers are available. Connection errors and HTTP error statuses are
// reported as *TransportError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, &TransportError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}

	return &Response{
		TotalBytes: total,
		Body:       resp.Body,
	}, nil
}
