package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// ------------------- Ingestion -------------------

// DefaultFetchTimeout bounds a single spreadsheet download
const DefaultFetchTimeout = 15 * time.Second

// DefaultMaxBytes caps how much of a response body is read
const DefaultMaxBytes int64 = 64 << 20

// Fetcher retrieves the raw bytes behind a source location
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// HTTPFetcher fetches http(s) URLs and falls back to the local filesystem
// for anything else (a "file://" prefix is stripped).
type HTTPFetcher struct {
	Client   *http.Client
	Timeout  time.Duration
	MaxBytes int64
}

// NewHTTPFetcher returns a fetcher with the given deadline (0 = default)
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		Client:   &http.Client{},
		Timeout:  timeout,
		MaxBytes: DefaultMaxBytes,
	}
}

// Fetch downloads location, failing with ErrFetchTimeout when the deadline
// passes and ErrFetch for any other transport or status problem.
func (f *HTTPFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !isRemote(location) {
		return f.readFile(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %v", ErrFetch, location, err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyFetchError(location, timeout, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: unexpected status %s", ErrFetch, location, resp.Status)
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, classifyFetchError(location, timeout, err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: GET %s: body exceeds %d bytes", ErrFetch, location, limit)
	}
	return body, nil
}

func (f *HTTPFetcher) readFile(location string) ([]byte, error) {
	path := strings.TrimPrefix(location, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrFetch, path, err)
	}
	return data, nil
}

func isRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func classifyFetchError(location string, timeout time.Duration, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: GET %s: no response within %s", ErrFetchTimeout, location, timeout)
	}
	return fmt.Errorf("%w: GET %s: %v", ErrFetch, location, err)
}
