package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"go-tickets-dashboard/internal/cache"
	"go-tickets-dashboard/internal/model"
)

// xlsxServer serves content and counts requests. Requests block until
// release is closed when hold is set.
type xlsxServer struct {
	*httptest.Server
	hits    atomic.Int32
	release chan struct{}
}

func newXLSXServer(t *testing.T, content []byte, hold bool) *xlsxServer {
	t.Helper()
	s := &xlsxServer{release: make(chan struct{})}
	if !hold {
		close(s.release)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		select {
		case <-s.release:
		case <-r.Context().Done():
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		_, _ = w.Write(content)
	}))
	t.Cleanup(func() {
		if hold {
			select {
			case <-s.release:
			default:
				close(s.release)
			}
		}
		s.Close()
	})
	return s
}

func TestLoader_CachesPerLocation(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), false)
	l := NewLoader(NewHTTPFetcher(time.Second), nil)
	ctx := context.Background()

	first, err := l.Load(ctx, srv.URL+"/tickets.xlsx")
	require.NoError(t, err)
	second, err := l.Load(ctx, srv.URL+"/tickets.xlsx")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), srv.hits.Load())
	assert.Equal(t, 3, first.Len())
	assert.Equal(t, model.VariantTickets, first.Variant)
	assert.Equal(t, []string{srv.URL + "/tickets.xlsx"}, l.Cached())

	// a different location is a different cache entry
	_, err = l.Load(ctx, srv.URL+"/other.xlsx")
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestLoader_InvalidateRefetches(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), false)
	l := NewLoader(NewHTTPFetcher(time.Second), nil)
	ctx := context.Background()
	loc := srv.URL + "/tickets.xlsx"

	_, err := l.Load(ctx, loc)
	require.NoError(t, err)
	l.Invalidate(ctx, loc)
	assert.Empty(t, l.Cached())

	_, err = l.Load(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestLoader_Reset(t *testing.T) {
	f := &fakeFetcher{data: map[string][]byte{"a": ticketsWorkbook(t), "b": ticketsWorkbook(t)}}
	l := NewLoader(f, nil)
	ctx := context.Background()

	for _, loc := range []string{"a", "b"} {
		_, err := l.Load(ctx, loc)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b"}, l.Cached())

	l.Reset(ctx)
	assert.Empty(t, l.Cached())
}

func TestLoader_Timeout(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), true)
	l := NewLoader(NewHTTPFetcher(50*time.Millisecond), nil)

	start := time.Now()
	_, err := l.Load(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchTimeout)
	assert.False(t, errors.Is(err, ErrParse))
	assert.Less(t, time.Since(start), 5*time.Second)

	// failures are not memoized
	assert.Empty(t, l.Cached())
}

func TestLoader_HTTPStatusIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	l := NewLoader(NewHTTPFetcher(time.Second), nil)

	_, err := l.Load(context.Background(), srv.URL+"/missing.xlsx")
	assert.ErrorIs(t, err, ErrFetch)
	assert.False(t, errors.Is(err, ErrFetchTimeout))
	assert.Empty(t, l.Cached())
}

func TestLoader_ParseErrorNotCached(t *testing.T) {
	f := &fakeFetcher{data: map[string][]byte{"bad": []byte("<html>nope</html>")}}
	l := NewLoader(f, nil)

	_, err := l.Load(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrParse)
	_, err = l.Load(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, 2, f.Calls())
}

func TestLoader_ConcurrentLoadsFetchOnce(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), true)
	l := NewLoader(NewHTTPFetcher(5*time.Second), nil)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]model.Table, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.Load(context.Background(), srv.URL)
		}(i)
	}

	require.Eventually(t, func() bool { return srv.hits.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	close(srv.release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 3, results[i].Len())
	}
	assert.Equal(t, int32(1), srv.hits.Load())
}

func TestLoader_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.xlsx")
	require.NoError(t, os.WriteFile(path, ticketsWorkbook(t), 0o644))
	l := NewLoader(NewHTTPFetcher(0), nil)

	for _, loc := range []string{path, "file://" + path} {
		tbl, err := l.Load(context.Background(), loc)
		require.NoError(t, err)
		assert.Equal(t, exampleTable().Rows, tbl.Rows)
	}

	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.ErrorIs(t, err, ErrFetch)
}

func TestHTTPFetcher_MaxBytes(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), false)
	f := NewHTTPFetcher(time.Second)
	f.MaxBytes = 16

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestLoader_ComplaintsVariant(t *testing.T) {
	content := workbook(t, [][]interface{}{
		{"country", "model", "categories", "date"},
		{"US", "X1", "['a']", "2024-01-15"},
	})
	l := NewLoader(&fakeFetcher{data: map[string][]byte{"c": content}}, nil, WithVariant(model.VariantComplaints))
	assert.Equal(t, model.VariantComplaints, l.Variant())

	tbl, err := l.Load(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, model.VariantComplaints, tbl.Variant)
	assert.False(t, tbl.Rows[0].Date.IsZero())
}

func TestLoader_BlobCacheShared(t *testing.T) {
	blobs := newMemBlobs()
	rec := &events{}
	first := &fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}
	second := &fakeFetcher{}

	_, err := NewLoader(first, nil, WithBlobCache(blobs), WithRecorder(rec)).Load(context.Background(), "src")
	require.NoError(t, err)
	tbl, err := NewLoader(second, nil, WithBlobCache(blobs), WithRecorder(rec)).Load(context.Background(), "src")
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 1, first.Calls())
	assert.Equal(t, 0, second.Calls())

	got := rec.All()
	require.Len(t, got, 2)
	assert.False(t, got[0].FromBlob)
	assert.True(t, got[1].FromBlob)
}

func TestLoader_UnparseableBlobIsDropped(t *testing.T) {
	blobs := newMemBlobs()
	require.NoError(t, blobs.Set(context.Background(), "src", []byte("garbage")))
	f := &fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}
	l := NewLoader(f, nil, WithBlobCache(blobs))

	_, err := l.Load(context.Background(), "src")
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, 0, f.Calls())

	tbl, err := l.Load(context.Background(), "src")
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 1, f.Calls())
}

func TestLoader_InvalidateDropsBlob(t *testing.T) {
	blobs := newMemBlobs()
	f := &fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}
	l := NewLoader(f, nil, WithBlobCache(blobs))
	ctx := context.Background()

	_, err := l.Load(ctx, "src")
	require.NoError(t, err)
	l.Invalidate(ctx, "src")

	_, ok, _ := blobs.Get(ctx, "src")
	assert.False(t, ok)
	_, err = l.Load(ctx, "src")
	require.NoError(t, err)
	assert.Equal(t, 2, f.Calls())
}

func TestLoader_RecordsEvents(t *testing.T) {
	rec := &events{}
	f := &fakeFetcher{data: map[string][]byte{"ok": ticketsWorkbook(t)}}
	l := NewLoader(f, nil, WithRecorder(rec))

	_, err := l.Load(context.Background(), "ok")
	require.NoError(t, err)
	_, err = l.Load(context.Background(), "missing")
	require.Error(t, err)

	got := rec.All()
	require.Len(t, got, 2)

	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, model.LoadStatusOK, got[0].Status)
	assert.Equal(t, 3, got[0].Rows)
	assert.Positive(t, got[0].Bytes)
	assert.Empty(t, got[0].Error)

	assert.Equal(t, model.LoadStatusFailed, got[1].Status)
	assert.Equal(t, "missing", got[1].Source)
	assert.Contains(t, got[1].Error, "not found")
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestLoader_SharedTableCache(t *testing.T) {
	tables := cache.NewMemory(0)
	f := &fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}

	_, err := NewLoader(f, tables).Load(context.Background(), "src")
	require.NoError(t, err)
	_, err = NewLoader(f, tables).Load(context.Background(), "src")
	require.NoError(t, err)
	assert.Equal(t, 1, f.Calls())
}

func TestLoader_NoGoroutineLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	f := &fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}
	l := NewLoader(f, nil)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Load(context.Background(), "src")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, f.Calls())
}

func TestLoader_SharedFetchSurvivesFirstCallerCancel(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), true)
	rec := &events{}
	l := NewLoader(NewHTTPFetcher(5*time.Second), nil, WithRecorder(rec))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, srv.URL)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return srv.hits.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	secondErr := make(chan error, 1)
	go func() {
		tbl, err := l.Load(context.Background(), srv.URL)
		if err == nil && tbl.Len() != 3 {
			err = fmt.Errorf("got %d rows", tbl.Len())
		}
		secondErr <- err
	}()

	cancel()
	close(srv.release)

	assert.NoError(t, <-firstErr)
	assert.NoError(t, <-secondErr)
	assert.Equal(t, int32(1), srv.hits.Load())
	assert.Equal(t, []string{srv.URL}, l.Cached())

	got := rec.All()
	require.Len(t, got, 1)
	assert.Equal(t, model.LoadStatusOK, got[0].Status)
}

func TestLoader_InvalidateDuringLoadIsNotUndone(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), true)
	l := NewLoader(NewHTTPFetcher(5*time.Second), nil)
	ctx := context.Background()

	staleErr := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, srv.URL)
		staleErr <- err
	}()
	require.Eventually(t, func() bool { return srv.hits.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	l.Invalidate(ctx, srv.URL)

	// a load after the invalidation does not join the stale fetch
	freshErr := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, srv.URL)
		freshErr <- err
	}()
	require.Eventually(t, func() bool { return srv.hits.Load() == 2 }, 2*time.Second, 5*time.Millisecond)

	close(srv.release)
	require.NoError(t, <-staleErr)
	require.NoError(t, <-freshErr)

	assert.Equal(t, []string{srv.URL}, l.Cached())
	_, err := l.Load(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestLoader_InvalidateDuringLoadLeavesCacheEmpty(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), true)
	l := NewLoader(NewHTTPFetcher(5*time.Second), nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, srv.URL)
		done <- err
	}()
	require.Eventually(t, func() bool { return srv.hits.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	l.Invalidate(ctx, srv.URL)
	close(srv.release)
	require.NoError(t, <-done)

	assert.Empty(t, l.Cached())
	_, err := l.Load(ctx, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestLoader_ResetDuringLoadLeavesCacheEmpty(t *testing.T) {
	srv := newXLSXServer(t, ticketsWorkbook(t), true)
	l := NewLoader(NewHTTPFetcher(5*time.Second), nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, srv.URL)
		done <- err
	}()
	require.Eventually(t, func() bool { return srv.hits.Load() == 1 }, 2*time.Second, 5*time.Millisecond)

	l.Reset(ctx)
	close(srv.release)
	require.NoError(t, <-done)
	assert.Empty(t, l.Cached())
}
