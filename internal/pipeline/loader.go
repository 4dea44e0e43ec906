package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go-tickets-dashboard/internal/cache"
	"go-tickets-dashboard/internal/model"
)

// LoadRecorder persists load attempts
type LoadRecorder interface {
	RecordLoad(ctx context.Context, ev model.LoadEvent) error
}

// TableLoader is what the dashboard needs from a Loader
type TableLoader interface {
	Load(ctx context.Context, location string) (model.Table, error)
}

// Loader fetches, parses and normalizes spreadsheets, memoizing the result
// per source location. Concurrent first loads of one location share a
// single fetch. Failed loads are never cached, and a load that was
// invalidated while in flight is not cached either.
type Loader struct {
	fetcher  Fetcher
	tables   cache.TableCache
	blobs    cache.BlobCache
	recorder LoadRecorder
	variant  model.Variant
	logger   *zap.Logger
	now      func() time.Time
	group    singleflight.Group

	mu    sync.Mutex
	gens  map[string]uint64 // bumped by Invalidate, one entry per location seen
	epoch uint64            // bumped by Reset
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithBlobCache shares raw bytes through b before hitting the network
func WithBlobCache(b cache.BlobCache) LoaderOption {
	return func(l *Loader) { l.blobs = b }
}

// WithRecorder records every load attempt
func WithRecorder(r LoadRecorder) LoaderOption {
	return func(l *Loader) { l.recorder = r }
}

// WithVariant selects the schema sources are read with
func WithVariant(v model.Variant) LoaderOption {
	return func(l *Loader) { l.variant = v }
}

// WithLogger sets the logger (defaults to a no-op logger)
func WithLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = log }
}

// NewLoader builds a Loader. A nil table cache gets a fresh in-memory one.
func NewLoader(fetcher Fetcher, tables cache.TableCache, opts ...LoaderOption) *Loader {
	if tables == nil {
		tables = cache.NewMemory(0)
	}
	l := &Loader{
		fetcher: fetcher,
		tables:  tables,
		variant: model.VariantTickets,
		logger:  zap.NewNop(),
		now:     time.Now,
		gens:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Variant returns the schema the loader reads
func (l *Loader) Variant() model.Variant {
	return l.variant
}

// Load returns the normalized table for location, fetching it on first use
func (l *Loader) Load(ctx context.Context, location string) (model.Table, error) {
	if t, ok := l.tables.Get(location); ok {
		return t, nil
	}

	v, err, shared := l.group.Do(location, func() (interface{}, error) {
		if t, ok := l.tables.Get(location); ok {
			return t, nil
		}
		gen := l.generation(location)

		// the fetch is shared, so one caller going away must not fail the others;
		// the fetcher applies its own deadline
		t, err := l.fetchAndParse(context.WithoutCancel(ctx), location)
		if err != nil {
			return nil, err
		}
		l.store(location, gen, t)
		return t, nil
	})
	if err != nil {
		return model.Table{}, err
	}
	if shared {
		l.logger.Debug("joined in-flight load", zap.String("source", location))
	}
	return v.(model.Table), nil
}

// Invalidate forgets the cached table (and shared bytes) for location. A
// load of location already in flight still answers its callers but is not
// cached, and the next Load starts a fresh fetch.
func (l *Loader) Invalidate(ctx context.Context, location string) {
	l.mu.Lock()
	l.gens[location]++
	l.tables.Invalidate(location)
	l.mu.Unlock()
	l.group.Forget(location)

	if l.blobs != nil {
		if err := l.blobs.Delete(ctx, location); err != nil {
			l.logger.Warn("blob cache delete failed", zap.String("source", location), zap.Error(err))
		}
	}
	l.logger.Info("cache invalidated", zap.String("source", location))
}

// Reset forgets every cached table, including loads still in flight
func (l *Loader) Reset(ctx context.Context) {
	for _, key := range l.tables.Keys() {
		l.Invalidate(ctx, key)
	}

	l.mu.Lock()
	l.epoch++
	l.tables.Reset()
	seen := make([]string, 0, len(l.gens))
	for key := range l.gens {
		seen = append(seen, key)
	}
	l.mu.Unlock()

	for _, key := range seen {
		l.group.Forget(key)
	}
}

// Cached lists the source locations currently memoized
func (l *Loader) Cached() []string {
	return l.tables.Keys()
}

// generation identifies the cache state of location; it changes whenever
// location is invalidated or the loader is reset
func (l *Loader) generation(location string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.gens[location]; !ok {
		l.gens[location] = 0
	}
	return l.epoch + l.gens[location]
}

// store caches t unless location was invalidated since gen was taken
func (l *Loader) store(location string, gen uint64, t model.Table) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.epoch+l.gens[location] != gen {
		l.logger.Debug("discarding load invalidated in flight", zap.String("source", location))
		return
	}
	l.tables.Set(location, t)
}

func (l *Loader) fetchAndParse(ctx context.Context, location string) (table model.Table, err error) {
	ev := model.LoadEvent{
		ID:        uuid.New().String(),
		Source:    location,
		Variant:   l.variant,
		StartedAt: l.now().UTC(),
	}
	defer func() {
		ev.Duration = l.now().Sub(ev.StartedAt)
		if err != nil {
			ev.Status = model.LoadStatusFailed
			ev.Error = err.Error()
			l.logger.Error("load failed", zap.String("id", ev.ID), zap.String("source", location), zap.Error(err))
		} else {
			ev.Status = model.LoadStatusOK
			ev.Rows = table.Len()
			l.logger.Info("load complete",
				zap.String("id", ev.ID),
				zap.String("source", location),
				zap.Int("rows", ev.Rows),
				zap.Int("bytes", ev.Bytes),
				zap.Bool("from_blob", ev.FromBlob),
				zap.Duration("duration", ev.Duration))
		}
		l.record(ctx, ev)
	}()

	content, fromBlob, err := l.content(ctx, location)
	if err != nil {
		return model.Table{}, err
	}
	ev.Bytes = len(content)
	ev.FromBlob = fromBlob

	rows, err := ParseWorkbook(content, l.variant)
	if err != nil {
		if fromBlob {
			// do not keep serving bytes that cannot be parsed
			_ = l.blobs.Delete(ctx, location)
		}
		return model.Table{}, err
	}

	return model.Table{
		Source:   location,
		Variant:  l.variant,
		Rows:     rows,
		LoadedAt: ev.StartedAt,
	}, nil
}

func (l *Loader) content(ctx context.Context, location string) ([]byte, bool, error) {
	if l.blobs != nil {
		data, ok, err := l.blobs.Get(ctx, location)
		switch {
		case err != nil:
			l.logger.Warn("blob cache read failed", zap.String("source", location), zap.Error(err))
		case ok:
			return data, true, nil
		}
	}

	data, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, false, err
	}

	if l.blobs != nil {
		if err := l.blobs.Set(ctx, location, data); err != nil {
			l.logger.Warn("blob cache write failed", zap.String("source", location), zap.Error(err))
		}
	}
	return data, false, nil
}

func (l *Loader) record(ctx context.Context, ev model.LoadEvent) {
	if l.recorder == nil {
		return
	}
	if err := l.recorder.RecordLoad(ctx, ev); err != nil {
		l.logger.Warn("record load failed", zap.String("id", ev.ID), zap.Error(err))
	}
}
