package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-tickets-dashboard/internal/model"
)

// workbook builds an xlsx document whose first sheet holds rows
func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func ticketsWorkbook(t *testing.T) []byte {
	return workbook(t, [][]interface{}{
		{"country", "model", "categories"},
		{"US", "X1", "[]"},
		{"US", "X2", "['Billing', 'Billing']"},
		{"FR", "X1", "['']"},
	})
}

func rec(country string, cats ...string) model.Record {
	if cats == nil {
		cats = []string{}
	}
	return model.Record{Country: country, Categories: cats}
}

func table(rows ...model.Record) model.Table {
	return model.Table{Source: "mem", Variant: model.VariantTickets, Rows: rows}
}

// exampleTable is the three-row table used throughout the tests
func exampleTable() model.Table {
	return table(
		model.Record{Country: "US", Model: "X1", Categories: []string{}},
		model.Record{Country: "US", Model: "X2", Categories: []string{"Billing", "Billing"}},
		model.Record{Country: "FR", Model: "X1", Categories: []string{""}},
	)
}

// fakeFetcher serves canned bytes and counts calls
type fakeFetcher struct {
	mu    sync.Mutex
	data  map[string][]byte
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.data[location]
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", ErrFetch, location)
	}
	return b, nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// memBlobs is an in-process BlobCache
type memBlobs struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (m *memBlobs) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memBlobs) Set(ctx context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memBlobs) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// events records load events
type events struct {
	mu  sync.Mutex
	got []model.LoadEvent
}

func (e *events) RecordLoad(ctx context.Context, ev model.LoadEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
	return nil
}

func (e *events) All() []model.LoadEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.LoadEvent(nil), e.got...)
}
