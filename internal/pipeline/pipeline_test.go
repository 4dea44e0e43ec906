package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tickets-dashboard/internal/model"
)

func TestRun(t *testing.T) {
	l := NewLoader(&fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}, nil)

	d, err := Run(context.Background(), l, "src", model.Filter{Country: "US"}, 1)
	require.NoError(t, err)

	assert.Equal(t, "src", d.Source)
	assert.Equal(t, 3, d.TotalRows)
	assert.Equal(t, 2, d.Rows)
	require.Len(t, d.Preview, 1)
	assert.Equal(t, "X1", d.Preview[0].Model)

	countries, categories := d.Frequencies()
	assert.Equal(t, model.FrequencyTable{{Label: "US", Count: 2}}, countries)
	assert.Equal(t, model.FrequencyTable{
		{Label: "Billing", Count: 2},
		{Label: model.UncategorizedLabel, Count: 1},
	}, categories)
	assert.InDelta(t, 100.0, d.Countries[0].Percent, 1e-9)

	// options ignore the country constraint for countries only
	assert.Equal(t, []string{"FR", "US"}, d.Options.Countries)
	assert.Equal(t, []string{"X1", "X2"}, d.Options.Models)
}

func TestRun_DefaultPreview(t *testing.T) {
	l := NewLoader(&fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}, nil)

	d, err := Run(context.Background(), l, "src", model.Filter{}, 0)
	require.NoError(t, err)
	assert.Len(t, d.Preview, 3)
	assert.Equal(t, d.TotalRows, d.Rows)
}

func TestRun_LoadError(t *testing.T) {
	l := NewLoader(&fakeFetcher{err: ErrFetchTimeout}, nil)

	d, err := Run(context.Background(), l, "src", model.Filter{}, 5)
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, ErrFetchTimeout))
	assert.Contains(t, err.Error(), "load src")
}

func TestRun_DateRangeOnUndatedData(t *testing.T) {
	l := NewLoader(&fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}, nil)
	f := model.Filter{Dates: &model.DateRange{Start: day(2024, 1, 1), End: day(2024, 12, 31)}}

	d, err := Run(context.Background(), l, "src", f, 5)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrFilter)
	assert.False(t, errors.Is(err, ErrParse))
}
