package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tickets-dashboard/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datedTable() model.Table {
	t := table(
		model.Record{Country: "US", Model: "X1", Categories: []string{"a"}, Date: day(2024, 1, 1)},
		model.Record{Country: "US", Model: "X2", Categories: []string{"b"}, Date: day(2024, 1, 15).Add(17 * time.Hour)},
		model.Record{Country: "FR", Model: "X1", Categories: []string{"a"}, Date: day(2024, 2, 1)},
		model.Record{Country: "", Model: "", Categories: []string{}},
	)
	t.Variant = model.VariantComplaints
	return t
}

func TestApplyFilters_Inactive(t *testing.T) {
	tbl := exampleTable()
	for _, f := range []model.Filter{
		{},
		{Country: model.AllOption},
		{Country: model.AllOption, Model: model.AllOption},
	} {
		assert.Equal(t, tbl, ApplyFilters(tbl, f))
	}
}

func TestApplyFilters_Country(t *testing.T) {
	got := ApplyFilters(exampleTable(), model.Filter{Country: "US"})
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "X1", got.Rows[0].Model)
	assert.Equal(t, "X2", got.Rows[1].Model)
}

func TestApplyFilters_CountryAndModel(t *testing.T) {
	got := ApplyFilters(exampleTable(), model.Filter{Country: "US", Model: "X1"})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, []string{}, got.Rows[0].Categories)

	got = ApplyFilters(exampleTable(), model.Filter{Model: "X1"})
	assert.Equal(t, 2, got.Len())
}

func TestApplyFilters_NoMatchIsEmpty(t *testing.T) {
	got := ApplyFilters(exampleTable(), model.Filter{Country: "JP"})
	assert.Equal(t, 0, got.Len())
	assert.NotNil(t, got.Rows)
	assert.Equal(t, "mem", got.Source)
}

func TestApplyFilters_BlankNeverMatches(t *testing.T) {
	tbl := table(rec(""), rec("US"))
	got := ApplyFilters(tbl, model.Filter{Country: "US"})
	assert.Equal(t, 1, got.Len())
}

func TestApplyFilters_Idempotent(t *testing.T) {
	for _, f := range []model.Filter{
		{Country: "US"},
		{Model: "X1"},
		{Country: "US", Dates: &model.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 31)}},
	} {
		once := ApplyFilters(datedTable(), f)
		twice := ApplyFilters(once, f)
		assert.Equal(t, once, twice)
	}
}

func TestApplyFilters_DateRangeInclusive(t *testing.T) {
	tbl := datedTable()

	// the second row is late on the 15th; the end day still includes it
	got := ApplyFilters(tbl, model.Filter{Dates: &model.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 15)}})
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "X1", got.Rows[0].Model)
	assert.Equal(t, "X2", got.Rows[1].Model)

	got = ApplyFilters(tbl, model.Filter{Dates: &model.DateRange{Start: day(2024, 2, 1), End: day(2024, 2, 1)}})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "FR", got.Rows[0].Country)

	got = ApplyFilters(tbl, model.Filter{Dates: &model.DateRange{Start: day(2024, 1, 2), End: day(2024, 1, 14)}})
	assert.Equal(t, 0, got.Len())
}

func TestApplyFilters_UndatedRowsExcludedByRange(t *testing.T) {
	got := ApplyFilters(datedTable(), model.Filter{Dates: &model.DateRange{Start: time.Time{}, End: day(9999, 12, 31)}})
	assert.Equal(t, 3, got.Len())
	for _, r := range got.Rows {
		assert.False(t, r.Date.IsZero())
	}
}

func TestCheckFilter(t *testing.T) {
	dates := &model.DateRange{Start: day(2024, 1, 1), End: day(2024, 1, 31)}

	assert.NoError(t, CheckFilter(datedTable(), model.Filter{Dates: dates}))
	assert.NoError(t, CheckFilter(exampleTable(), model.Filter{Country: "US"}))

	err := CheckFilter(exampleTable(), model.Filter{Dates: dates})
	assert.ErrorIs(t, err, ErrFilter)
	assert.Contains(t, err.Error(), "tickets")
}

func TestApplyFilters_DoesNotMutateInput(t *testing.T) {
	tbl := exampleTable()
	ApplyFilters(tbl, model.Filter{Country: "FR"})
	assert.Equal(t, exampleTable(), tbl)
}

func TestOptions_Cascade(t *testing.T) {
	tbl := datedTable()

	opts := Options(tbl, model.Filter{})
	assert.Equal(t, []string{"FR", "US"}, opts.Countries)
	assert.Equal(t, []string{"X1", "X2"}, opts.Models)
	require.NotNil(t, opts.Dates)
	assert.Equal(t, day(2024, 1, 1), opts.Dates.Start)
	assert.Equal(t, day(2024, 2, 1), opts.Dates.End)

	opts = Options(tbl, model.Filter{Country: "FR"})
	assert.Equal(t, []string{"FR", "US"}, opts.Countries)
	assert.Equal(t, []string{"X1"}, opts.Models)
}

func TestOptions_NoDatesForTickets(t *testing.T) {
	opts := Options(exampleTable(), model.Filter{})
	assert.Nil(t, opts.Dates)
	assert.Equal(t, []string{"FR", "US"}, opts.Countries)
}

func TestDateBounds_Empty(t *testing.T) {
	assert.Nil(t, DateBounds(table()))
	assert.Nil(t, DateBounds(exampleTable()))
}
