package pipeline

import (
	"fmt"
	"sort"
	"time"

	"go-tickets-dashboard/internal/model"
)

// ------------------- Filtering -------------------

// ApplyFilters returns the rows of t matching every active constraint of f,
// in their original order. Blank values never match an active equality
// constraint, and rows without a date never match a date range. The date
// range is inclusive and compares calendar days only.
func ApplyFilters(t model.Table, f model.Filter) model.Table {
	out := make([]model.Record, 0, len(t.Rows))
	for _, rec := range t.Rows {
		if matches(rec, f) {
			out = append(out, rec)
		}
	}
	return t.WithRows(out)
}

// CheckFilter reports whether f can be applied to t. A date range is only
// meaningful for variants whose rows carry a date.
func CheckFilter(t model.Table, f model.Filter) error {
	if f.Dates != nil && !t.Variant.HasDate() {
		return fmt.Errorf("%w: %s data has no date column", ErrFilter, t.Variant)
	}
	return nil
}

func matches(rec model.Record, f model.Filter) bool {
	if f.CountryActive() && (rec.Country == "" || rec.Country != f.Country) {
		return false
	}
	if f.ModelActive() && (rec.Model == "" || rec.Model != f.Model) {
		return false
	}
	if f.Dates != nil {
		if rec.Date.IsZero() {
			return false
		}
		day := dayKey(rec.Date)
		if day < dayKey(f.Dates.Start) || day > dayKey(f.Dates.End) {
			return false
		}
	}
	return true
}

// dayKey orders dates by calendar day, ignoring time of day
func dayKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Options lists the selector values for the current interaction: every
// country in the table, the models left after the country constraint, and
// the observed date bounds.
func Options(t model.Table, f model.Filter) model.FilterOptions {
	opts := model.FilterOptions{
		Countries: distinct(t.Rows, func(r model.Record) string { return r.Country }),
	}

	byCountry := ApplyFilters(t, model.Filter{Country: f.Country})
	opts.Models = distinct(byCountry.Rows, func(r model.Record) string { return r.Model })

	if t.Variant.HasDate() {
		opts.Dates = DateBounds(t)
	}
	return opts
}

// DateBounds returns the earliest and latest row dates, nil if none
func DateBounds(t model.Table) *model.DateRange {
	var bounds *model.DateRange
	for _, rec := range t.Rows {
		if rec.Date.IsZero() {
			continue
		}
		if bounds == nil {
			bounds = &model.DateRange{Start: rec.Date, End: rec.Date}
			continue
		}
		if rec.Date.Before(bounds.Start) {
			bounds.Start = rec.Date
		}
		if rec.Date.After(bounds.End) {
			bounds.End = rec.Date
		}
	}
	return bounds
}

func distinct(rows []model.Record, value func(model.Record) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, rec := range rows {
		v := value(rec)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
