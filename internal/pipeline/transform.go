package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"go-tickets-dashboard/internal/model"
)

// ------------------- Row Transformations -------------------

// NormalizeCategories turns a raw categories value into a list of labels.
// A []string is returned as is; anything else is read through its string
// form as a list literal. It never fails: values that cannot be read as a
// list yield an empty, non-nil slice.
func NormalizeCategories(raw interface{}) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string:
		if v == nil {
			return []string{}
		}
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case nil:
				out = append(out, "")
			case string:
				out = append(out, s)
			default:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	case string:
		return normalizeCategoryString(v)
	default:
		return normalizeCategoryString(fmt.Sprint(v))
	}
}

func normalizeCategoryString(s string) []string {
	items, ok := parseListLiteral(s)
	if !ok {
		return []string{}
	}
	return items
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"01-02-06",
	"1/2/06",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate reads a date cell. Excel serial numbers (what unformatted date
// cells hold) and the common text layouts are accepted.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial: %w", err)
		}
		return t, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

// buildRecord maps one spreadsheet row onto a Record using the header index
func buildRecord(cells []string, cols map[string]int, variant model.Variant, rowNum int) (model.Record, error) {
	rec := model.Record{
		Country:    cell(cells, cols[model.ColumnCountry]),
		Model:      cell(cells, cols[model.ColumnModel]),
		Categories: NormalizeCategories(cell(cells, cols[model.ColumnCategories])),
	}

	if variant.HasDate() {
		raw := cell(cells, cols[model.ColumnDate])
		d, err := ParseDate(raw)
		if err != nil {
			return model.Record{}, &ParseError{Row: rowNum, Column: model.ColumnDate, Value: raw, Err: err}
		}
		rec.Date = d
	}
	return rec, nil
}

func cell(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
