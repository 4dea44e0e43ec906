package pipeline

import (
	"context"
	"fmt"

	"go-tickets-dashboard/internal/model"
)

// DefaultPreviewRows is how many filtered rows a dashboard shows raw
const DefaultPreviewRows = 5

// Dashboard is everything one interaction renders
type Dashboard struct {
	Source     string              `json:"source"`
	Filter     model.Filter        `json:"filter"`
	TotalRows  int                 `json:"total_rows"`
	Rows       int                 `json:"rows"`
	Countries  []model.Share       `json:"countries"`
	Categories []model.Share       `json:"categories"`
	Preview    []model.Record      `json:"preview"`
	Options    model.FilterOptions `json:"options"`
}

// ------------------- Pipeline Runner -------------------

// Run loads location and computes the dashboard for filter f:
// load (cached) → filter → aggregate → preview.
func Run(ctx context.Context, loader TableLoader, location string, f model.Filter, previewRows int) (*Dashboard, error) {
	table, err := loader.Load(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", location, err)
	}
	if err := CheckFilter(table, f); err != nil {
		return nil, err
	}
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}

	filtered := ApplyFilters(table, f)
	countries, categories := Aggregate(filtered)

	return &Dashboard{
		Source:     location,
		Filter:     f,
		TotalRows:  table.Len(),
		Rows:       filtered.Len(),
		Countries:  countries.Percentages(),
		Categories: categories.Percentages(),
		Preview:    filtered.Head(previewRows),
		Options:    Options(table, f),
	}, nil
}

// Frequencies converts the dashboard shares back into plain tables
func (d *Dashboard) Frequencies() (countries, categories model.FrequencyTable) {
	return sharesToTable(d.Countries), sharesToTable(d.Categories)
}

func sharesToTable(shares []model.Share) model.FrequencyTable {
	ft := make(model.FrequencyTable, len(shares))
	for i, s := range shares {
		ft[i] = s.FrequencyRow
	}
	return ft
}
