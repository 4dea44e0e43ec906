// Package render draws dashboard frequency tables as pie charts.
package render

import (
	"fmt"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"

	"go-tickets-dashboard/internal/model"
)

// MissingLabel is shown for the group of blank values
const MissingLabel = "(blank)"

// PieOptions controls the chart canvas
type PieOptions struct {
	Title  string
	Width  int
	Height int
	// ShowPercent appends each slice's share to its label
	ShowPercent bool
}

func (o PieOptions) withDefaults() PieOptions {
	if o.Width <= 0 {
		o.Width = 512
	}
	if o.Height <= 0 {
		o.Height = 512
	}
	return o
}

// Pie writes ft as a PNG pie chart to w. An empty table renders a single
// grey "no data" slice since go-chart refuses empty value sets.
func Pie(w io.Writer, ft model.FrequencyTable, opts PieOptions) error {
	opts = opts.withDefaults()

	values := make([]chart.Value, 0, len(ft))
	for _, s := range ft.Percentages() {
		label := s.Label
		if s.Missing || label == "" {
			label = MissingLabel
		}
		if opts.ShowPercent {
			label = fmt.Sprintf("%s (%.1f%%)", label, s.Percent)
		}
		values = append(values, chart.Value{Label: label, Value: float64(s.Count)})
	}
	if len(values) == 0 {
		values = append(values, chart.Value{
			Label: "no data",
			Value: 1,
			Style: chart.Style{FillColor: chart.ColorAlternateGray},
		})
	}

	pie := chart.PieChart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Values: values,
	}
	if err := pie.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render pie %q: %w", opts.Title, err)
	}
	return nil
}
