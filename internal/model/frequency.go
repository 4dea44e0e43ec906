package model

// FrequencyRow is one (label, count) pair of a frequency table.
// Missing marks the group of rows whose value was blank.
type FrequencyRow struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Missing bool   `json:"missing,omitempty"`
}

// FrequencyTable holds one row per distinct observed label
type FrequencyTable []FrequencyRow

// Total returns the sum of all counts
func (ft FrequencyTable) Total() int {
	total := 0
	for _, row := range ft {
		total += row.Count
	}
	return total
}

// Get returns the count for label and whether the label was observed
func (ft FrequencyTable) Get(label string) (int, bool) {
	for _, row := range ft {
		if row.Label == label {
			return row.Count, true
		}
	}
	return 0, false
}

// Share is a frequency row together with its fraction of the table total
type Share struct {
	FrequencyRow
	Percent float64 `json:"percent"`
}

// Percentages returns each row's share of the total, in percent
func (ft FrequencyTable) Percentages() []Share {
	total := ft.Total()
	out := make([]Share, 0, len(ft))
	for _, row := range ft {
		s := Share{FrequencyRow: row}
		if total > 0 {
			s.Percent = float64(row.Count) * 100 / float64(total)
		}
		out = append(out, s)
	}
	return out
}
