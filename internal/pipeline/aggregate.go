package pipeline

import (
	"sort"

	"go-tickets-dashboard/internal/model"
)

// ------------------- Aggregation -------------------

// Aggregate builds the two dashboard frequency tables for t: ticket counts
// per country and per category. Neither touches t.
func Aggregate(t model.Table) (countries, categories model.FrequencyTable) {
	return CountCountries(t), CountCategories(t)
}

// CountCountries groups rows by country. Blank countries form their own
// group with an empty label and Missing set.
func CountCountries(t model.Table) model.FrequencyTable {
	c := newCounter()
	for _, rec := range t.Rows {
		c.add(rec.Country)
	}
	ft := c.table()
	for i := range ft {
		ft[i].Missing = ft[i].Label == ""
	}
	return ft
}

// CountCategories explodes each row into one unit per category and counts
// them. A row with no categories counts once as Uncategorized, and so does
// each empty category label.
func CountCategories(t model.Table) model.FrequencyTable {
	c := newCounter()
	for _, rec := range t.Rows {
		if len(rec.Categories) == 0 {
			c.add(model.UncategorizedLabel)
			continue
		}
		for _, cat := range rec.Categories {
			if cat == "" {
				cat = model.UncategorizedLabel
			}
			c.add(cat)
		}
	}
	return c.table()
}

// counter tallies labels, remembering the order they were first seen
type counter struct {
	index  map[string]int
	labels []string
	counts []int
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(label string) {
	i, ok := c.index[label]
	if !ok {
		i = len(c.labels)
		c.index[label] = i
		c.labels = append(c.labels, label)
		c.counts = append(c.counts, 0)
	}
	c.counts[i]++
}

// table returns rows by descending count; ties keep first-seen order
func (c *counter) table() model.FrequencyTable {
	ft := make(model.FrequencyTable, len(c.labels))
	for i, label := range c.labels {
		ft[i] = model.FrequencyRow{Label: label, Count: c.counts[i]}
	}
	sort.SliceStable(ft, func(i, j int) bool {
		return ft[i].Count > ft[j].Count
	})
	return ft
}
