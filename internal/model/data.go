package model

import "time"

// Record represents a single spreadsheet row after normalization.
// An empty Country or Model means the cell was blank.
type Record struct {
	Country    string    `json:"country"`
	Model      string    `json:"model"`
	Categories []string  `json:"categories"`
	Date       time.Time `json:"date,omitempty"` // zero unless the variant has dates
}

// Table is an ordered, read-only set of records loaded from one source
type Table struct {
	Source   string    `json:"source"`
	Variant  Variant   `json:"variant"`
	Rows     []Record  `json:"rows"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Len returns the number of rows
func (t Table) Len() int {
	return len(t.Rows)
}

// WithRows returns a copy of t carrying rows instead of t.Rows
func (t Table) WithRows(rows []Record) Table {
	t.Rows = rows
	return t
}

// Head returns the first n rows (all of them when n exceeds the length)
func (t Table) Head(n int) []Record {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]Record, n)
	copy(out, t.Rows[:n])
	return out
}
