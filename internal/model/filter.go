package model

import "time"

// AllOption is the selector value meaning "no constraint"
const AllOption = "All"

// DateRange is an inclusive calendar-date interval
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Filter holds the sidebar constraints of one interaction.
// An empty Country or Model (or AllOption) leaves that column unconstrained.
type Filter struct {
	Country string     `json:"country,omitempty"`
	Model   string     `json:"model,omitempty"`
	Dates   *DateRange `json:"dates,omitempty"`
}

// CountryActive reports whether the country constraint applies
func (f Filter) CountryActive() bool {
	return f.Country != "" && f.Country != AllOption
}

// ModelActive reports whether the model constraint applies
func (f Filter) ModelActive() bool {
	return f.Model != "" && f.Model != AllOption
}

// FilterOptions lists the values a presentation layer can offer as selectors
type FilterOptions struct {
	Countries []string   `json:"countries"`
	Models    []string   `json:"models"`
	Dates     *DateRange `json:"dates,omitempty"` // observed min/max, nil without dates
}
