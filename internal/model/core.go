package model

// Variant selects which dashboard schema a source is read with
type Variant string

const (
	VariantTickets    Variant = "tickets"    // country, model, categories
	VariantComplaints Variant = "complaints" // tickets + date
)

// Column names expected in the spreadsheet header row
const (
	ColumnCountry    = "country"
	ColumnModel      = "model"
	ColumnCategories = "categories"
	ColumnDate       = "date"
)

// UncategorizedLabel is substituted for missing or empty category values
const UncategorizedLabel = "Uncategorized"

// Source identifies a spreadsheet resource and the schema it is read with
type Source struct {
	URL     string  `json:"url" yaml:"url"`         // http(s) URL or local path
	Variant Variant `json:"variant" yaml:"variant"` // tickets or complaints
}

// RequiredColumns returns the header names the variant cannot do without
func (v Variant) RequiredColumns() []string {
	cols := []string{ColumnCountry, ColumnModel, ColumnCategories}
	if v == VariantComplaints {
		cols = append(cols, ColumnDate)
	}
	return cols
}

// HasDate reports whether rows of this variant carry a date
func (v Variant) HasDate() bool {
	return v == VariantComplaints
}

// Valid reports whether v is a known variant
func (v Variant) Valid() bool {
	switch v {
	case VariantTickets, VariantComplaints:
		return true
	}
	return false
}
