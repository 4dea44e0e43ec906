package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"go-tickets-dashboard/internal/model"
)

// ------------------- Workbook Parsing -------------------

// ParseWorkbook reads the first sheet of an xlsx document. The first row is
// the header; rows with no content are skipped. Cells are read raw so date
// cells arrive as serial numbers regardless of their display format.
func ParseWorkbook(content []byte, variant model.Variant) ([]model.Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("not a valid workbook: %w", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &ParseError{Err: fmt.Errorf("read sheet %q: %w", sheets[0], err)}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Err: fmt.Errorf("sheet %q has no header row", sheets[0])}
	}

	cols, err := validateHeader(rows[0], variant.RequiredColumns())
	if err != nil {
		return nil, err
	}

	records := make([]model.Record, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if blankRow(cells) {
			continue
		}
		rec, err := buildRecord(cells, cols, variant, i+2)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
