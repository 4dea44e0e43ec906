package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"go-tickets-dashboard/internal/model"
	"go-tickets-dashboard/pkg/utils"
)

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "json", "excel"
	Path        string    `json:"path"`
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// ExportManager writes dashboard frequency tables into a per-run directory
type ExportManager struct {
	RunID   string
	Outputs *utils.OutputManager
}

// NewExportManager exports under baseDir/runID
func NewExportManager(baseDir, runID string) *ExportManager {
	return &ExportManager{RunID: runID, Outputs: utils.NewOutputManager(baseDir)}
}

// Export writes the dashboard once per requested format
// ("csv", "json" or "xlsx"). Failures are reported per result.
func (em *ExportManager) Export(d *Dashboard, formats []string) []ExportResult {
	countries, categories := d.Frequencies()
	results := make([]ExportResult, 0, len(formats))

	for _, format := range formats {
		var (
			path  string
			count int
			err   error
		)
		switch format {
		case "csv":
			path, count, err = em.exportCSVPair(countries, categories)
		case "json":
			if path, err = em.Outputs.GetOutputFilePath(em.RunID, "dashboard.json"); err == nil {
				count, err = em.exportJSON(path, d)
			}
		case "xlsx":
			if path, err = em.Outputs.GetOutputFilePath(em.RunID, "dashboard.xlsx"); err == nil {
				count, err = exportXLSX(path, countries, categories)
			}
		default:
			err = fmt.Errorf("unsupported export format: %s", format)
		}

		result := ExportResult{
			Type:        em.Outputs.GetFileType("dashboard." + format),
			Path:        path,
			RecordCount: count,
			Success:     err == nil,
			ExportedAt:  time.Now().UTC(),
		}
		if err != nil {
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func (em *ExportManager) exportCSVPair(countries, categories model.FrequencyTable) (string, int, error) {
	countriesPath, err := em.Outputs.GetOutputFilePath(em.RunID, "countries.csv")
	if err != nil {
		return "", 0, err
	}
	categoriesPath, err := em.Outputs.GetOutputFilePath(em.RunID, "categories.csv")
	if err != nil {
		return "", 0, err
	}

	n1, err := exportCSV(countriesPath, "country", countries)
	if err != nil {
		return countriesPath, n1, err
	}
	n2, err := exportCSV(categoriesPath, "category", categories)
	return filepath.Dir(countriesPath), n1 + n2, err
}

// exportCSV writes one frequency table as label,count,percent
func exportCSV(path, labelHeader string, ft model.FrequencyTable) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{labelHeader, "count", "percent"}); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	recordCount := 0
	for _, s := range ft.Percentages() {
		row := []string{s.Label, strconv.Itoa(s.Count), strconv.FormatFloat(s.Percent, 'f', 2, 64)}
		if err := writer.Write(row); err != nil {
			return recordCount, fmt.Errorf("failed to write row: %w", err)
		}
		recordCount++
	}
	writer.Flush()
	return recordCount, writer.Error()
}

func (em *ExportManager) exportJSON(path string, d *Dashboard) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"run_id":      em.RunID,
			"exported_at": time.Now().UTC(),
			"rows":        d.Rows,
			"export_type": "dashboard",
		},
		"data": d,
	}
	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(d.Countries) + len(d.Categories), nil
}

// exportXLSX writes both tables into one workbook, a sheet each
func exportXLSX(path string, countries, categories model.FrequencyTable) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	count := 0
	sheets := []struct {
		name   string
		header string
		ft     model.FrequencyTable
	}{
		{"Countries", "country", countries},
		{"Categories", "category", categories},
	}
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return 0, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return count, fmt.Errorf("create sheet %s: %w", s.name, err)
		}

		if err := f.SetSheetRow(s.name, "A1", &[]interface{}{s.header, "count", "percent"}); err != nil {
			return count, fmt.Errorf("write header: %w", err)
		}
		for r, share := range s.ft.Percentages() {
			cellName, _ := excelize.CoordinatesToCellName(1, r+2)
			row := []interface{}{share.Label, share.Count, share.Percent}
			if err := f.SetSheetRow(s.name, cellName, &row); err != nil {
				return count, fmt.Errorf("write row: %w", err)
			}
			count++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return count, fmt.Errorf("save workbook: %w", err)
	}
	return count, nil
}
