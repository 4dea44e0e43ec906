package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-tickets-dashboard/internal/model"
)

func exampleDashboard(t *testing.T) *Dashboard {
	t.Helper()
	l := NewLoader(&fakeFetcher{data: map[string][]byte{"src": ticketsWorkbook(t)}}, nil)
	d, err := Run(context.Background(), l, "src", model.Filter{}, 5)
	require.NoError(t, err)
	return d
}

func TestExport_AllFormats(t *testing.T) {
	dir := t.TempDir()
	em := NewExportManager(dir, "run-1")

	results := em.Export(exampleDashboard(t), []string{"csv", "json", "xlsx"})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Success, "%s: %s", r.Type, r.Error)
	}
	assert.Equal(t, "csv", results[0].Type)
	assert.Equal(t, "json", results[1].Type)
	assert.Equal(t, "excel", results[2].Type)

	// 2 countries + 2 categories
	assert.Equal(t, 4, results[0].RecordCount)

	countries, err := os.ReadFile(filepath.Join(dir, "run-1", "countries.csv"))
	require.NoError(t, err)
	assert.Equal(t, "country,count,percent\nUS,2,66.67\nFR,1,33.33\n", string(countries))

	categories, err := os.ReadFile(filepath.Join(dir, "run-1", "categories.csv"))
	require.NoError(t, err)
	assert.Equal(t, "category,count,percent\nUncategorized,2,50.00\nBilling,2,50.00\n", string(categories))

	raw, err := os.ReadFile(results[1].Path)
	require.NoError(t, err)
	var doc struct {
		ExportInfo struct {
			RunID string `json:"run_id"`
			Rows  int    `json:"rows"`
		} `json:"export_info"`
		Data Dashboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "run-1", doc.ExportInfo.RunID)
	assert.Equal(t, 3, doc.ExportInfo.Rows)
	assert.Len(t, doc.Data.Categories, 2)

	f, err := excelize.OpenFile(results[2].Path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Countries", "Categories"}, f.GetSheetList())
	rows, err := f.GetRows("Countries")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"country", "count", "percent"}, rows[0])
	assert.Equal(t, "US", rows[1][0])
	assert.Equal(t, "2", rows[1][1])
}

func TestExport_UnsupportedFormat(t *testing.T) {
	em := NewExportManager(t.TempDir(), "run-2")

	results := em.Export(exampleDashboard(t), []string{"pdf"})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, "unknown", results[0].Type)
	assert.Contains(t, results[0].Error, "unsupported export format")
}
