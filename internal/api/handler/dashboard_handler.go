package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-tickets-dashboard/internal/model"
	"go-tickets-dashboard/internal/pipeline"
	"go-tickets-dashboard/internal/render"
	"go-tickets-dashboard/pkg/router"
	"go-tickets-dashboard/pkg/utils"
)

// DashboardLoader loads and forgets tables
type DashboardLoader interface {
	pipeline.TableLoader
	Invalidate(ctx context.Context, location string)
	Reset(ctx context.Context)
	Cached() []string
}

// LoadHistory lists recorded loads
type LoadHistory interface {
	ListLoads(ctx context.Context, limit int) ([]model.LoadEvent, error)
	LastSuccess(ctx context.Context, source string) (*model.LoadEvent, error)
}

// Handler serves the dashboard API for one configured source
type Handler struct {
	Loader      DashboardLoader
	History     LoadHistory // optional
	Source      string
	PreviewRows int
	ChartWidth  int
	ChartHeight int
	Logger      *zap.Logger
}

// errorResponse is the JSON body of every failed request
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// GetDashboard returns both frequency tables for the current filter
// @Summary Get dashboard
// @Description Load the spreadsheet (cached), apply the filters and count tickets by country and by category
// @Tags dashboard
// @Produce json
// @Param country query string false "Country (empty or All = no constraint)"
// @Param model query string false "Model (empty or All = no constraint)"
// @Param start query string false "Start date YYYY-MM-DD (inclusive)"
// @Param end query string false "End date YYYY-MM-DD (inclusive)"
// @Success 200 {object} pipeline.Dashboard
// @Failure 400 {object} errorResponse "Invalid filter"
// @Failure 422 {object} errorResponse "Spreadsheet could not be parsed"
// @Failure 502 {object} errorResponse "Spreadsheet could not be fetched"
// @Failure 504 {object} errorResponse "Spreadsheet fetch timed out"
// @Router /dashboard [get]
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	d, err := pipeline.Run(r.Context(), h.Loader, h.Source, filter, h.PreviewRows)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// GetOptions lists selector values
// @Summary Get filter options
// @Description Distinct countries, models left after the country choice, and the observed date bounds
// @Tags dashboard
// @Produce json
// @Param country query string false "Country the model list cascades from"
// @Success 200 {object} model.FilterOptions
// @Router /options [get]
func (h *Handler) GetOptions(w http.ResponseWriter, r *http.Request) {
	table, err := h.Loader.Load(r.Context(), h.Source)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}
	opts := pipeline.Options(table, model.Filter{Country: r.URL.Query().Get("country")})
	writeJSON(w, http.StatusOK, opts)
}

// GetRecords returns filtered rows
// @Summary Get records
// @Description Filtered raw rows, first `limit` of them
// @Tags dashboard
// @Produce json
// @Param country query string false "Country"
// @Param model query string false "Model"
// @Param start query string false "Start date YYYY-MM-DD"
// @Param end query string false "End date YYYY-MM-DD"
// @Param limit query int false "Maximum rows (default preview size)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorResponse "Invalid filter"
// @Router /records [get]
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	table, err := h.Loader.Load(r.Context(), h.Source)
	if err == nil {
		err = pipeline.CheckFilter(table, filter)
	}
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	limit := utils.ParseLimit(r.URL.Query().Get("limit"), h.previewRows())
	filtered := pipeline.ApplyFilters(table, filter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"source":  h.Source,
		"records": filtered.Head(limit),
		"count":   filtered.Len(),
		"limit":   limit,
	})
}

// GetChart renders one frequency table as a PNG pie chart
// @Summary Get chart
// @Description Pie chart of tickets by country or by category
// @Tags charts
// @Produce png
// @Param chart path string true "countries.png or categories.png"
// @Param country query string false "Country"
// @Param model query string false "Model"
// @Param start query string false "Start date YYYY-MM-DD (inclusive)"
// @Param end query string false "End date YYYY-MM-DD (inclusive)"
// @Success 200 {file} file "PNG image"
// @Failure 400 {object} errorResponse "Invalid filter"
// @Failure 404 {object} errorResponse "Unknown chart"
// @Router /charts/{chart} [get]
func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(router.URLParam(r, "chart"), ".png")
	if name != "countries" && name != "categories" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown chart %q", name)})
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	table, err := h.Loader.Load(r.Context(), h.Source)
	if err == nil {
		err = pipeline.CheckFilter(table, filter)
	}
	if err != nil {
		h.writeLoadError(w, err)
		return
	}

	countries, categories := pipeline.Aggregate(pipeline.ApplyFilters(table, filter))
	ft, title := countries, "Tickets by Country"
	if name == "categories" {
		ft, title = categories, "Tickets by Category"
	}

	var buf bytes.Buffer
	opts := render.PieOptions{Title: title, Width: h.ChartWidth, Height: h.ChartHeight, ShowPercent: true}
	if err := render.Pie(&buf, ft, opts); err != nil {
		h.logger().Error("chart render failed", zap.String("chart", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to render chart"})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// InvalidateCache drops the cached spreadsheet so the next request refetches
// @Summary Invalidate cache
// @Tags cache
// @Produce json
// @Param all query bool false "Drop every cached source, not just the configured one"
// @Success 200 {object} map[string]interface{}
// @Router /cache/invalidate [post]
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		dropped := h.Loader.Cached()
		h.Loader.Reset(r.Context())
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "cache reset",
			"sources": dropped,
		})
		return
	}
	h.Loader.Invalidate(r.Context(), h.Source)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "cache invalidated",
		"source":  h.Source,
	})
}

// ListLoads returns recent spreadsheet loads
// @Summary List loads
// @Tags cache
// @Produce json
// @Param limit query int false "Maximum entries (default 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errorResponse "History disabled"
// @Router /loads [get]
func (h *Handler) ListLoads(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "load history is disabled"})
		return
	}
	limit := utils.ParseLimit(r.URL.Query().Get("limit"), 100)
	loads, err := h.History.ListLoads(r.Context(), limit)
	if err != nil {
		h.logger().Error("list loads failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to retrieve loads"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"loads": loads,
		"count": len(loads),
		"limit": limit,
	})
}

// LatestLoad returns the last successful load of the configured source
// @Summary Latest successful load
// @Tags cache
// @Produce json
// @Success 200 {object} model.LoadEvent
// @Failure 404 {object} errorResponse "History disabled or no successful load yet"
// @Router /loads/latest [get]
func (h *Handler) LatestLoad(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "load history is disabled"})
		return
	}
	ev, err := h.History.LastSuccess(r.Context(), h.Source)
	if err != nil {
		h.logger().Error("last load lookup failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to retrieve load"})
		return
	}
	if ev == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no successful load recorded"})
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// Health reports liveness and which sources are cached
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"cached": h.Loader.Cached(),
	})
}

// parseFilter reads country, model, start and end query parameters. A
// missing bound leaves that side of the date range open.
func parseFilter(r *http.Request) (model.Filter, error) {
	q := r.URL.Query()
	f := model.Filter{
		Country: q.Get("country"),
		Model:   q.Get("model"),
	}

	startRaw, endRaw := q.Get("start"), q.Get("end")
	if startRaw == "" && endRaw == "" {
		return f, nil
	}

	dates := &model.DateRange{End: time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}
	if startRaw != "" {
		start, err := utils.ParseDay(startRaw)
		if err != nil {
			return f, fmt.Errorf("invalid start date %q, want YYYY-MM-DD", startRaw)
		}
		dates.Start = start
	}
	if endRaw != "" {
		end, err := utils.ParseDay(endRaw)
		if err != nil {
			return f, fmt.Errorf("invalid end date %q, want YYYY-MM-DD", endRaw)
		}
		dates.End = end
	}
	if dates.End.Before(dates.Start) {
		return f, fmt.Errorf("start date is after end date")
	}
	f.Dates = dates
	return f, nil
}

func (h *Handler) writeLoadError(w http.ResponseWriter, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, pipeline.ErrFetchTimeout):
		status, kind = http.StatusGatewayTimeout, "fetch_timeout"
	case errors.Is(err, pipeline.ErrFetch):
		status, kind = http.StatusBadGateway, "fetch"
	case errors.Is(err, pipeline.ErrParse):
		status, kind = http.StatusUnprocessableEntity, "parse"
	case errors.Is(err, pipeline.ErrFilter):
		status, kind = http.StatusBadRequest, "filter"
	}
	h.logger().Warn("dashboard load failed", zap.String("kind", kind), zap.Error(err))
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func (h *Handler) previewRows() int {
	if h.PreviewRows > 0 {
		return h.PreviewRows
	}
	return pipeline.DefaultPreviewRows
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
