package api

import (
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "go-tickets-dashboard/docs"
	"go-tickets-dashboard/internal/api/handler"
	"go-tickets-dashboard/internal/app"
	"go-tickets-dashboard/pkg/router"
)

func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.GET("/health", h.Health)

	r.GET("/api/v1/dashboard", h.GetDashboard)
	r.GET("/api/v1/options", h.GetOptions)
	r.GET("/api/v1/records", h.GetRecords)
	r.GET("/api/v1/charts/{chart}", h.GetChart)
	r.POST("/api/v1/cache/invalidate", h.InvalidateCache)
	r.DELETE("/api/v1/cache", h.InvalidateCache)
	r.GET("/api/v1/loads", h.ListLoads)
	r.GET("/api/v1/loads/latest", h.LatestLoad)

	r.Mount("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

// NewRouter builds the dashboard API for an assembled App
func NewRouter(a *app.App) *router.Router {
	h := &handler.Handler{
		Loader:      a.Loader,
		Source:      a.Config.Source.URL,
		PreviewRows: a.Config.Server.PreviewRows,
		ChartWidth:  a.Config.Server.ChartWidth,
		ChartHeight: a.Config.Server.ChartHeight,
		Logger:      a.Logger.Named("api"),
	}
	// keep the interface nil when history is off
	if a.History != nil {
		h.History = a.History
	}

	r := router.New(a.Logger.Named("http"))
	RegisterRoutes(r, h)
	a.Logger.Debug("routes registered", zap.Int("count", len(r.Routes())))
	return r
}
