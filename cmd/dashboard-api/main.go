package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"go-tickets-dashboard/internal/api"
	"go-tickets-dashboard/internal/app"
	"go-tickets-dashboard/internal/config"
)

// @title Tickets Dashboard API
// @version 1.0
// @description Frequency tables, filter options and pie charts over the tickets spreadsheet.
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "dashboard.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Close()

	r := api.NewRouter(a)
	if err := r.Start(ctx, cfg.Server.Addr); err != nil {
		a.Logger.Error("server stopped", zap.Error(err))
		a.Close()
		os.Exit(1)
	}
}
