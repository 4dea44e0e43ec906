package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go-tickets-dashboard/internal/api"
	"go-tickets-dashboard/internal/app"
	"go-tickets-dashboard/internal/config"
	"go-tickets-dashboard/internal/model"
	"go-tickets-dashboard/internal/pipeline"
	"go-tickets-dashboard/pkg/utils"
)

var (
	filterCountry string
	filterModel   string
	filterStart   string
	filterEnd     string
	exportDir     string
	exportDefault bool
	exportFormats string
	loadsLimit    int
	overwrite     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return api.NewRouter(a).Start(ctx, a.Config.Server.Addr)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print ticket counts by country and category",
	Example: `  dashboard summary --country US
  dashboard summary --variant complaints --start 2024-01-01 --end 2024-03-31 --out outputs
  dashboard summary --export --formats csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		filter, err := cliFilter(a.Config.Source.Variant)
		if err != nil {
			return err
		}

		d, err := pipeline.Run(cmd.Context(), a.Loader, a.Config.Source.URL, filter, a.Config.Server.PreviewRows)
		if err != nil {
			return err
		}
		printDashboard(cmd.OutOrStdout(), d)

		dir := resolveExportDir(a.Config, exportDir, exportDefault)
		if dir == "" {
			return nil
		}
		formats := utils.SplitList(exportFormats)
		if len(formats) == 0 {
			formats = a.Config.Export.Formats
		}
		em := pipeline.NewExportManager(dir, uuid.New().String())
		for _, res := range em.Export(d, formats) {
			if !res.Success {
				return fmt.Errorf("export %s failed: %s", res.Type, res.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "💾 %s: %d rows → %s\n", res.Type, res.RecordCount, res.Path)
		}
		return nil
	},
}

var loadsCmd = &cobra.Command{
	Use:   "loads",
	Short: "List recorded spreadsheet loads",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		if a.History == nil {
			return fmt.Errorf("load history is disabled (set history.database_path)")
		}

		loads, err := a.History.ListLoads(cmd.Context(), loadsLimit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tSTATUS\tROWS\tDURATION\tSOURCE\tERROR")
		for _, ev := range loads {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				ev.StartedAt.Format(time.RFC3339), ev.Status, ev.Rows, ev.Duration, ev.Source, ev.Error)
		}
		return tw.Flush()
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default configuration to --config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !overwrite {
			return fmt.Errorf("%s already exists (use --force)", configPath)
		}
		cfg := config.DefaultConfig()
		if sourceURL != "" {
			cfg.Source.URL = sourceURL
		}
		if variant != "" {
			cfg.Source.Variant = model.Variant(variant)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(configPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ wrote %s\n", configPath)
		return nil
	},
}

func init() {
	f := summaryCmd.Flags()
	f.StringVar(&filterCountry, "country", "", "only tickets from this country")
	f.StringVar(&filterModel, "model", "", "only tickets for this model")
	f.StringVar(&filterStart, "start", "", "first day YYYY-MM-DD (complaints variant)")
	f.StringVar(&filterEnd, "end", "", "last day YYYY-MM-DD (complaints variant)")
	f.StringVar(&exportDir, "out", "", "export the tables under this directory")
	f.BoolVar(&exportDefault, "export", false, "export the tables under export.dir from the config")
	f.StringVar(&exportFormats, "formats", "", "comma separated export formats: csv,json,xlsx")

	loadsCmd.Flags().IntVar(&loadsLimit, "limit", 20, "maximum loads to list")
	initConfigCmd.Flags().BoolVar(&overwrite, "force", false, "overwrite an existing config file")
}

func buildApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if sourceURL != "" {
		cfg.Source.URL = sourceURL
	}
	if variant != "" {
		cfg.Source.Variant = model.Variant(variant)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return app.New(ctx, cfg)
}

// resolveExportDir picks the export directory: --out wins, --export falls
// back to the configured directory, neither means no export
func resolveExportDir(cfg *config.Config, out string, export bool) string {
	if out != "" {
		return out
	}
	if export {
		return cfg.Export.Dir
	}
	return ""
}

func cliFilter(v model.Variant) (model.Filter, error) {
	f := model.Filter{Country: filterCountry, Model: filterModel}
	if filterStart == "" && filterEnd == "" {
		return f, nil
	}
	if !v.HasDate() {
		return f, fmt.Errorf("--start and --end need dated data, %s has no date column", v)
	}
	if filterStart == "" || filterEnd == "" {
		return f, fmt.Errorf("--start and --end must be given together")
	}
	start, err := utils.ParseDay(filterStart)
	if err != nil {
		return f, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := utils.ParseDay(filterEnd)
	if err != nil {
		return f, fmt.Errorf("invalid --end: %w", err)
	}
	if end.Before(start) {
		return f, fmt.Errorf("--start is after --end")
	}
	f.Dates = &model.DateRange{Start: start, End: end}
	return f, nil
}

func printDashboard(w io.Writer, d *pipeline.Dashboard) {
	fmt.Fprintf(w, "📄 %s: %d of %d rows match\n\n", d.Source, d.Rows, d.TotalRows)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printShares(tw, "COUNTRY", d.Countries)
	fmt.Fprintln(tw)
	printShares(tw, "CATEGORY", d.Categories)
	tw.Flush()

	if len(d.Preview) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COUNTRY\tMODEL\tDATE\tCATEGORIES")
	for _, rec := range d.Preview {
		date := ""
		if !rec.Date.IsZero() {
			date = rec.Date.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Country, rec.Model, date, strings.Join(rec.Categories, ", "))
	}
	tw.Flush()
}

func printShares(tw *tabwriter.Writer, header string, shares []model.Share) {
	fmt.Fprintf(tw, "%s\tCOUNT\tPERCENT\n", header)
	for _, s := range shares {
		label := s.Label
		if s.Missing {
			label = "(blank)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", label, s.Count, s.Percent)
	}
}
