// Command dashboard serves the tickets dashboard API or prints its frequency
// tables on the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	sourceURL  string
	variant    string
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Tickets dashboard: spreadsheet frequency tables by country and category",
	Long: `dashboard fetches the tickets spreadsheet, normalizes its categories,
applies country/model/date filters and counts tickets by country and by category.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "dashboard.yaml", "path to the YAML config")
	rootCmd.PersistentFlags().StringVar(&sourceURL, "source", "", "spreadsheet URL or path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&variant, "variant", "", "tickets or complaints (overrides config)")

	rootCmd.AddCommand(serveCmd, summaryCmd, loadsCmd, initConfigCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
