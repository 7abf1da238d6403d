// Command mpgexplorer serves the MPG dashboard and renders its charts,
// class means and exports from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/mpgexplorer/config"
	"github.com/spektr-org/mpgexplorer/dataset"
	"github.com/spektr-org/mpgexplorer/logging"
)

const version = "0.3.0"

var (
	configPath string
	dataPath   string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mpgexplorer",
	Short: "MPG Data Explorer - displacement vs highway mileage by model year",
	Long: `mpgexplorer explores the Auto MPG dataset.

It plots engine displacement against highway fuel efficiency, filters by
model year, overlays the mean of each vehicle class, and renders the same
chart with Plotly, gonum/plot and go-chart.

Run "mpgexplorer serve" to start the web dashboard.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mpgexplorer %s\n", version)
	},
}

// setup loads the config, applies flag overrides and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == versionCmd.Name() {
		return nil
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dataPath != "" {
		loaded.DataPath = dataPath
	}
	if logLevel != "" {
		loaded.Logging.Level = logLevel
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.New(loaded.Logging.Level, loaded.Logging.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cfg, logger = loaded, l
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Dataset CSV (overrides data_path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")

	renderCmd.Flags().StringVarP(&renderBackend, "backend", "b", "plotly", `Backend name, or "all"`)
	renderCmd.Flags().StringVarP(&renderYear, "year", "y", "All", "Model year or All")
	renderCmd.Flags().BoolVar(&renderMeans, "means", true, "Overlay class means")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "Output format: json, png, svg (default: backend's first)")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", `Output file, or directory with --backend all (default: stdout)`)

	meansCmd.Flags().StringVarP(&meansYear, "year", "y", "All", "Model year or All")
	meansCmd.Flags().StringVarP(&meansFormat, "format", "f", "csv", "Output format: csv, table")

	describeCmd.Flags().StringVarP(&describeYear, "year", "y", "All", "Model year or All")
	describeCmd.Flags().StringVarP(&describeFormat, "format", "f", "table", "Output format: csv, table")

	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "table", "Output format: csv, table, json")

	exportCmd.Flags().StringVarP(&exportYear, "year", "y", "All", "Model year or All")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Workbook path (default: mpg-<year>.xlsx)")

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(meansCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(yearsCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func loadTable() (*dataset.Table, error) {
	table, err := dataset.Load(cfg.DataPath, cfg.Columns)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded",
		zap.String("path", table.Path),
		zap.Int("rows", table.Len()),
		zap.Strings("years", table.Years))
	return table, nil
}
