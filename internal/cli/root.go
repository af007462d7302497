// Package cli implements the crashstats command line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	crashstats "github.com/jverbeke/go-crashstats"
	"github.com/jverbeke/go-crashstats/dataset"
	"github.com/jverbeke/go-crashstats/glm"
	"github.com/jverbeke/go-crashstats/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "crashstats",
	Short: "Analyzes the Belgian open road accident dataset",
	Long: `crashstats loads a TF_ACCIDENTS_2023 extract, explores it and fits
regression models of accident casualties and fatality odds, reporting
coefficient significance, goodness of fit and model comparison diagnostics.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initLogger)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./crashstats.yaml)")
	rootCmd.PersistentFlags().String("input", "", "dataset source: local path, http(s) URL or s3:// URI")
	rootCmd.PersistentFlags().Bool("strict", false, "abort on the first malformed row")
	rootCmd.PersistentFlags().String("delimiter", "", "field delimiter (default sniffs the header)")
}

func initLogger() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err.Error())
		os.Exit(1)
	}
}

// loadConfig binds the persistent flags and reads the configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	if err := v.BindPFlag("input.source", cmd.Flags().Lookup("input")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("input.strict", cmd.Flags().Lookup("strict")); err != nil {
		return nil, err
	}
	if err := v.BindPFlag("input.delimiter", cmd.Flags().Lookup("delimiter")); err != nil {
		return nil, err
	}
	return config.LoadViper(v, cfgFile)
}

// loadDataset reads the configured source with a progress bar on stderr.
func loadDataset(cmd *cobra.Command, cfg *config.Config) (*dataset.Dataset, error) {
	if cfg.Input.Source == "" {
		return nil, config.ErrNoInput
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("loading"),
		progressbar.OptionSpinnerType(14),
	)
	opt := &dataset.LoadOptions{
		Strict:   cfg.Input.Strict,
		Progress: func(row int) { _ = bar.Add(1) },
	}
	if cfg.Input.Delimiter != "" {
		opt.Comma = rune(cfg.Input.Delimiter[0])
	}

	d, err := dataset.Load(cmd.Context(), cfg.Input.Source, opt)
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s, %w", cfg.Input.Source, err)
	}
	if rejected := d.Rejected(); len(rejected) > 0 {
		slog.Warn("rejected malformed rows", "rows", len(rejected))
	}
	return d, nil
}

// glmOptions maps the fitter configuration onto model fitting options.
func glmOptions(cfg *config.Config) *glm.Options {
	opt := glm.NewDefaultOptions()
	if cfg.Fitter.MaxIterations > 0 {
		opt.MaxIterations = cfg.Fitter.MaxIterations
	}
	if cfg.Fitter.Tolerance > 0 {
		opt.Tolerance = cfg.Fitter.Tolerance
	}
	return opt
}

// reportWriter resolves the report destination, standard output by default.
func reportWriter(path string) (io.WriteCloser, error) {
	if path == "" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s, %w", path, err)
	}
	return f, nil
}

func writeReport(r *crashstats.Report, format, path string) error {
	w, err := reportWriter(path)
	if err != nil {
		return err
	}
	if w != os.Stdout {
		defer w.Close()
	}

	if format == "json" {
		return r.JSON(w)
	}
	return r.TablePrint(w)
}
