package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	crashstats "github.com/jverbeke/go-crashstats"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis pipeline",
	Long: `analyze loads the dataset, computes the exploration tables, fits the
configured models and writes the report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		if format == "" {
			format = cfg.Output.Format
		}
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		if output == "" {
			output = cfg.Output.Path
		}
		plot, err := cmd.Flags().GetString("plot")
		if err != nil {
			return err
		}
		if plot == "" {
			plot = cfg.Output.Plot
		}

		d, err := loadDataset(cmd, cfg)
		if err != nil {
			return err
		}

		opt := &crashstats.Options{
			Source: cfg.Input.Source,
			GLM:    glmOptions(cfg),
			Specs:  cfg.Specs(),
		}
		a, err := crashstats.New(opt)
		if err != nil {
			return err
		}
		if err := a.RunDataset(d); err != nil {
			return err
		}

		r, err := a.Report()
		if err != nil {
			return fmt.Errorf("unable to build report, %w", err)
		}
		if err := writeReport(r, format, output); err != nil {
			return err
		}

		if plot != "" {
			return a.PlotFile(plot)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("format", "", "report format: table or json")
	analyzeCmd.Flags().String("output", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().String("plot", "", "write the HTML chart page to this path")
	rootCmd.AddCommand(analyzeCmd)
}
