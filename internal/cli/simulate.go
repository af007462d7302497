package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jverbeke/go-crashstats/simulate"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a synthetic accident dataset",
	Long: `simulate writes a synthetic dataset with a known ground truth: highway
and unlit night accidents carry higher expected casualty counts. The output
loads back through the analyze command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := cmd.Flags().GetInt("records")
		if err != nil {
			return err
		}
		seed, err := cmd.Flags().GetInt64("seed")
		if err != nil {
			return err
		}
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return err
		}
		parquetPath, err := cmd.Flags().GetString("parquet")
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(records,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("simulating"),
		)
		d, err := simulate.Generate(&simulate.Config{
			Records:  records,
			Seed:     seed,
			Start:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Progress: func(n int) { _ = bar.Set(n) },
		})
		if err != nil {
			return err
		}
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)

		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("unable to create %s, %w", output, err)
		}
		defer f.Close()
		if err := d.WriteCSV(f); err != nil {
			return err
		}

		if parquetPath != "" {
			return d.WriteParquet(parquetPath)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().Int("records", simulate.DefaultRecords, "number of accident rows to generate")
	simulateCmd.Flags().Int64("seed", 42, "random seed")
	simulateCmd.Flags().String("output", "accidents.csv", "CSV output path")
	simulateCmd.Flags().String("parquet", "", "also export to this parquet path")
	rootCmd.AddCommand(simulateCmd)
}
