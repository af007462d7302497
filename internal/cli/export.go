package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load, clean and export the dataset",
	Long: `export loads the dataset, dropping malformed rows, and writes the clean
records to parquet and optionally CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		parquetPath, err := cmd.Flags().GetString("parquet")
		if err != nil {
			return err
		}
		csvPath, err := cmd.Flags().GetString("csv")
		if err != nil {
			return err
		}

		d, err := loadDataset(cmd, cfg)
		if err != nil {
			return err
		}

		if err := d.WriteParquet(parquetPath); err != nil {
			return err
		}
		if csvPath != "" {
			f, err := os.Create(csvPath)
			if err != nil {
				return fmt.Errorf("unable to create %s, %w", csvPath, err)
			}
			defer f.Close()
			return d.WriteCSV(f)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("parquet", "accidents.parquet", "parquet output path")
	exportCmd.Flags().String("csv", "", "also export the clean rows to this CSV path")
	rootCmd.AddCommand(exportCmd)
}
