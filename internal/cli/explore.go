package cli

import (
	"os"

	"github.com/spf13/cobra"

	crashstats "github.com/jverbeke/go-crashstats"
)

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Print the exploration tables without fitting models",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		d, err := loadDataset(cmd, cfg)
		if err != nil {
			return err
		}

		exploration, err := crashstats.NewExploration(d)
		if err != nil {
			return err
		}
		return exploration.TablePrint(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
