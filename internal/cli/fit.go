package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jverbeke/go-crashstats/regression"
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a single regression model",
	Long: `fit estimates one model over the loaded dataset and prints its
coefficient table. The family defaults to the automatic selection policy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		outcome, err := cmd.Flags().GetString("outcome")
		if err != nil {
			return err
		}
		predictors, err := cmd.Flags().GetStringSlice("predictors")
		if err != nil {
			return err
		}
		familyName, err := cmd.Flags().GetString("family")
		if err != nil {
			return err
		}
		family, err := regression.ParseSpecFamily(familyName)
		if err != nil {
			return err
		}

		d, err := loadDataset(cmd, cfg)
		if err != nil {
			return err
		}

		m, err := regression.Fit(d, &regression.Spec{
			Outcome:    outcome,
			Predictors: predictors,
			Family:     family,
		}, glmOptions(cfg))
		if err != nil {
			return err
		}
		return m.TablePrint(os.Stdout, "", "  ")
	},
}

func init() {
	fitCmd.Flags().String("outcome", "", "outcome column to model")
	fitCmd.Flags().StringSlice("predictors", nil, "comma separated predictor columns")
	fitCmd.Flags().String("family", "auto", "model family: auto, poisson, negative_binomial or logistic")
	_ = fitCmd.MarkFlagRequired("outcome")
	_ = fitCmd.MarkFlagRequired("predictors")
	rootCmd.AddCommand(fitCmd)
}
