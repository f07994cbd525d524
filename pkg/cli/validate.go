package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/parser"
)

// validateCmd loads and checks the input without clustering
func validateCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and input file (no clustering)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			settings, err := cfg.Settings()
			if err != nil {
				return err
			}

			logger := cfg.CreateLogger(cmd.ErrOrStderr())
			load, err := settings.LoadOptions(logger)
			if err != nil {
				return err
			}
			dataset, err := parser.Load(settings.Input.Path, load)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d rows, %d sampled, %d customers, %d edges\n",
				dataset.TotalRows, dataset.SampledRows, dataset.Customers, len(dataset.Records))
			return nil
		},
	}

	addInputFlags(c.Flags())
	return c
}
