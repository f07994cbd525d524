package cli

import (
	"github.com/spf13/cobra"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/clustering"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/output"
)

func runCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Build the purchase graph, detect communities and print metrics",
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
			runConfig, err := clustering.FromSettings(settings, logger)
			if err != nil {
				return err
			}

			result, err := clustering.RunPurchaseClustering(cmd.Context(), runConfig)
			if err != nil {
				return err
			}
			return output.WriteReport(cmd.OutOrStdout(), result.Report)
		},
	}

	addInputFlags(c.Flags())
	c.Flags().Float64("resolution", 1.0, "Modularity resolution")
	c.Flags().String("layout", "force", "Layout for rendering: force|mds")
	c.Flags().Int("iterations", 50, "Force layout iterations")
	c.Flags().StringP("clusters", "o", "clusters.json", "Cluster JSON output file")
	c.Flags().String("plot", "", "Render the graph to this .png/.svg/.pdf file (optional)")
	return c
}
