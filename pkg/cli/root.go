// Package cli wires the cobra command tree to the clustering pipeline.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/config"
)

// Execute runs the root command and exits non-zero on failure
func Execute() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configFile string
	logLevel   string
	logFormat  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "purchase-graph",
		Short:         "Cluster customers and product categories by greedy modularity",
		Version:       Version,
		SilenceUsage:  true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: trace|debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "console", "Log format: console|json")

	cmd.AddCommand(runCmd(opts))
	cmd.AddCommand(validateCmd(opts))
	cmd.AddCommand(versionCmd())
	return cmd
}

// addInputFlags registers the flags shared by run and validate
func addInputFlags(fs *pflag.FlagSet) {
	fs.StringP("input", "i", "", "Transaction CSV file")
	fs.Float64("fraction", 0.005, "Fraction of rows to sample, in (0, 1]")
	fs.Uint64("seed", 42, "Sampling seed")
}

// loadConfig layers defaults, the optional config file, PGC_ environment
// variables and explicitly set flags, in increasing precedence.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg := config.NewConfig()
	if opts.configFile != "" {
		if err := cfg.LoadFromFile(opts.configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if err := cfg.BindFlags(cmd.InheritedFlags()); err != nil {
		return nil, err
	}
	return cfg, nil
}
