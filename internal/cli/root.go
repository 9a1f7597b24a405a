// Package cli implements the hoist command line host.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/internal/config"
	"github.com/hoistdev/hoist/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded by the root PersistentPreRun
	cfg config.Config
	log *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hoist",
		Short: "hoist is a native plugin host",
		Long:  "hoist discovers plugin libraries, resolves their dependency order, and runs them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			level := logLevel
			if level == "" {
				level = cfg.Log.Level
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "hoist.yaml", "config file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
