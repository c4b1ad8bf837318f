package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/ziracms/editor-sub001/config"
)

const version = "0.1.0"

// globals are set by the root command before any subcommand runs.
type globals struct {
	configPath string
	verbosity  int
	cfg        *config.Config
}

func main() {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:          "navi",
		Short:        "Source navigation for PHP, JavaScript and CSS",
		SilenceUsage: true,
		Version:      version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			g.cfg = cfg

			verbosity := cfg.Log.Verbosity
			if g.verbosity > 0 {
				verbosity = g.verbosity
			}
			var path *string
			if cfg.Log.File != "" {
				path = &cfg.Log.File
			}
			commonlog.Configure(verbosity, path)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", config.DefaultFile, "configuration file")
	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", "log verbosity (repeat for more)")

	rootCmd.AddCommand(newParseCmd(g))
	rootCmd.AddCommand(newOutlineCmd(g))
	rootCmd.AddCommand(newCheckCmd(g))
	rootCmd.AddCommand(newIndexCmd(g))
	rootCmd.AddCommand(newFindCmd(g))
	rootCmd.AddCommand(newLSPCmd(g))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
