package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ziracms/editor-sub001/workspace"
)

func newLSPCmd(g *globals) *cobra.Command {
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := workspace.NewLSPServer(version, g.cfg)
			server.WatchInterval = watch
			return server.RunStdio()
		},
	}

	cmd.Flags().DurationVar(&watch, "watch", 0, "poll the workspace for changes at this interval (0 disables)")

	return cmd
}
