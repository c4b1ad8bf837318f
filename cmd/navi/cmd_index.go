package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ziracms/editor-sub001/index"
	"github.com/ziracms/editor-sub001/workspace"
)

func newIndexCmd(g *globals) *cobra.Command {
	var outDir string
	var full bool

	cmd := &cobra.Command{
		Use:   "index [dir]",
		Short: "Write declaration pointers and synopses for a source tree",
		Long: `Index parses the PHP, JavaScript and CSS files below dir and writes
pointers.tsv, synopses.tsv, declarations.json and manifest.json. Files whose
modification time or content hash match the manifest are not parsed again.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if outDir == "" {
				outDir = filepath.Join(root, ".navi")
			}

			store := index.NewStore()
			if !full {
				loaded, err := index.LoadStore(outDir)
				if err != nil {
					return err
				}
				store = loaded
			}

			parsed, err := workspace.New(root, g.cfg).Refresh(cmd.Context(), store)
			if err != nil {
				return err
			}
			if err := store.Save(outDir); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files (%d parsed), %d declarations\n",
				len(store.Manifest), parsed, len(store.All()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default <dir>/.navi)")
	cmd.Flags().BoolVar(&full, "full", false, "ignore the existing index and parse every file")

	return cmd
}
