package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziracms/editor-sub001/index"
)

func newFindCmd(g *globals) *cobra.Command {
	var indexDir string

	cmd := &cobra.Command{
		Use:   "find <name>",
		Short: "Look up declarations in an index written by the index command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pointers, err := readPairs(filepath.Join(indexDir, index.PointersFile))
			if err != nil {
				return err
			}
			synopses, err := readPairs(filepath.Join(indexDir, index.SynopsesFile))
			if err != nil {
				return err
			}

			var names []string
			for name := range pointers {
				if matchesName(name, args[0]) {
					names = append(names, name)
				}
			}
			if len(names) == 0 {
				return fmt.Errorf("%s: not found", args[0])
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				for _, ptr := range pointers[name] {
					fmt.Fprintf(out, "%s\t%s\n", ptr, name)
				}
				for _, synopsis := range synopses[name] {
					fmt.Fprintf(out, "\t%s\n", synopsis)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&indexDir, "index", "i", ".navi", "index directory")

	return cmd
}

// matchesName compares against the full name, the member after "::" and
// the last namespace segment, ignoring case.
func matchesName(name, query string) bool {
	short := name
	if i := strings.LastIndex(short, "::"); i >= 0 {
		short = short[i+2:]
	}
	short = short[strings.LastIndexByte(short, '\\')+1:]
	return strings.EqualFold(name, query) || strings.EqualFold(short, query)
}

func readPairs(path string) (map[string][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()
	return index.ReadPairs(f)
}
