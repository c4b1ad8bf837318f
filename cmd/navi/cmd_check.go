package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ziracms/editor-sub001/workspace"
)

func newCheckCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check <path or glob>...",
		Short: "Report unbalanced braces, parentheses and brackets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := collect(cmd.Context(), g, args)
			if err != nil {
				return err
			}
			total := 0
			for _, doc := range docs {
				total += printErrors(doc)
			}
			if total > 0 {
				return fmt.Errorf("%d problems in %d files", total, len(docs))
			}
			return nil
		},
	}
}

// collect parses the files named by args. A directory is scanned
// recursively; anything else is expanded as a glob.
func collect(ctx context.Context, g *globals, args []string) ([]*workspace.Document, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var docs []*workspace.Document
	var paths []string
	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			scanned, err := workspace.New(arg, g.cfg).Scan(ctx)
			if err != nil {
				return nil, err
			}
			docs = append(docs, scanned...)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %s", arg)
		}
		paths = append(paths, matches...)
	}
	parsed, err := workspace.New(".", g.cfg).ParseFiles(ctx, paths)
	if err != nil {
		return nil, err
	}
	return append(docs, parsed...), nil
}
