package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziracms/editor-sub001/format"
	"github.com/ziracms/editor-sub001/workspace"
)

func newParseCmd(g *globals) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a PHP, JavaScript or CSS file and dump the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws := workspace.New(".", g.cfg)
			doc, err := ws.Open(args[0])
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "json":
				err = format.NewJSONEncoder(out).Encode(doc.Result())
			case "outline":
				err = format.NewOutlineEncoder(out).Encode(doc.Outline())
			case "decl":
				err = format.NewLineEncoder(out).Encode(doc.Declarations())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			printErrors(doc)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, outline, decl)")

	return cmd
}

func printErrors(doc *workspace.Document) int {
	errs := doc.Errors()
	for _, e := range errs {
		fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", doc.Path, e.Line, doc.Lines().Column(e.Symbol)+1, e.Text)
	}
	return len(errs)
}

func newOutlineCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the navigator tree of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := workspace.New(".", g.cfg).Open(args[0])
			if err != nil {
				return fmt.Errorf("outline: %w", err)
			}
			if err := format.NewOutlineEncoder(cmd.OutOrStdout()).Encode(doc.Outline()); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			printErrors(doc)
			return nil
		},
	}
}
