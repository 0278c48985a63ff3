package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/state"
)

var errDocumentsDiffer = errors.New("documents differ")

func (c *cli) diffCmd() *cobra.Command {
	var as string
	var stored, exitCode bool
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show the line differences between two documents",
		Long: `Show the line differences between two documents.

Both documents are rendered (Markdown by default) and compared line by
line. With --stored the arguments are document IDs instead of files.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]*model.Node, 2)
			if stored {
				s, closeStore, err := c.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer closeStore()
				for i, id := range args {
					snap, err := s.Load(cmd.Context(), id)
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					st, err := snap.State(state.Config{})
					if err != nil {
						return err
					}
					docs[i] = st.Doc()
				}
			} else {
				for i, path := range args {
					doc, err := c.loadDocument(path, formatAuto)
					if err != nil {
						return err
					}
					docs[i] = doc
				}
			}

			oldText, err := renderString(docs[0], as)
			if err != nil {
				return err
			}
			newText, err := renderString(docs[1], as)
			if err != nil {
				return err
			}
			if !writeLineDiff(c.out, oldText, newText) {
				fmt.Fprintln(c.out, "no differences")
				return nil
			}
			if exitCode {
				return errDocumentsDiffer
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", formatMarkdown, "compare rendered as (md, html, json, text)")
	cmd.Flags().BoolVar(&stored, "stored", false, "arguments are stored document IDs")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "fail when the documents differ")
	return cmd
}

// writeLineDiff writes oldText and newText as a unified line listing and
// reports whether they differ.
func writeLineDiff(w io.Writer, oldText, newText string) bool {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	changed := false
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, changed = "- ", true
		case diffmatchpatch.DiffInsert:
			prefix, changed = "+ ", true
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			fmt.Fprint(w, prefix, strings.TrimSuffix(line, "\n"), "\n")
		}
	}
	return changed
}
