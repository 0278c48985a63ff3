package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/inkwell/internal/state"
	"github.com/dshills/inkwell/internal/store"
)

func (c *cli) renderCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Convert a document to HTML, Markdown, JSON or text",
		Long: `Convert a document to HTML, Markdown, JSON or text.

The input is a persisted JSON document or HTML, read from the file or from
standard input. Examples:

  inkwell render post.json --to md
  curl -s https://example.com/post.html | inkwell render --to json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(argOr(args, 0, "-"), from)
			if err != nil {
				return err
			}
			return writeDocument(c.out, doc, to)
		},
	}
	cmd.Flags().StringVar(&from, "from", formatAuto, "input format (auto, json, html)")
	cmd.Flags().StringVar(&to, "to", formatHTML, "output format (html, md, json, text)")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	var from, id string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a document and print its ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := c.loadDocument(args[0], from)
			if err != nil {
				return err
			}
			st, err := state.New(state.Config{Doc: doc})
			if err != nil {
				return err
			}
			if id == "" {
				id = store.NewID()
			}
			snap, err := store.FromState(id, st, time.Now())
			if err != nil {
				return err
			}
			docs, closeStore, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			if err := docs.Save(cmd.Context(), snap); err != nil {
				return err
			}
			fmt.Fprintln(c.out, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", formatAuto, "input format (auto, json, html)")
	cmd.Flags().StringVar(&id, "id", "", "document ID (default: a new UUID)")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeStore, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			snap, err := docs.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			st, err := snap.State(state.Config{})
			if err != nil {
				return err
			}
			return writeDocument(c.out, st.Doc(), to)
		},
	}
	cmd.Flags().StringVar(&to, "to", formatHTML, "output format (html, md, json, text)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored document IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			docs, closeStore, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			ids, err := docs.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(c.out, id)
			}
			return nil
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"delete"},
		Short:   "Delete stored documents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, closeStore, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			var errs []error
			for _, id := range args {
				if err := docs.Delete(cmd.Context(), id); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", id, err))
				}
			}
			return errors.Join(errs...)
		},
	}
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]...",
		Short: "Check the configuration and documents",
		Long: `Check the configuration and documents.

Without arguments only the configuration is checked. Each file must hold a
document that satisfies the schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.cfg.Settings().Validate(); err != nil {
				return err
			}
			var errs []error
			for _, path := range args {
				doc, err := c.loadDocument(path, formatAuto)
				if err == nil {
					err = doc.Check()
				}
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(c.out, "%s: ok\n", path)
			}
			if len(errs) == 0 {
				fmt.Fprintln(c.out, "configuration: ok")
			}
			return errors.Join(errs...)
		},
	}
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}
