package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/logging"
	"github.com/dshills/inkwell/internal/state"
	"github.com/dshills/inkwell/internal/store"
	"github.com/dshills/inkwell/internal/terminal"
	"github.com/dshills/inkwell/internal/upload"
	"github.com/dshills/inkwell/internal/view"
)

func (c *cli) editCmd() *cobra.Command {
	var file, logFile string
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a document in the terminal",
		Long: `Edit a document in the terminal.

With an ID the stored document is opened, or created when it does not
exist. --file starts from a JSON or HTML document instead. Ctrl-S saves to
the store and Ctrl-Q quits. Editor settings are reloaded when the
configuration files change.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := c.editLogger(logFile)
			if err != nil {
				return err
			}
			defer closeLog()
			return c.edit(cmd.Context(), argOr(args, 0, ""), file, log)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "start from this document")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs here while the screen is in use")
	return cmd
}

// editLogger returns the logger for an editing session. Logs would
// corrupt the screen, so they go to path or nowhere.
func (c *cli) editLogger(path string) (*logging.Logger, func(), error) {
	if path == "" {
		return logging.Nop(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log file: %w", err)
	}
	log := c.cfg.Log().NewLogger(f)
	if c.logLevel != "" {
		log.SetLevel(logging.ParseLogLevel(c.logLevel))
	}
	return log, func() { f.Close() }, nil
}

func (c *cli) edit(ctx context.Context, id, file string, log *logging.Logger) error {
	c.log = log
	docs, closeStore, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	uc := c.cfg.Upload()
	up, err := newUploader(ctx, uc, log)
	if err != nil {
		return err
	}
	var host *terminal.Host
	uploadOpts := []upload.PluginOption{
		upload.WithPost(func(fn func()) { host.Post(fn) }),
		upload.WithTimeout(uc.Timeout.Std()),
	}
	setup, err := newEditorSetup(c.cfg.Editor(), up, uploadOpts, log)
	if err != nil {
		return err
	}
	defer func() { setup.Close() }()

	if id == "" {
		id = store.NewID()
	}
	st, err := c.openState(ctx, docs, id, file, state.Config{Plugins: setup.plugins})
	if err != nil {
		return err
	}

	screen, err := terminal.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	v := view.New(st, view.WithLayout(terminal.Layout()), view.WithLogger(log))
	defer v.Destroy()
	host = terminal.New(screen, v,
		terminal.WithTitle(id),
		terminal.WithLogger(log),
		terminal.WithSave(func(st *state.State) error {
			snap, err := store.FromState(id, st, time.Now())
			if err != nil {
				return err
			}
			return docs.Save(ctx, snap)
		}),
	)

	c.cfg.OnChange(func(s config.Settings) {
		host.Post(func() {
			next, err := newEditorSetup(s.Editor, up, uploadOpts, log)
			if err != nil {
				log.WithError(err).Warn("keeping the current editor settings")
				return
			}
			reconfigured, err := v.State().Reconfigure(next.plugins)
			if err != nil {
				next.Close()
				log.WithError(err).Warn("keeping the current editor settings")
				return
			}
			v.UpdateState(reconfigured)
			setup.Close()
			setup = next
			log.Info("editor settings reloaded")
		})
	})
	if err := c.cfg.Watch(); err != nil {
		log.WithError(err).Warn("configuration reload disabled")
	}
	defer c.cfg.Close()

	if err := host.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openState loads id from docs, starts from file, or starts empty.
func (c *cli) openState(ctx context.Context, docs store.DocumentStore, id, file string, cfg state.Config) (*state.State, error) {
	if file != "" {
		doc, err := c.loadDocument(file, formatAuto)
		if err != nil {
			return nil, err
		}
		cfg.Doc = doc
		return state.New(cfg)
	}
	snap, err := docs.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		c.log.Info("creating document %s", id)
		return state.New(cfg)
	}
	if err != nil {
		return nil, err
	}
	return snap.State(cfg)
}
