package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/inkwell/internal/config"
	"github.com/dshills/inkwell/internal/logging"
)

// cli holds what every subcommand shares.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configFiles []string
	logLevel    string
	dbPath      string

	cfg *config.Config
	log *logging.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{in: stdin, out: stdout, errOut: stderr}
	root := &cobra.Command{
		Use:   "inkwell",
		Short: "A rich-text document editor",
		Long: `inkwell edits rich-text documents in the terminal and converts them
between the persisted JSON form, HTML and Markdown.

Configuration is read from .inkwell.toml or .inkwell.yaml in the current
directory and from ~/.config/inkwell/config.toml, then from INKWELL_*
environment variables. --config replaces the file list.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringArrayVarP(&c.configFiles, "config", "c", nil, "configuration file (repeatable, later files win)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.dbPath, "db", "", "document database (overrides store.path)")

	root.AddCommand(
		c.renderCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.listCmd(),
		c.removeCmd(),
		c.validateCmd(),
		c.diffCmd(),
		c.uploadCmd(),
		c.editCmd(),
	)
	return root
}

func defaultConfigFiles() []string {
	files := []string{".inkwell.toml", ".inkwell.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		files = append([]string{filepath.Join(dir, "inkwell", "config.toml")}, files...)
	}
	return files
}

// setup loads the configuration and builds the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	files := c.configFiles
	if len(files) == 0 {
		files = defaultConfigFiles()
	}
	switch c.logLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", c.logLevel)
	}

	c.cfg = config.New(config.WithFiles(files...))
	if err := c.cfg.Load(); err != nil {
		return err
	}
	c.log = c.cfg.Log().NewLogger(c.errOut)
	if c.logLevel != "" {
		c.log.SetLevel(logging.ParseLogLevel(c.logLevel))
	}
	c.log.Debug("configuration loaded from %v", files)
	return nil
}
