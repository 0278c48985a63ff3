package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/inkwell/internal/markup"
	"github.com/dshills/inkwell/internal/model"
	"github.com/dshills/inkwell/internal/store"
)

// Document formats accepted by --from and --to.
const (
	formatAuto     = "auto"
	formatJSON     = "json"
	formatHTML     = "html"
	formatMarkdown = "md"
	formatText     = "text"
)

var errUnknownFormat = errors.New("unknown format")

// readInput reads path, or the command's input when path is "" or "-".
func (c *cli) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(c.in)
	}
	return os.ReadFile(path)
}

// formatOf guesses the format of a document from its name and content.
func formatOf(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".html", ".htm":
		return formatHTML
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return formatJSON
	}
	return formatHTML
}

// parseDocument decodes a document. JSON input may be a bare document or
// a persisted state with a "doc" member.
func parseDocument(schema *model.Schema, format string, data []byte) (*model.Node, error) {
	switch format {
	case formatJSON:
		if doc := gjson.GetBytes(data, "doc"); doc.IsObject() {
			data = []byte(doc.Raw)
		}
		return schema.ParseJSON(data)
	case formatHTML:
		return markup.ParseHTML(schema, bytes.NewReader(data))
	}
	return nil, fmt.Errorf("%w %q for input", errUnknownFormat, format)
}

func (c *cli) loadDocument(path, format string) (*model.Node, error) {
	data, err := c.readInput(path)
	if err != nil {
		return nil, err
	}
	if format == "" || format == formatAuto {
		format = formatOf(path, data)
	}
	doc, err := parseDocument(model.DefaultSchema(), format, data)
	if err != nil {
		name := path
		if name == "" || name == "-" {
			name = "<stdin>"
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return doc, nil
}

func writeDocument(w io.Writer, doc *model.Node, format string) error {
	switch format {
	case formatHTML:
		if err := markup.WriteHTML(w, doc); err != nil {
			return err
		}
	case formatMarkdown:
		return markup.WriteMarkdown(w, doc)
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case formatText:
		if _, err := io.WriteString(w, doc.TextBetween(0, doc.Content().Size(), "\n", "")); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w %q for output", errUnknownFormat, format)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// renderString renders doc for comparison.
func renderString(doc *model.Node, format string) (string, error) {
	var b strings.Builder
	if err := writeDocument(&b, doc, format); err != nil {
		return "", err
	}
	return b.String(), nil
}

// openStore opens the configured document store behind a read cache. The
// returned function closes it.
func (c *cli) openStore(ctx context.Context) (store.DocumentStore, func(), error) {
	sc := c.cfg.Store()
	path := sc.Path
	if c.dbPath != "" {
		path = c.dbPath
	}
	if path == "" {
		c.log.Warn("no store.path configured; documents are kept in memory")
		return store.NewMemoryStore(), func() {}, nil
	}
	db, err := store.OpenSQLite(ctx, path, c.log)
	if err != nil {
		return nil, nil, err
	}
	cached := store.NewCachedStore(db, sc.CacheTTL.Std(), 0, c.log)
	closeFn := func() {
		cached.Close()
		if err := db.Close(); err != nil {
			c.log.WithError(err).Warn("closing %s", path)
		}
	}
	return cached, closeFn, nil
}
