package main

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/inkwell/internal/upload"
)

var errUploadsDisabled = errors.New("uploads are disabled (upload.backend is none)")

func (c *cli) uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image>...",
		Short: "Upload images with the configured backend and print their URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.cfg.Upload()
			up, err := newUploader(cmd.Context(), uc, c.log)
			if err != nil {
				return err
			}
			if up == nil {
				return errUploadsDisabled
			}
			var errs []error
			for _, path := range args {
				f, err := readImage(path)
				if err == nil {
					ctx, cancel := withTimeout(cmd.Context(), uc.Timeout.Std())
					var res upload.Result
					res, err = up.Upload(ctx, f)
					cancel()
					if err == nil {
						fmt.Fprintf(c.out, "%s\t%s\n", path, res.URL)
						continue
					}
				}
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
			}
			return errors.Join(errs...)
		},
	}
}

// readImage reads path and types it by extension, or by content when the
// extension is unknown.
func readImage(path string) (upload.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return upload.File{}, err
	}
	typ := mime.TypeByExtension(filepath.Ext(path))
	if typ == "" {
		typ = http.DetectContentType(data)
	}
	return upload.File{Name: filepath.Base(path), ContentType: typ, Data: data}, nil
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
