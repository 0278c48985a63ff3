package upload

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/dshills/inkwell/internal/logging"
)

// LocalUploader stores assets in a directory served at a base URL.
type LocalUploader struct {
	dir     string
	baseURL string
	log     *logging.Logger
}

// NewLocalUploader creates dir if needed.
func NewLocalUploader(dir, baseURL string, log *logging.Logger) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	return &LocalUploader{
		dir:     dir,
		baseURL: baseURL,
		log:     logging.OrNop(log).WithComponent("upload.local"),
	}, nil
}

// Upload implements Uploader.
func (u *LocalUploader) Upload(ctx context.Context, f File) (Result, error) {
	if err := Validate(f); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	name := objectName("", f)
	if err := os.WriteFile(filepath.Join(u.dir, name), f.Data, 0o644); err != nil {
		return Result{}, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	link, err := url.JoinPath(u.baseURL, name)
	if err != nil {
		return Result{}, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	u.log.Debug("stored %s as %s", f.Name, name)
	return Result{URL: link, OriginalFilename: f.Name}, nil
}
