package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dshills/inkwell/internal/logging"
)

// DefaultTries is how many times an object write is attempted.
const DefaultTries = 1

// MinioConfig configures a MinioUploader.
type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Bucket          string
	// Prefix is prepended to object names.
	Prefix string
	// PublicURL is the base of the returned URLs. It defaults to the
	// endpoint's URL followed by the bucket.
	PublicURL string
}

// objectStore is the part of *minio.Client the uploader uses.
type objectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioUploader stores assets in an S3-compatible bucket.
type MinioUploader struct {
	store   objectStore
	bucket  string
	prefix  string
	baseURL string
	tries   int
	log     *logging.Logger
}

// MinioOption configures a MinioUploader.
type MinioOption func(*MinioUploader)

// WithTries sets how many times a write is attempted before failing.
func WithTries(n int) MinioOption {
	return func(u *MinioUploader) {
		if n > 0 {
			u.tries = n
		}
	}
}

// WithMinioLogger sets the logger.
func WithMinioLogger(l *logging.Logger) MinioOption {
	return func(u *MinioUploader) {
		u.log = l
	}
}

// NewMinioUploader connects to cfg.Endpoint and makes sure the bucket
// exists.
func NewMinioUploader(ctx context.Context, cfg MinioConfig, opts ...MinioOption) (*MinioUploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = client.EndpointURL().JoinPath(cfg.Bucket).String()
	}
	return newMinioUploader(ctx, client, cfg, opts...)
}

func newMinioUploader(ctx context.Context, store objectStore, cfg MinioConfig, opts ...MinioOption) (*MinioUploader, error) {
	u := &MinioUploader{
		store:   store,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: cfg.PublicURL,
		tries:   DefaultTries,
	}
	for _, opt := range opts {
		opt(u)
	}
	u.log = logging.OrNop(u.log).WithComponent("upload.minio")

	exists, err := store.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBucket, cfg.Bucket, err)
	}
	if !exists {
		if err := store.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", ErrBucket, cfg.Bucket, err)
		}
		u.log.Info("created bucket %s", cfg.Bucket)
	}
	return u, nil
}

// Upload implements Uploader.
func (u *MinioUploader) Upload(ctx context.Context, f File) (Result, error) {
	if err := Validate(f); err != nil {
		return Result{}, err
	}
	name := objectName(u.prefix, f)
	opts := minio.PutObjectOptions{
		ContentType:  f.ContentType,
		UserMetadata: map[string]string{"original-filename": f.Name},
	}
	var err error
	for try := range u.tries {
		_, err = u.store.PutObject(ctx, u.bucket, name, bytes.NewReader(f.Data), int64(len(f.Data)), opts)
		if err == nil {
			break
		}
		u.log.WithError(err).Warn("put %s (attempt %d of %d)", name, try+1, u.tries)
		if ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		return Result{}, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	link, err := url.JoinPath(u.baseURL, name)
	if err != nil {
		return Result{}, fmt.Errorf("upload %s: %w", f.Name, err)
	}
	u.log.Debug("stored %s as %s", f.Name, name)
	return Result{URL: link, OriginalFilename: f.Name}, nil
}
