// Package media is the gateway to the external blob store holding avatars
// and cover images.
//
// The store is opaque to the rest of the system: an upload takes a local
// temporary file and yields a stable public ID (used later for deletion) and
// a retrievable URL (what gets persisted on the user record). Nothing else
// about the remote service leaks out.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/xid"
)

// Asset is the transient result of an upload.
type Asset struct {
	PublicID string // opaque identifier the store accepts for deletion
	URL      string // retrievable URL, persisted on the owning record
}

// Store is the gateway contract the workflows depend on.
//
// Upload consumes the local file at localPath: the file is removed whether
// the upload succeeds or fails, so the server's temp directory never
// accumulates orphans. An empty localPath short-circuits to (nil, nil)
// without touching the remote store — callers use that for optional files.
//
// Delete is best-effort: failures are logged by the implementation and
// returned, but callers are expected to swallow them. A deletion failure
// must never mask the error that triggered the cleanup.
type Store interface {
	Upload(ctx context.Context, localPath string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}

// S3Config carries the settings for the S3-compatible backend.
type S3Config struct {
	Region    string
	Bucket    string
	Endpoint  string // custom endpoint for MinIO-style deployments; empty for AWS
	AccessKey string
	SecretKey string
	// PublicBaseURL is the prefix object URLs are built from. When empty,
	// the standard virtual-hosted S3 URL is used.
	PublicBaseURL string
}

// s3API is the subset of the S3 client the store uses; narrowed so tests can
// substitute a fake without a network.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements Store on top of an S3-compatible bucket.
type S3Store struct {
	client s3API
	cfg    S3Config
	logger *slog.Logger
}

// NewS3Store builds the S3 client from static credentials and an optional
// custom endpoint, the way a MinIO-backed deployment is configured.
func NewS3Store(ctx context.Context, cfg S3Config, logger *slog.Logger) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("media: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, cfg: cfg, logger: logger}, nil
}

// newS3StoreWithClient injects a fake client. Tests only.
func newS3StoreWithClient(client s3API, cfg S3Config, logger *slog.Logger) *S3Store {
	return &S3Store{client: client, cfg: cfg, logger: logger}
}

// Upload sends the file at localPath to the bucket under a fresh object key
// and returns its public ID and URL.
//
// The local file is always removed before returning — success or failure —
// so callers never need to clean up after the gateway.
func (s *S3Store) Upload(ctx context.Context, localPath string) (*Asset, error) {
	if localPath == "" {
		return nil, nil
	}
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("media: removing temp file", slog.String("path", localPath), slog.String("error", err.Error()))
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("media: opening %s: %w", localPath, err)
	}
	defer f.Close()

	key := objectKey(localPath)
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("media: uploading %s: %w", key, err)
	}

	asset := &Asset{PublicID: key, URL: s.objectURL(key)}
	s.logger.Info("media uploaded", slog.String("publicID", asset.PublicID), slog.String("url", asset.URL))
	return asset, nil
}

// Delete removes the object identified by publicID. Failures are logged;
// callers treat deletion as best-effort.
func (s *S3Store) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		s.logger.Error("media: deleting object", slog.String("publicID", publicID), slog.String("error", err.Error()))
		return fmt.Errorf("media: deleting %s: %w", publicID, err)
	}
	s.logger.Info("media deleted", slog.String("publicID", publicID))
	return nil
}

// objectKey builds a unique storage key, keeping the original extension so
// Content-Type survives round trips.
func objectKey(localPath string) string {
	return "media/" + xid.New().String() + filepath.Ext(localPath)
}

func (s *S3Store) objectURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", s.cfg.PublicBaseURL, key)
	}
	if s.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.cfg.Endpoint, s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}
