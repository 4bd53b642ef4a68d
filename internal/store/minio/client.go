package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/maraichr/imagesync/internal/config"
	"github.com/maraichr/imagesync/internal/store"
	"github.com/maraichr/imagesync/internal/transcode"
	"github.com/maraichr/imagesync/pkg/outcome"
)

// Client is a store.Sink writing to a MinIO bucket. Uploads are attempted
// once.
type Client struct {
	mc     *minio.Client
	creds  *credentials.Credentials
	bucket string
}

func NewClient(cfg config.MinIOConfig) (*Client, error) {
	creds := credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, "")
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:      creds,
		Secure:     cfg.UseSSL,
		Region:     cfg.Region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &Client{mc: mc, creds: creds, bucket: cfg.Bucket}, nil
}

func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Put uploads the payload with its content type.
func (c *Client) Put(ctx context.Context, key string, p *transcode.Payload) error {
	if p == nil || p.Len() == 0 {
		return outcome.PayloadNotFound(key)
	}
	if v, err := c.creds.Get(); err != nil || v.AccessKeyID == "" {
		if err == nil {
			err = errors.New("no access key configured")
		}
		return outcome.CredentialsUnavailable(err)
	}

	_, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(p.Data), int64(p.Len()), minio.PutObjectOptions{
		ContentType: p.Format.ContentType(),
	})
	if err != nil {
		if store.IsCredentialErrorCode(minio.ToErrorResponse(err).Code) {
			return outcome.CredentialsUnavailable(err)
		}
		return outcome.StoreError(key, err)
	}
	return nil
}

func (c *Client) Bucket() string {
	return c.bucket
}
