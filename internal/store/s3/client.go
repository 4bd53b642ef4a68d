// Package s3 uploads payloads to AWS S3 or an S3-compatible endpoint.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/maraichr/imagesync/internal/config"
	"github.com/maraichr/imagesync/internal/store"
	"github.com/maraichr/imagesync/internal/transcode"
	"github.com/maraichr/imagesync/pkg/outcome"
)

// Client is a store.Sink backed by the AWS SDK upload manager.
type Client struct {
	uploader *manager.Uploader
	creds    aws.CredentialsProvider
	bucket   string
}

// NewClient builds a client from static keys when both are configured,
// otherwise from the default credential chain. Works with both AWS S3 and
// MinIO/LocalStack via Endpoint.
func NewClient(ctx context.Context, cfg config.S3Config) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// One attempt per record; a failed upload is logged, never retried.
		o.RetryMaxAttempts = 1
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{
		uploader: manager.NewUploader(client),
		creds:    awsCfg.Credentials,
		bucket:   cfg.Bucket,
	}, nil
}

// Put uploads the payload with its content type.
func (c *Client) Put(ctx context.Context, key string, p *transcode.Payload) error {
	if p == nil || p.Len() == 0 {
		return outcome.PayloadNotFound(key)
	}
	if err := c.checkCredentials(ctx); err != nil {
		return outcome.CredentialsUnavailable(err)
	}

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(p.Data),
		ContentLength: aws.Int64(int64(p.Len())),
		ContentType:   aws.String(p.Format.ContentType()),
	})
	if err != nil {
		if isCredentialError(err) {
			return outcome.CredentialsUnavailable(err)
		}
		return outcome.StoreError(key, err)
	}
	return nil
}

func (c *Client) checkCredentials(ctx context.Context) error {
	if c.creds == nil {
		return errors.New("no credential provider configured")
	}
	v, err := c.creds.Retrieve(ctx)
	if err != nil {
		return err
	}
	if !v.HasKeys() {
		return errors.New("credential provider returned no keys")
	}
	return nil
}

func isCredentialError(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return store.IsCredentialErrorCode(apiErr.ErrorCode())
	}
	return false
}

func (c *Client) Bucket() string {
	return c.bucket
}
