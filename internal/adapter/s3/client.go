// Package s3 implements the blob-store collaborator against AWS S3.
// The NOAA HRRR bucket is public, so the client defaults to anonymous
// (unsigned) requests.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/skysift/hrrr-point-etl/internal/domain"
)

// Client downloads objects to local files. It implements domain.BlobStore.
type Client struct {
	client *awss3.Client
	logger *slog.Logger
}

// New creates an S3 client. With anonymous set, requests are unsigned; no
// AWS credentials are needed for public buckets.
func New(ctx context.Context, region string, anonymous bool, logger *slog.Logger) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if anonymous {
		opts = append(opts, awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Client{client: awss3.NewFromConfig(cfg), logger: logger}, nil
}

// Download streams bucket/key into dst, truncating any existing content.
// A missing key is reported as domain.ErrObjectNotFound so the caller can
// distinguish absence from transport failure.
func (c *Client) Download(ctx context.Context, bucket, key, dst string) error {
	resp, err := c.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("s3://%s/%s: %w", bucket, key, domain.ErrObjectNotFound)
		}
		return fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer resp.Body.Close()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write s3://%s/%s to %s: %w", bucket, key, dst, err)
	}

	c.logger.Debug("object downloaded", "bucket", bucket, "key", key, "bytes", n)
	return nil
}

// isNotFound reports whether an S3 error means the key does not exist.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
