// Package blob downloads the starter bot template from object storage. The
// client is pinned to one named credential profile: a session resolved from
// any other profile is rejected before a download is attempted.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// api is the subset of the S3 client the template fetch uses.
type api interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Client wraps the S3 client for template downloads.
type Client struct {
	s3      api
	profile string
}

// NewClient creates a client scoped to the required credential profile. If
// the environment's active profile differs, the shared config is reloaded
// pinned to the required profile: one switch, no fallback. Credential
// resolution failure under that profile is fatal here, before any storage
// call is made.
func NewClient(ctx context.Context, requiredProfile string) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if active := os.Getenv("AWS_PROFILE"); active != requiredProfile {
		opts = append(opts, awsconfig.WithSharedConfigProfile(requiredProfile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials for profile %s: %w", requiredProfile, err)
	}

	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("failed to resolve credentials for profile %s: %w", requiredProfile, err)
	}

	return &Client{
		s3:      s3.NewFromConfig(cfg),
		profile: requiredProfile,
	}, nil
}

// newClientWithAPI is a test seam.
func newClientWithAPI(s3Client api, profile string) *Client {
	return &Client{s3: s3Client, profile: profile}
}

// CheckBucketAccess verifies the bucket exists and the session can reach it.
// A missing bucket or an access denial both fail the fetch before any
// download is attempted.
func (c *Client) CheckBucketAccess(ctx context.Context, bucketName string) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isNotFoundError(err) {
			return fmt.Errorf("bucket %s not found under profile %s", bucketName, c.profile)
		}
		return fmt.Errorf("failed to access bucket %s: %w", bucketName, err)
	}
	return nil
}

// Download fetches one object and writes it to destPath, overwriting any
// existing file. The destination directory is created if absent.
func (c *Client) Download(ctx context.Context, bucketName, key, destPath string) error {
	result, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to download %s from bucket %s: %w", key, bucketName, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}

	return nil
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	// Fall back to API error code checking for S3-compatible services
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "404"
	}

	return false
}
