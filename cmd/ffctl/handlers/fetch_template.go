package handlers

import (
	"context"
	"fmt"
	"log"

	"github.com/firebrandanalytics/firefoundry-local/internal/config"
	"github.com/firebrandanalytics/firefoundry-local/internal/platform/blob"
)

// templateFetcher is the blob storage surface the fetch handler needs.
type templateFetcher interface {
	CheckBucketAccess(ctx context.Context, bucketName string) error
	Download(ctx context.Context, bucketName, key, destPath string) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	newBlobClient = func(ctx context.Context, profile string) (templateFetcher, error) {
		return blob.NewClient(ctx, profile)
	}

	templateDestination = config.TemplateDestination
)

// FetchTemplate downloads the starter bot template to its fixed location
// under the user's home directory. The session must resolve under the
// firefoundry-dev credential profile; a profile that cannot be assumed
// fails the run before any download is attempted.
func FetchTemplate(ctx context.Context) error {
	log.Printf("Resolving credentials for profile %s", config.TemplateProfile)
	client, err := newBlobClient(ctx, config.TemplateProfile)
	if err != nil {
		return err
	}

	log.Printf("Checking access to bucket %s", config.TemplateBucket)
	if err := client.CheckBucketAccess(ctx, config.TemplateBucket); err != nil {
		return err
	}

	dest, err := templateDestination()
	if err != nil {
		return fmt.Errorf("failed to resolve destination path: %w", err)
	}

	log.Printf("Downloading %s to %s", config.TemplateKey, dest)
	if err := client.Download(ctx, config.TemplateBucket, config.TemplateKey, dest); err != nil {
		return err
	}

	log.Printf("Template downloaded to %s", dest)
	return nil
}
