// Package gitops installs the GitOps toolkit custom resource definitions the
// control-plane chart depends on. The manifest set is fixed: five
// source-controller CRDs and the helm-controller HelmRelease CRD.
package gitops

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/firebrandanalytics/firefoundry-local/internal/config"
	"github.com/firebrandanalytics/firefoundry-local/internal/k8s"
)

// sourceControllerVersion and helmControllerVersion pin the CRD manifest
// revisions fetched from the Flux project. Bump both together when the
// control-plane chart moves to a newer toolkit API.
const (
	sourceControllerVersion = "v1.3.0"
	helmControllerVersion   = "v1.1.0"
)

// CRDManifestURLs is the fixed list of CRD manifests the control plane
// requires, applied in order. The release deployed afterwards assumes every
// one of these is registered, so a single failed apply fails the run.
var CRDManifestURLs = []string{
	"https://raw.githubusercontent.com/fluxcd/source-controller/" + sourceControllerVersion + "/config/crd/bases/source.toolkit.fluxcd.io_gitrepositories.yaml",
	"https://raw.githubusercontent.com/fluxcd/source-controller/" + sourceControllerVersion + "/config/crd/bases/source.toolkit.fluxcd.io_helmrepositories.yaml",
	"https://raw.githubusercontent.com/fluxcd/source-controller/" + sourceControllerVersion + "/config/crd/bases/source.toolkit.fluxcd.io_helmcharts.yaml",
	"https://raw.githubusercontent.com/fluxcd/source-controller/" + sourceControllerVersion + "/config/crd/bases/source.toolkit.fluxcd.io_buckets.yaml",
	"https://raw.githubusercontent.com/fluxcd/source-controller/" + sourceControllerVersion + "/config/crd/bases/source.toolkit.fluxcd.io_ocirepositories.yaml",
	"https://raw.githubusercontent.com/fluxcd/helm-controller/" + helmControllerVersion + "/config/crd/bases/helm.toolkit.fluxcd.io_helmreleases.yaml",
}

// Installer fetches the CRD manifests over HTTPS and applies them with
// Server-Side Apply.
type Installer struct {
	client     k8s.Client
	httpClient *http.Client
	urls       []string
}

// NewInstaller creates an installer for the default CRD manifest set.
func NewInstaller(client k8s.Client) *Installer {
	return &Installer{
		client:     client,
		httpClient: http.DefaultClient,
		urls:       CRDManifestURLs,
	}
}

// newInstallerWithURLs is a test seam for pointing the installer at a local
// manifest server.
func newInstallerWithURLs(client k8s.Client, httpClient *http.Client, urls []string) *Installer {
	return &Installer{
		client:     client,
		httpClient: httpClient,
		urls:       urls,
	}
}

// URLs returns the manifest URLs the installer would apply.
func (i *Installer) URLs() []string {
	return i.urls
}

// Install fetches and applies each CRD manifest sequentially. Apply uses
// declarative semantics, so reapplying an unchanged manifest is a no-op.
// Any fetch or apply failure aborts the remainder of the set.
func (i *Installer) Install(ctx context.Context) error {
	for _, url := range i.urls {
		manifest, err := i.fetch(ctx, url)
		if err != nil {
			return fmt.Errorf("failed to fetch CRD manifest %s: %w", url, err)
		}

		if err := i.client.ApplyManifests(ctx, manifest, config.FieldManager); err != nil {
			return fmt.Errorf("failed to apply CRD manifest %s: %w", url, err)
		}
	}
	return nil
}

func (i *Installer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}
