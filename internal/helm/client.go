package helm

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/repo"
	"k8s.io/client-go/tools/clientcmd"
)

// Client provides Helm release operations against the selected cluster.
type Client struct {
	namespace    string
	actionConfig *action.Configuration
	settings     *cli.EnvSettings
}

// NewClient creates a Helm client for the given namespace using the default
// kubeconfig loading rules. When debug is set, helm's internal logging is
// routed to the standard logger instead of being discarded.
func NewClient(namespace string, debug bool) (*Client, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	apiConfig, err := rules.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	kubeconfig, err := clientcmd.Write(*apiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize kubeconfig: %w", err)
	}

	debugLog := func(string, ...interface{}) {}
	if debug {
		debugLog = log.Printf
	}

	actionConfig := new(action.Configuration)
	restGetter := NewInMemoryRESTClientGetter(kubeconfig, namespace)
	if err := actionConfig.Init(restGetter, namespace, "secret", debugLog); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	return &Client{
		namespace:    namespace,
		actionConfig: actionConfig,
		settings:     cli.New(),
	}, nil
}

// UpdateRepoIndex downloads the repository index so chart resolution sees
// current versions, the equivalent of `helm repo update` for one repo.
func (c *Client) UpdateRepoIndex(repoName, repoURL string) error {
	entry := &repo.Entry{Name: repoName, URL: repoURL}
	chartRepo, err := repo.NewChartRepository(entry, getter.All(c.settings))
	if err != nil {
		return fmt.Errorf("failed to configure chart repository %s: %w", repoURL, err)
	}

	if _, err := chartRepo.DownloadIndexFile(); err != nil {
		return fmt.Errorf("failed to update repository index for %s: %w", repoURL, err)
	}
	return nil
}

// UpgradeOrInstall installs the chart if the release does not exist, and
// upgrades it in place otherwise. Re-running with unchanged inputs yields no
// change beyond helm's own revision bookkeeping. An empty version resolves
// to the latest version in the repository index (floating default); the
// caller can read the resolved version from the returned release.
//
// With dryRun set, everything is composed and validated but nothing is
// applied to the cluster.
func (c *Client) UpgradeOrInstall(ctx context.Context, releaseName, repoURL, chartName, version string, values Values, dryRun bool) (*release.Release, error) {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	_, err := histClient.Run(releaseName)

	if err != nil {
		return c.install(ctx, releaseName, repoURL, chartName, version, values, dryRun)
	}
	return c.upgrade(ctx, releaseName, repoURL, chartName, version, values, dryRun)
}

func (c *Client) install(ctx context.Context, releaseName, repoURL, chartName, version string, values Values, dryRun bool) (*release.Release, error) {
	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = releaseName
	installClient.Namespace = c.namespace
	installClient.Version = version
	installClient.Wait = true
	installClient.Timeout = 10 * time.Minute
	if dryRun {
		installClient.DryRun = true
		// Render without contacting the cluster so a dry run works even
		// before the namespace or CRDs exist.
		installClient.ClientOnly = true
	}

	loadedChart, err := c.loadChart(repoURL, chartName, version)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	rel, err := installClient.RunWithContext(ctx, loadedChart, values)
	if err != nil {
		return nil, fmt.Errorf("install failed: %w", err)
	}
	return rel, nil
}

func (c *Client) upgrade(ctx context.Context, releaseName, repoURL, chartName, version string, values Values, dryRun bool) (*release.Release, error) {
	upgradeClient := action.NewUpgrade(c.actionConfig)
	upgradeClient.Namespace = c.namespace
	upgradeClient.Version = version
	upgradeClient.Wait = true
	upgradeClient.Timeout = 10 * time.Minute
	upgradeClient.ReuseValues = false
	upgradeClient.DryRun = dryRun

	loadedChart, err := c.loadChart(repoURL, chartName, version)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	rel, err := upgradeClient.RunWithContext(ctx, releaseName, loadedChart, values)
	if err != nil {
		return nil, fmt.Errorf("upgrade failed: %w", err)
	}
	return rel, nil
}

func (c *Client) loadChart(repoURL, chartName, version string) (*chart.Chart, error) {
	chartPath, err := repo.FindChartInRepoURL(
		repoURL,
		chartName,
		version,
		"", "", "",
		getter.All(c.settings),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", chartName, repoURL, err)
	}

	// Clean up the downloaded chart after loading
	defer func() {
		_ = os.Remove(chartPath)
	}()

	return loader.Load(chartPath)
}
