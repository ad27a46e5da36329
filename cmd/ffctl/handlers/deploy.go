// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"helm.sh/helm/v3/pkg/release"

	"github.com/firebrandanalytics/firefoundry-local/internal/config"
	"github.com/firebrandanalytics/firefoundry-local/internal/gitops"
	"github.com/firebrandanalytics/firefoundry-local/internal/helm"
	"github.com/firebrandanalytics/firefoundry-local/internal/k8s"
	"github.com/firebrandanalytics/firefoundry-local/internal/preflight"
)

// chartRepoName is the local alias for the FireFoundry chart repository.
const chartRepoName = "firefoundry"

// crdInstaller installs the GitOps toolkit CRD set.
type crdInstaller interface {
	URLs() []string
	Install(ctx context.Context) error
}

// releaseDeployer is the helm surface the deploy handler needs.
type releaseDeployer interface {
	UpdateRepoIndex(repoName, repoURL string) error
	UpgradeOrInstall(ctx context.Context, releaseName, repoURL, chartName, version string, values helm.Values, dryRun bool) (*release.Release, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	newK8sClient = k8s.New

	newHelmClient = func(namespace string, debug bool) (releaseDeployer, error) {
		return helm.NewClient(namespace, debug)
	}

	newCRDInstaller = func(client k8s.Client) crdInstaller {
		return gitops.NewInstaller(client)
	}

	runPreflight = preflight.Run

	loadValuesFiles = helm.LoadFiles
)

// Deploy runs the control-plane deployment procedure:
//
//  1. Preflight: tools, selected context, live cluster probe, values files
//  2. GitOps toolkit CRDs (unless --skip-crds)
//  3. Target namespace existence
//  4. Helm upgrade-or-install with the layered values chain
//
// Every step is idempotent, so re-running with identical options against a
// cluster already in the target state changes nothing. With DryRun set,
// steps 2-4 validate and report but mutate nothing.
func Deploy(ctx context.Context, opts config.DeployOptions) error {
	// The client is created inside the preflight sequence so missing tools
	// and a missing context are reported before kubeconfig parsing.
	var k8sClient k8s.Client
	newProber := func() (preflight.Prober, error) {
		client, err := newK8sClient()
		if err != nil {
			return nil, err
		}
		k8sClient = client
		return client, nil
	}

	log.Printf("Running preflight checks")
	result, err := runPreflight(ctx, newProber)
	if err != nil {
		return err
	}
	log.Printf("Cluster reachable: context %s, server %s", result.Context, result.ServerVersion)

	if err := installCRDs(ctx, k8sClient, opts); err != nil {
		return err
	}

	if err := ensureNamespace(ctx, k8sClient, opts); err != nil {
		return err
	}

	log.Printf("Composing values from %v", result.ValuesFiles)
	values, err := loadValuesFiles(result.ValuesFiles)
	if err != nil {
		return err
	}

	helmClient, err := newHelmClient(opts.Namespace, opts.Debug)
	if err != nil {
		return fmt.Errorf("failed to create helm client: %w", err)
	}

	log.Printf("Updating chart repository index for %s", config.ChartRepository)
	if err := helmClient.UpdateRepoIndex(chartRepoName, config.ChartRepository); err != nil {
		return err
	}

	if opts.Version != "" {
		log.Printf("Deploying release %s (chart %s, version %s) to namespace %s", opts.ReleaseName, config.ChartName, opts.Version, opts.Namespace)
	} else {
		log.Printf("Deploying release %s (chart %s, latest version) to namespace %s", opts.ReleaseName, config.ChartName, opts.Namespace)
	}

	rel, err := helmClient.UpgradeOrInstall(ctx, opts.ReleaseName, config.ChartRepository, config.ChartName, opts.Version, values, opts.DryRun)
	if err != nil {
		return err
	}

	if opts.DryRun {
		composed, err := values.ToYAML()
		if err != nil {
			return err
		}
		log.Printf("Dry run: composed values:")
		fmt.Println(string(composed))
		fmt.Println(rel.Manifest)
		log.Printf("Dry run complete: nothing was applied")
		return nil
	}

	printDeploySummary(rel, opts, result.SecretsPresent)
	return nil
}

// installCRDs applies the GitOps toolkit CRD set unless skipped. In dry-run
// mode it only reports what it would apply.
func installCRDs(ctx context.Context, client k8s.Client, opts config.DeployOptions) error {
	if opts.SkipCRDs {
		log.Printf("Skipping GitOps toolkit CRD installation (--skip-crds)")
		return nil
	}

	installer := newCRDInstaller(client)
	if opts.DryRun {
		log.Printf("Dry run: would apply %d CRD manifests:", len(installer.URLs()))
		for _, url := range installer.URLs() {
			fmt.Println("  " + url)
		}
		return nil
	}

	log.Printf("Installing GitOps toolkit CRDs (%d manifests)", len(installer.URLs()))
	return installer.Install(ctx)
}

// ensureNamespace guarantees the target namespace exists. In dry-run mode it
// only reports whether a create would happen.
func ensureNamespace(ctx context.Context, client k8s.Client, opts config.DeployOptions) error {
	if opts.DryRun {
		log.Printf("Dry run: would ensure namespace %s exists", opts.Namespace)
		return nil
	}

	created, err := client.EnsureNamespace(ctx, opts.Namespace)
	if err != nil {
		return err
	}
	if created {
		log.Printf("Created namespace %s", opts.Namespace)
	} else {
		log.Printf("Namespace %s already exists", opts.Namespace)
	}
	return nil
}

var (
	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#22c55e"))

	summaryDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b7280"))
)

// isInteractiveTTY reports whether stdout is an interactive terminal.
func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// printDeploySummary prints the final deployment report. Styled for
// interactive terminals, plain otherwise.
func printDeploySummary(rel *release.Release, opts config.DeployOptions, secretsPresent bool) {
	version := ""
	if rel.Chart != nil && rel.Chart.Metadata != nil {
		version = rel.Chart.Metadata.Version
	}

	if isInteractiveTTY() {
		fmt.Println(summaryTitleStyle.Render("Control plane deployed"))
		fmt.Printf("  Release:   %s (revision %d)\n", rel.Name, rel.Version)
		fmt.Printf("  Chart:     %s %s\n", config.ChartName, version)
		fmt.Printf("  Namespace: %s\n", opts.Namespace)
		if !secretsPresent {
			fmt.Println(summaryDimStyle.Render("  Secrets overlay absent: some features degraded"))
		}
		return
	}

	log.Printf("Control plane deployed: release %s revision %d, chart %s %s, namespace %s", rel.Name, rel.Version, config.ChartName, version, opts.Namespace)
	if !secretsPresent {
		log.Printf("Secrets overlay absent: some features degraded")
	}
}
