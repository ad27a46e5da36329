package commands

import (
	"github.com/spf13/cobra"

	"github.com/firebrandanalytics/firefoundry-local/cmd/ffctl/handlers"
	"github.com/firebrandanalytics/firefoundry-local/internal/config"
)

// Deploy returns the command for deploying the control plane.
//
// The deployment is idempotent: a first run installs the release, every
// subsequent run with the same namespace and release name upgrades it in
// place. Values are layered from values/local.yaml, with
// values/secrets.local.yaml merged on top when present.
//
// Optional flags:
//
//	--version, -v:   Pin the chart version (default: latest in the repo index)
//	--namespace, -n: Target namespace (default: firefoundry-system)
//	--release, -r:   Release name (default: ff-control-plane)
//	--skip-crds:     Skip GitOps toolkit CRD installation
//	--dry-run:       Validate and render without touching the cluster
//	--debug:         Verbose helm debug output
func Deploy() *cobra.Command {
	opts := config.NewDeployOptions()

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy or upgrade the control plane release",
		Long: `Deploy the FireFoundry control plane to the currently selected cluster.

This installs the GitOps toolkit CRDs, ensures the target namespace exists,
and runs a helm upgrade-or-install of the control-plane chart with the
layered values files.

Requires a reachable cluster context and values/local.yaml in the working
directory. values/secrets.local.yaml is merged on top when present; without
it the deployment proceeds with degraded features.

Examples:
  # Deploy with defaults
  ffctl deploy

  # Pin a chart version into a custom namespace
  ffctl deploy -v 0.4.2 -n ff-staging

  # See what would change without applying anything
  ffctl deploy --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Version, "version", "v", "", "Chart version to pin (default: latest available)")
	cmd.Flags().StringVarP(&opts.Namespace, "namespace", "n", config.DefaultNamespace, "Target namespace")
	cmd.Flags().StringVarP(&opts.ReleaseName, "release", "r", config.DefaultReleaseName, "Release name")
	cmd.Flags().BoolVar(&opts.SkipCRDs, "skip-crds", false, "Skip GitOps toolkit CRD installation")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate and render without applying")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable verbose helm debug output")

	return cmd
}
