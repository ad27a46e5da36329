// Package config defines the deployment target identity, run options, and
// fixed file paths used by the ffctl CLI.
package config

import (
	"os"
	"path/filepath"
)

// Deployment defaults. The (namespace, release, chart) triple is what keys
// helm's upgrade-or-install semantics, so it must stay stable across runs.
const (
	DefaultNamespace   = "firefoundry-system"
	DefaultReleaseName = "ff-control-plane"

	ChartRepository = "https://firebrandanalytics.github.io/helm-charts"
	ChartName       = "ff-control-plane"

	// FieldManager identifies ffctl as the Server-Side Apply actor.
	FieldManager = "ffctl"
)

// Values file locations, relative to the working directory. The base file is
// required; the secrets overlay is optional and merged on top of the base.
const (
	BaseValuesFile    = "values/local.yaml"
	SecretsValuesFile = "values/secrets.local.yaml"
)

// Template fetch constants. TemplateProfile names the credential scope the
// fetch must run under; a session resolved from any other profile is not
// acceptable.
const (
	TemplateProfile = "firefoundry-dev"
	TemplateBucket  = "firefoundry-templates"
	TemplateKey     = "bot-templates/starter-bot.json"
)

// DeployOptions holds the flat flag set for the deploy command. Flags are
// mutually independent; zero values are the documented defaults.
type DeployOptions struct {
	// Version pins the chart version. Empty means the latest version in the
	// repository index is resolved at deploy time (floating default).
	Version string

	// Namespace is the target namespace for the release.
	Namespace string

	// ReleaseName is the helm release name.
	ReleaseName string

	// SkipCRDs skips installation of the GitOps toolkit CRDs.
	SkipCRDs bool

	// DryRun composes and validates everything but mutates nothing.
	DryRun bool

	// Debug enables verbose helm debug output.
	Debug bool
}

// NewDeployOptions returns options populated with defaults.
func NewDeployOptions() DeployOptions {
	return DeployOptions{
		Namespace:   DefaultNamespace,
		ReleaseName: DefaultReleaseName,
	}
}

// TemplateDestination returns the fixed local path the starter template is
// downloaded to, under the user's home directory.
func TemplateDestination() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".firefoundry", "templates", "starter-bot.json"), nil
}
