// Package preflight validates the environment before any cluster-mutating
// step runs: required client tools, a selected kubernetes context, live
// cluster connectivity, and the values files on disk.
package preflight

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"k8s.io/client-go/tools/clientcmd"

	"github.com/firebrandanalytics/firefoundry-local/internal/config"
)

// Tool represents a client tool that must be present on PATH.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// DefaultTools returns the tools required for a control-plane deployment.
// kubectl is required so operators can inspect and remediate the cluster by
// hand; the deployment itself talks to the API server directly.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "kubectl",
			Description: "Required for inspecting and remediating cluster state",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
		},
	}
}

// Prober performs the live cluster connectivity check.
type Prober interface {
	// ServerVersion returns the API server version string, failing if the
	// cluster is unreachable.
	ServerVersion(ctx context.Context) (string, error)
}

// Result reports what preflight observed about the environment.
type Result struct {
	// Context is the selected kubeconfig context name.
	Context string

	// ServerVersion is the probed API server version.
	ServerVersion string

	// ValuesFiles is the ordered overlay chain that exists on disk.
	ValuesFiles []string

	// SecretsPresent reports whether the optional secrets overlay exists.
	SecretsPresent bool
}

// Injection points for tests.
var (
	lookPath       = exec.LookPath
	loadKubeconfig = func() (string, error) {
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		cfg, err := rules.Load()
		if err != nil {
			return "", err
		}
		return cfg.CurrentContext, nil
	}
	statFile = os.Stat
	warnf    = func(format string, v ...any) {
		fmt.Fprintf(os.Stderr, "WARNING: "+format+"\n", v...)
	}
)

// CheckTools verifies the given tools are resolvable on PATH. The error
// lists every missing tool together with its installation URL.
func CheckTools(tools []Tool) error {
	var missing []string
	for _, tool := range tools {
		if _, err := lookPath(tool.Name); err != nil {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	return nil
}

// CheckContext verifies a kubeconfig exists and has a current context
// selected. It does not probe connectivity; see Run.
func CheckContext() (string, error) {
	current, err := loadKubeconfig()
	if err != nil {
		return "", fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	if current == "" {
		return "", fmt.Errorf("no kubernetes context selected: set one with 'kubectl config use-context'")
	}
	return current, nil
}

// CheckValuesFiles verifies the base values file exists and reports whether
// the secrets overlay is present. A missing secrets overlay produces a
// single warning and is not an error: the base deployment is valid without
// it, which is what allows bootstrapping before secrets are provisioned.
func CheckValuesFiles() (files []string, secretsPresent bool, err error) {
	if _, err := statFile(config.BaseValuesFile); err != nil {
		return nil, false, fmt.Errorf("base values file not found at %s: %w", config.BaseValuesFile, err)
	}
	files = []string{config.BaseValuesFile}

	if _, err := statFile(config.SecretsValuesFile); err != nil {
		warnf("secrets overlay %s not found; deploying without secrets (some features will be degraded)", config.SecretsValuesFile)
		return files, false, nil
	}
	return append(files, config.SecretsValuesFile), true, nil
}

// Run executes all preflight checks in order, each fatal on failure except
// the secrets overlay check. The prober is constructed lazily so tool and
// context problems are reported before any client construction, and the
// probe itself is a live connectivity check, not just a config-presence
// test.
func Run(ctx context.Context, newProber func() (Prober, error)) (*Result, error) {
	if err := CheckTools(DefaultTools()); err != nil {
		return nil, err
	}

	current, err := CheckContext()
	if err != nil {
		return nil, err
	}

	probe, err := newProber()
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster client: %w", err)
	}

	version, err := probe.ServerVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("cluster unreachable (context %q): %w", current, err)
	}

	files, secretsPresent, err := CheckValuesFiles()
	if err != nil {
		return nil, err
	}

	return &Result{
		Context:        current,
		ServerVersion:  version,
		ValuesFiles:    files,
		SecretsPresent: secretsPresent,
	}, nil
}
