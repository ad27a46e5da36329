// Package main is the entry point for the ffctl CLI.
//
// ffctl deploys the FireFoundry local control plane (gateway, GitOps
// controllers, management API) to an already-provisioned Kubernetes cluster
// and fetches the starter bot template from object storage. It does not
// create or manage clusters itself.
//
// Commands: deploy, fetch-template, version, completion.
//
// For detailed usage information, run:
//
//	ffctl --help
package main

import (
	"fmt"
	"os"

	"github.com/firebrandanalytics/firefoundry-local/cmd/ffctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
