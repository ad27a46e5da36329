package commands

import (
	"github.com/spf13/cobra"

	"github.com/firebrandanalytics/firefoundry-local/cmd/ffctl/handlers"
)

// FetchTemplate returns the command for downloading the starter bot template.
//
// The command takes no flags: the bucket, object key, credential profile,
// and destination path are all fixed. It requires credentials that resolve
// under the firefoundry-dev profile.
func FetchTemplate() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-template",
		Short: "Download the starter bot template",
		Long: `Download the starter bot template JSON from FireFoundry object storage
to ~/.firefoundry/templates/, overwriting any previous copy.

The download runs under the firefoundry-dev credential profile. If the
active profile differs, it is switched for the duration of the command; if
credentials for the profile cannot be resolved, the command fails without
attempting a download.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.FetchTemplate(cmd.Context())
		},
	}
}
