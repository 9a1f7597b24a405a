package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hoistdev/hoist/api"
)

// Version is the host build version, overridable at link time.
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print host and plugin API versions",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("hoist %s (plugin api %s)\n", Version, api.Version)
		},
	}
}
