package root

import (
	"github.com/spf13/cobra"
)

// RootCmd is the top-level postboard command.
var RootCmd = &cobra.Command{
	Use:           "postboard",
	Short:         "Postboard CLI",
	Long:          "Command line interface for the postboard API: sign up, log in and manage your posts.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// GetRoot returns RootCmd.
func GetRoot() *cobra.Command {
	return RootCmd
}
