package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wwolkers/librenms-inventory/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		switch {
		case cmd.Flag("all").Value.String() == "true":
			fmt.Fprintln(cmd.OutOrStdout(), version.VersionInfo())
		case cmd.Flag("rev").Value.String() == "true":
			fmt.Fprintln(cmd.OutOrStdout(), version.Commit())
		default:
			fmt.Fprintln(cmd.OutOrStdout(), version.Tag())
		}
	},
}

func init() {
	versionCmd.Flags().Bool("rev", false, "show the version commit")
	versionCmd.Flags().Bool("all", false, "show all build information")
	rootCmd.AddCommand(versionCmd)
}
