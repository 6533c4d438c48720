package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wwolkers/librenms-inventory/pkg/inventory"
)

// The `groups` command lists the device groups on the server and marks the
// ones the configured patterns select, to help writing the patterns.
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the device groups on the server and whether they are selected",
	Example: "  " + appName + " groups\n" +
		"  " + appName + " groups -g core_ -g 'dc[0-9]+_'",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// patterns are optional here
		if err := cfg.ValidateConnection(); err != nil {
			return err
		}
		matcher, err := inventory.NewMatcher(cfg.GroupPatterns)
		if err != nil {
			return err
		}
		groups, err := newAPI(cfg).DeviceGroups(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tSELECTED\tDESCRIPTION")
		for _, g := range groups {
			selected := matcher.Matches(g.Name)
			if selected && inventory.IsReservedGroup(g.Name) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.Name, g.Type, "reserved", g.Desc)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", g.Name, g.Type, selected, g.Desc)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}
