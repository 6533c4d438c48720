package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/wwolkers/librenms-inventory/internal/export/sqlite"
	"github.com/wwolkers/librenms-inventory/internal/format"
)

var (
	listFormat = format.FORMAT_JSON
	listOutput string
)

// The `list` command builds the inventory and writes it in the requested
// format, either to stdout or to a file. The db format needs --output.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Build the inventory and write it as JSON, YAML or SQLite",
	Long: "Builds the inventory and writes it out. JSON is what Ansible reads from an\n" +
		"inventory script; YAML can be used as a static inventory file.\n\n" +
		"Examples:\n" +
		"  " + appName + " list\n" +
		"  " + appName + " list --format yaml --output hosts.yaml\n" +
		"  " + appName + " list --output inventory.db",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// an output file's extension wins over the default format
		if !cmd.Flags().Changed("format") && listOutput != "" {
			listFormat = format.DataFormatFromFileExt(listOutput, listFormat)
		}
		if listFormat == format.FORMAT_DB && listOutput == "" {
			return fmt.Errorf("--format db requires --output")
		}

		builder, err := newBuilder()
		if err != nil {
			return err
		}
		inv, err := builder.Build(cmd.Context())
		if err != nil {
			return err
		}
		if digest, err := inv.Digest(); err == nil {
			log.Info().Str("run", builder.RunID.String()).Str("digest", digest).
				Int("hosts", len(inv.Hosts())).Int("groups", len(inv.Groups())).Msg("built inventory")
		}

		if listFormat == format.FORMAT_DB {
			if err := sqlite.Export(listOutput, builder.RunID, inv); err != nil {
				return err
			}
			if err := sqlite.Verify(listOutput, inv); err != nil {
				return fmt.Errorf("failed to verify export: %w", err)
			}
			log.Info().Str("path", listOutput).Msg("exported inventory")
			return nil
		}

		b, err := format.Marshal(inv.Document(), listFormat)
		if err != nil {
			return err
		}
		if listOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		}
		if err := os.WriteFile(listOutput, append(b, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write inventory: %w", err)
		}
		log.Info().Str("path", listOutput).Msg("wrote inventory")
		return nil
	},
}

func init() {
	listCmd.Flags().VarP(&listFormat, "format", "F", "Set the output format (json|yaml|db)")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(listCmd)
}
