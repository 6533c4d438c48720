package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wwolkers/librenms-inventory/internal/server"
)

// The `serve` command launches a long-running web server that builds the
// inventory on every request, e.g. for use from a container.
var serveCmd = &cobra.Command{
	Use: "serve",
	Example: `  // basic launch
  ` + appName + ` serve
  // fetch the inventory
  curl http://localhost:8080/inventory
  curl http://localhost:8080/inventory/hosts/router1`,
	Short: "Serve the inventory over HTTP",
	Long:  "Exposes GET /inventory, GET /inventory/hosts/{host} and GET /healthz. Every inventory request is a fresh build against LibreNMS.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// fail early on a bad configuration instead of on the first request
		if _, err := newBuilder(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.New(viper.GetString("serve.listen"), buildInventory).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "localhost:8080", "Set the address to listen on")
	checkBindFlagError(viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen")))
	rootCmd.AddCommand(serveCmd)
}
