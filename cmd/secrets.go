package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wwolkers/librenms-inventory/internal/config"
	"github.com/wwolkers/librenms-inventory/pkg/secrets"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var secretsStoreInputFile string

var secretsCmd = &cobra.Command{
	Use: "secrets",
	Example: `  // generate new key and set environment variable
  export MASTER_KEY=$(` + appName + ` secrets generatekey)

  // store the token of a LibreNMS server in the default store
  ` + appName + ` secrets store https://nms.example.com/api/v0 $token

  // read the token from a file instead of the command line
  ` + appName + ` secrets store https://nms.example.com/api/v0 -i token.txt

  // list the servers with a stored token
  ` + appName + ` secrets list`,
	Short: "Manage LibreNMS API tokens",
	Long: "Manage LibreNMS API tokens in an encrypted store, so they do not have to be\n" +
		"passed on the command line. Tokens are stored under the API URL they belong to.\n" +
		"This requires generating a key and setting the 'MASTER_KEY' environment variable.",
}

var secretsGenerateKeyCmd = &cobra.Command{
	Use:   "generatekey",
	Args:  cobra.NoArgs,
	Short: "Generates a new 32-byte master key (in hex).",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := secrets.GenerateMasterKey()
		if err != nil {
			return fmt.Errorf("failed to generate master key: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

var secretsStoreCmd = &cobra.Command{
	Use:   "store api-url [token]",
	Args:  cobra.RangeArgs(1, 2),
	Short: "Stores the token of the LibreNMS server at api-url.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		switch {
		case len(args) == 2 && secretsStoreInputFile != "":
			return fmt.Errorf("cannot use -i/--input-file with a positional token")
		case len(args) == 2:
			token = args[1]
		case secretsStoreInputFile == "-":
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read token from stdin: %w", err)
			}
			token = string(b)
		case secretsStoreInputFile != "":
			b, err := os.ReadFile(secretsStoreInputFile)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			token = string(b)
		default:
			return fmt.Errorf("no token given")
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return fmt.Errorf("token is empty")
		}

		store, err := openSecretsStore()
		if err != nil {
			return err
		}
		if err := secrets.StoreToken(store, args[0], token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		log.Info().Str("api-url", args[0]).Msg("stored API token")
		return nil
	},
}

var secretsRetrieveCmd = &cobra.Command{
	Use:   "retrieve api-url",
	Args:  cobra.ExactArgs(1),
	Short: "Prints the token stored for api-url.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSecretsStore()
		if err != nil {
			return err
		}
		token, err := secrets.LookupToken(store, args[0])
		if err != nil {
			return fmt.Errorf("failed to retrieve token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var secretsListCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "Lists the API URLs with a stored token.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSecretsStore()
		if err != nil {
			return err
		}
		entries, err := store.ListSecrets()
		if err != nil {
			return fmt.Errorf("failed to list secrets: %w", err)
		}
		ids := maps.Keys(entries)
		slices.Sort(ids)
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var secretsRemoveCmd = &cobra.Command{
	Use:   "remove api-urls...",
	Args:  cobra.MinimumNArgs(1),
	Short: "Removes the tokens of the given API URLs from the store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSecretsStore()
		if err != nil {
			return err
		}
		for _, apiURL := range args {
			id, err := secrets.TokenID(apiURL)
			if err != nil {
				return err
			}
			if err := store.RemoveSecretByID(id); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
		}
		return nil
	},
}

func openSecretsStore() (*secrets.LocalSecretStore, error) {
	path := viper.GetString(config.KeySecretsFile)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create secrets directory: %w", err)
	}
	return secrets.OpenStore(path)
}

func init() {
	secretsStoreCmd.Flags().StringVarP(&secretsStoreInputFile, "input-file", "i", "", "Read the token from this file (- for stdin)")

	secretsCmd.AddCommand(secretsGenerateKeyCmd)
	secretsCmd.AddCommand(secretsStoreCmd)
	secretsCmd.AddCommand(secretsRetrieveCmd)
	secretsCmd.AddCommand(secretsListCmd)
	secretsCmd.AddCommand(secretsRemoveCmd)

	rootCmd.AddCommand(secretsCmd)
}
