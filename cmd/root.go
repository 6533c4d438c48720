// The cmd package implements the librenms-inventory CLI. The files in this
// package only handle CLI arguments and configuration, and pass them to the
// inventory builder in pkg/inventory.
//
// Called with --list or --host, the root command behaves as an Ansible
// inventory script:
//
//	ansible-inventory -i librenms-inventory --list
//
// The subcommands cover everything else:
//
//	cmd/list.go    --> write the inventory as JSON, YAML or SQLite
//	cmd/groups.go  --> show which device groups the patterns select
//	cmd/serve.go   --> internal/server ( serve the inventory over HTTP )
//	cmd/secrets.go --> pkg/secrets ( store API tokens encrypted )
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wwolkers/librenms-inventory/internal/config"
	"github.com/wwolkers/librenms-inventory/internal/format"
	logger "github.com/wwolkers/librenms-inventory/internal/log"
	"github.com/wwolkers/librenms-inventory/internal/url"
	"github.com/wwolkers/librenms-inventory/pkg/client"
	"github.com/wwolkers/librenms-inventory/pkg/inventory"
	"github.com/wwolkers/librenms-inventory/pkg/librenms"
	"github.com/wwolkers/librenms-inventory/pkg/secrets"
)

const appName = "librenms-inventory"

var (
	configPath string
	logLevel   = logger.INFO
	logFile    string
	listHosts  bool
	hostName   string
)

// The `root` command answers Ansible's inventory script protocol. Without
// --list or --host it shows the help message.
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Ansible dynamic inventory from LibreNMS device groups",
	Long: "Builds an Ansible inventory from the device groups of a LibreNMS server.\n" +
		"Every device group matching one of the --group patterns becomes an Ansible\n" +
		"group, and every enabled device in it becomes a host.\n\n" +
		"Examples:\n" +
		"  export LIBRENMS_API_URL=https://nms.example.com/api/v0\n" +
		"  export LIBRENMS_TOKEN=...\n" +
		"  export LIBRE_GROUP_NAMES_REGEX='ansible_ core_'\n" +
		"  ansible-inventory -i " + appName + " --graph\n" +
		"  " + appName + " --list\n" +
		"  " + appName + " --host router1",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !listHosts && hostName == "" {
			return cmd.Help()
		}
		inv, err := buildInventory(cmd.Context())
		if err != nil {
			return err
		}
		var doc any = inv.Document()
		if hostName != "" {
			doc = inv.HostDocument(hostName)
		}
		b, err := format.Marshal(doc, format.FORMAT_JSON)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

// This Execute() function is called from main to run the CLI.
func Execute() {
	defer logger.Close()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		// keep the message readable even with --log-level disabled
		if logLevel == logger.DISABLED {
			fmt.Fprintln(os.Stderr, err)
		}
		logger.Close()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging, InitializeConfig)
	config.SetDefaults(viper.GetViper())

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Set the config file path")
	flags.Var(&logLevel, "log-level", fmt.Sprintf("Set the log level (%v)", logger.Levels))
	flags.StringVar(&logFile, "log-file", "", "Also append JSON logs to this file")
	flags.String(config.KeyAPIURL, "", "Set the LibreNMS API root, e.g. https://nms.example.com/api/v0")
	flags.String(config.KeyAPIToken, "", "Set the LibreNMS API token")
	flags.String(config.KeyTokenPath, "", "Read the API token from this file")
	flags.String(config.KeySecretsFile, defaultSecretsFile(), "Look up the API token in this encrypted store (requires MASTER_KEY)")
	flags.StringSliceP("group", "g", nil, "Add a device group name pattern (case-insensitive, anchored at the start)")
	flags.Bool(config.KeyExcludeDisabled, true, "Leave disabled devices out of the inventory")
	flags.Bool(config.KeyValidateCerts, false, "Verify the server's TLS certificate")
	flags.String(config.KeyCACert, "", "Verify the server's TLS certificate against this PEM bundle")
	flags.IntP(config.KeyConcurrency, "j", 1, "Set the number of devices fetched at once (0 for one per group member)")
	flags.IntP(config.KeyTimeout, "t", 30, "Set the timeout for requests in seconds")
	flags.String(config.KeyVariablePrefix, inventory.DefaultVariablePrefix, "Set the prefix of device attributes in host variables")

	rootCmd.Flags().BoolVar(&listHosts, "list", false, "Print the whole inventory (Ansible inventory script protocol)")
	rootCmd.Flags().StringVar(&hostName, "host", "", "Print the variables of one host (Ansible inventory script protocol)")
	rootCmd.MarkFlagsMutuallyExclusive("list", "host")

	// bind viper config flags with cobra
	for _, key := range []string{
		config.KeyAPIURL,
		config.KeyAPIToken,
		config.KeyTokenPath,
		config.KeySecretsFile,
		config.KeyExcludeDisabled,
		config.KeyValidateCerts,
		config.KeyCACert,
		config.KeyConcurrency,
		config.KeyTimeout,
		config.KeyVariablePrefix,
	} {
		checkBindFlagError(viper.BindPFlag(key, flags.Lookup(key)))
	}
	checkBindFlagError(viper.BindPFlag(config.KeyGroups, flags.Lookup("group")))
	checkBindFlagError(config.BindEnv(viper.GetViper()))
}

func checkBindFlagError(err error) {
	if err != nil {
		log.Error().Err(err).Msg("failed to bind cobra/viper flag")
	}
}

func initLogging() {
	if err := logger.InitWithLogLevel(logLevel, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
}

func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return appName
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

func defaultSecretsFile() string {
	return filepath.Join(configDir(), "secrets.json")
}

// InitializeConfig() loads the config file given with --config, or the
// optional config.yaml in the user's config directory.
func InitializeConfig() {
	if configPath != "" {
		if err := config.LoadFile(viper.GetViper(), configPath); err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("failed to load config")
		}
		return
	}
	viper.AddConfigPath(configDir())
	viper.SetConfigName("config")
	// File type left unspecified; Viper will auto-parse based on extension
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			log.Debug().Str("dir", configDir()).Msg("no config file found")
			return
		}
		log.Error().Err(err).Msg("failed to load config file")
		return
	}
	log.Debug().Str("path", viper.ConfigFileUsed()).Msg("loaded config file")
}

// tokenStore() picks where the API token comes from: the flag or
// LIBRENMS_TOKEN first, then --token-path, then the secrets store. It
// returns nil when no source is available.
func tokenStore(cfg config.Config) (secrets.SecretStore, error) {
	if cfg.APIToken != "" {
		return secrets.NewStaticStore(cfg.APIToken), nil
	}
	if path := viper.GetString(config.KeyTokenPath); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read token file: %w", err)
		}
		return secrets.NewStaticStore(strings.TrimSpace(string(b))), nil
	}

	path := viper.GetString(config.KeySecretsFile)
	if _, err := os.Stat(path); err != nil || os.Getenv("MASTER_KEY") == "" {
		return nil, nil
	}
	return secrets.OpenStore(path)
}

// loadToken() returns the API token for cfg.APIURL, or "" when there is none.
func loadToken(cfg config.Config) (string, error) {
	store, err := tokenStore(cfg)
	if err != nil || store == nil {
		return "", err
	}
	id, err := secrets.TokenID(cfg.APIURL)
	if err != nil {
		// reported by config validation
		id = cfg.APIURL
	}
	token, err := store.GetSecretByID(id)
	if err != nil {
		log.Warn().Err(err).Msg("no API token found")
		return "", nil
	}
	return token, nil
}

// loadConfig() reads the configuration of a run and resolves its token.
// Callers validate it.
func loadConfig() (config.Config, error) {
	cfg := config.Load(viper.GetViper())
	token, err := loadToken(cfg)
	if err != nil {
		return cfg, err
	}
	cfg.APIToken = token
	return cfg, nil
}

func newAPI(cfg config.Config) *librenms.API {
	baseURL, _ := url.Sanitize(cfg.APIURL)
	opts := []client.Option{
		client.WithAuthToken(cfg.APIToken),
		client.WithTimeout(time.Duration(cfg.Timeout) * time.Second),
	}
	if cfg.ValidateCerts || cfg.CACertPath != "" {
		opts = append(opts, client.WithSecureTLS(cfg.CACertPath))
	}
	return librenms.NewAPI(baseURL, client.NewClient(opts...))
}

// newBuilder() wires config, client, API, matcher and mapper together.
func newBuilder() (*inventory.Builder, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	matcher, err := inventory.NewMatcher(cfg.GroupPatterns)
	if err != nil {
		return nil, err
	}
	return inventory.NewBuilder(newAPI(cfg), matcher, cfg.Mapper(),
		inventory.WithConcurrency(cfg.Concurrency)), nil
}

func buildInventory(ctx context.Context) (*inventory.Inventory, error) {
	builder, err := newBuilder()
	if err != nil {
		return nil, err
	}
	return builder.Build(ctx)
}
