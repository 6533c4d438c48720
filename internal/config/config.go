// Package config holds the options of an inventory run and how they are read
// from viper. Flags, environment variables and the config file are bound to
// the same keys in cmd/root.go, so precedence is whatever viper applies:
// flag > environment > config file > default.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"github.com/wwolkers/librenms-inventory/internal/url"
	"github.com/wwolkers/librenms-inventory/pkg/inventory"
)

// viper keys
const (
	KeyAPIURL          = "api-url"
	KeyAPIToken        = "api-token"
	KeyTokenPath       = "token-path"
	KeySecretsFile     = "secrets-file"
	KeyGroups          = "groups"
	KeyExcludeDisabled = "exclude-disabled"
	KeyValidateCerts   = "validate-certs"
	KeyCACert          = "ca-cert"
	KeyTimeout         = "timeout"
	KeyConcurrency     = "concurrency"
	KeyVariablePrefix  = "variable-prefix"
	KeyVariableMap     = "variable-map"
	KeyOSMap           = "os-map"
)

type Config struct {
	APIURL          string
	APIToken        string
	GroupPatterns   []string
	ExcludeDisabled bool
	ValidateCerts   bool
	CACertPath      string
	Timeout         int
	Concurrency     int
	VariablePrefix  string
	VariableMap     map[string]string
	OSMap           map[string]string
}

// ConfigError lists every problem found with a Config.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SetDefaults() registers the default value of every option.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyAPIToken, "")
	v.SetDefault(KeyGroups, []string{})
	v.SetDefault(KeyExcludeDisabled, true)
	v.SetDefault(KeyValidateCerts, false)
	v.SetDefault(KeyCACert, "")
	v.SetDefault(KeyTimeout, 30)
	v.SetDefault(KeyConcurrency, 1)
	v.SetDefault(KeyVariablePrefix, inventory.DefaultVariablePrefix)
}

// BindEnv() binds the environment variables the inventory has always read.
func BindEnv(v *viper.Viper) error {
	var errs *multierror.Error
	errs = multierror.Append(errs, v.BindEnv(KeyAPIURL, "LIBRENMS_API_URL"))
	errs = multierror.Append(errs, v.BindEnv(KeyAPIToken, "LIBRENMS_TOKEN"))
	errs = multierror.Append(errs, v.BindEnv(KeyGroups, "LIBRE_GROUP_NAMES_REGEX"))
	return errs.ErrorOrNil()
}

// LoadFile() will load a config file at the specified path. The file type is
// taken from the extension. Values set through flags or the environment keep
// precedence over the ones in the file.
func LoadFile(v *viper.Viper, path string) error {
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		v.SetConfigType(ext)
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	return nil
}

// Load() reads a Config from v. The remap tables fall back to the defaults
// when not set.
func Load(v *viper.Viper) Config {
	c := Config{
		APIURL:          v.GetString(KeyAPIURL),
		APIToken:        strings.TrimSpace(v.GetString(KeyAPIToken)),
		GroupPatterns:   v.GetStringSlice(KeyGroups),
		ExcludeDisabled: v.GetBool(KeyExcludeDisabled),
		ValidateCerts:   v.GetBool(KeyValidateCerts),
		CACertPath:      v.GetString(KeyCACert),
		Timeout:         v.GetInt(KeyTimeout),
		Concurrency:     v.GetInt(KeyConcurrency),
		VariablePrefix:  v.GetString(KeyVariablePrefix),
		VariableMap:     v.GetStringMapString(KeyVariableMap),
		OSMap:           v.GetStringMapString(KeyOSMap),
	}
	if len(c.VariableMap) == 0 {
		c.VariableMap = inventory.DefaultVariableMap
	}
	if len(c.OSMap) == 0 {
		c.OSMap = inventory.DefaultOSMap
	}
	return c
}

// Validate() checks the options needed to build an inventory. All problems
// are reported at once.
func (c Config) Validate() error {
	errs := c.connectionErrors()
	if len(c.GroupPatterns) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("no device group patterns set (--group or LIBRE_GROUP_NAMES_REGEX)"))
	}
	if _, err := inventory.NewMatcher(c.GroupPatterns); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

// ValidateConnection() only checks the options needed to talk to the API,
// for commands that do not build an inventory.
func (c Config) ValidateConnection() error {
	if err := c.connectionErrors().ErrorOrNil(); err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

func (c Config) connectionErrors() *multierror.Error {
	var errs *multierror.Error
	if c.APIURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("no API URL set (--%s or LIBRENMS_API_URL)", KeyAPIURL))
	} else if _, err := url.Sanitize(c.APIURL); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid API URL %q: %w", c.APIURL, err))
	}
	if c.APIToken == "" {
		errs = multierror.Append(errs, fmt.Errorf("no API token set (--%s, LIBRENMS_TOKEN, --%s or the secrets store)", KeyAPIToken, KeyTokenPath))
	}
	if c.Timeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("timeout must not be negative (got %d)", c.Timeout))
	}
	return errs
}

// Mapper() returns the attribute mapper described by c.
func (c Config) Mapper() *inventory.Mapper {
	return &inventory.Mapper{
		ExcludeDisabled: c.ExcludeDisabled,
		VariablePrefix:  c.VariablePrefix,
		VariableMap:     c.VariableMap,
		OSMap:           c.OSMap,
	}
}
