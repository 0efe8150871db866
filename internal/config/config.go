package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cseis-labs/csmod/internal/branding"
	"github.com/cseis-labs/csmod/internal/catalog"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// catalogFileName is the catalog document looked up when no path is configured.
	catalogFileName = "modules.yaml"
)

// Setting keys.
const (
	KeyCatalog      = "catalog"
	KeyLibDir       = "libdir"
	KeyModulePrefix = "module_prefix"
	KeyLogLevel     = "log_level"
	KeyLogFormat    = "log_format"
	KeyListen       = "listen"
)

// Defaults for keys that always have a value.
const (
	DefaultModulePrefix = catalog.DefaultPrefix
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultListen       = "127.0.0.1:9480"
)

// Settings is a typed snapshot of the effective configuration.
type Settings struct {
	Catalog      string
	LibDir       string
	ModulePrefix string
	LogLevel     string
	LogFormat    string
	Listen       string
}

// Dir returns the path to the config directory (~/.csmod/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.csmod/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// DefaultCatalogPath returns the catalog document used when none is configured.
func DefaultCatalogPath() string {
	return filepath.Join(Dir(), catalogFileName)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	viper.SetDefault(KeyCatalog, DefaultCatalogPath())
	viper.SetDefault(KeyModulePrefix, DefaultModulePrefix)
	viper.SetDefault(KeyLogLevel, DefaultLogLevel)
	viper.SetDefault(KeyLogFormat, DefaultLogFormat)
	viper.SetDefault(KeyListen, DefaultListen)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Current returns the effective settings after Load.
func Current() Settings {
	return Settings{
		Catalog:      viper.GetString(KeyCatalog),
		LibDir:       viper.GetString(KeyLibDir),
		ModulePrefix: viper.GetString(KeyModulePrefix),
		LogLevel:     viper.GetString(KeyLogLevel),
		LogFormat:    viper.GetString(KeyLogFormat),
		Listen:       viper.GetString(KeyListen),
	}
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
