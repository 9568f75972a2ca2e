// Package config holds the configuration of the weft command line tools: environment-derived settings and the
// optional YAML configuration file found in the XDG config directories.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/adrg/xdg"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
)

const (
	WEFT_APP_NAME = "weft"

	CLI_CONFIG_FILE_NAME = "weftast.yaml"
	CLI_CONFIG_RELPATH   = WEFT_APP_NAME + "/" + CLI_CONFIG_FILE_NAME
	CLI_CONFIG_PERM      = 0o600

	FORMAT_JSON   = "json"
	FORMAT_DIGEST = "digest"

	DEFAULT_LOG_LEVEL = "warn"
	DEFAULT_FORMAT    = FORMAT_DIGEST
)

var (
	FORCE_COLOR     bool
	NO_COLOR        bool
	SHOULD_COLORIZE bool
)

func init() {
	targetSpecificInit()
}

// CLIConfig is the content of weft/weftast.yaml, command line flags override it.
type CLIConfig struct {
	Recovery    bool   `yaml:"recovery"`
	LogLevel    string `yaml:"logLevel"`
	Format      string `yaml:"format"`
	Parallelism int    `yaml:"parallelism"`

	//maximum number of fail-fast results kept in the unit cache, 0 disables the cache
	CacheSize int `yaml:"cacheSize"`
}

func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		LogLevel: DEFAULT_LOG_LEVEL,
		Format:   DEFAULT_FORMAT,
	}
}

func (c CLIConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.Format {
	case FORMAT_JSON, FORMAT_DIGEST:
	default:
		return fmt.Errorf("invalid format %q, valid formats are %s and %s", c.Format, FORMAT_JSON, FORMAT_DIGEST)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism should be positive or zero")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size should be positive or zero")
	}
	return nil
}

// ZerologLevel returns the parsed log level, the config is expected to be valid.
func (c CLIConfig) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}

// ParseCLIConfig decodes a configuration file, missing keys keep their default value.
func ParseCLIConfig(data []byte) (CLIConfig, error) {
	config := DefaultCLIConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return config, nil
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return CLIConfig{}, fmt.Errorf("failed to decode the configuration: %w", err)
	}
	if err := config.Validate(); err != nil {
		return CLIConfig{}, err
	}
	return config, nil
}

func ReadCLIConfig(path string) (CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CLIConfig{}, err
	}
	config, err := ParseCLIConfig(data)
	if err != nil {
		return CLIConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// LoadCLIConfig searches the configuration file in the XDG config directories. The default configuration and
// an empty path are returned if there is no such file.
func LoadCLIConfig() (CLIConfig, string, error) {
	path, err := xdg.SearchConfigFile(CLI_CONFIG_RELPATH)
	if err != nil {
		return DefaultCLIConfig(), "", nil
	}

	config, err := ReadCLIConfig(path)
	if err != nil {
		return CLIConfig{}, path, err
	}
	return config, path, nil
}

// WriteDefaultCLIConfig creates the configuration file in the XDG config home if it does not exist and
// returns its path.
func WriteDefaultCLIConfig() (string, error) {
	path, err := xdg.ConfigFile(CLI_CONFIG_RELPATH)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	data, err := yaml.Marshal(DefaultCLIConfig())
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, CLI_CONFIG_PERM); err != nil {
		return "", err
	}
	return path, nil
}
