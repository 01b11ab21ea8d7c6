package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/abiosoft/ishell/v2"
	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/makima-ai/makima-go/pkg/client"
)

const (
	DefaultMakimaURL    = "http://localhost:7777"
	DefaultOutputFormat = "table"

	cfgKey    = "[config]"
	clientKey = "[client]"
)

// BoldBlue renders the shell prompt
var BoldBlue = color.New(color.FgHiBlue, color.Bold).SprintFunc()

type Config struct {
	MakimaURL    string `mapstructure:"makima_url"`
	OutputFormat string `mapstructure:"output_format"`
	Verbose      bool   `mapstructure:"verbose"`
	// Token is sent as a bearer token when set
	Token        string `mapstructure:"token"`
}

// Dir returns the directory holding the config file and the shell history
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting user home directory: %w", err)
	}
	return filepath.Join(home, ".makima"), nil
}

// DefaultConfigFile returns $HOME/.makima/config.yaml
func DefaultConfigFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Init reads configFile into viper, creating it with the defaults when it does
// not exist. MAKIMA_URL, MAKIMA_OUTPUT_FORMAT, MAKIMA_VERBOSE and
// MAKIMA_TOKEN override it.
func Init(configFile string) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	viper.SetConfigFile(configFile)
	viper.SetConfigType("yaml")

	// Set default values
	viper.SetDefault("makima_url", DefaultMakimaURL)
	viper.SetDefault("output_format", DefaultOutputFormat)
	viper.SetDefault("verbose", false)
	viper.SetDefault("token", "")

	viper.SetEnvPrefix("MAKIMA")
	viper.AutomaticEnv()
	viper.MustBindEnv("makima_url", "MAKIMA_URL")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			if err := viper.WriteConfigAs(configFile); err != nil {
				return fmt.Errorf("error creating default config file: %w", err)
			}
		} else {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func Get() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// SetHistoryPath keeps the interactive shell history next to the config file
func SetHistoryPath(dir string, shell *ishell.Shell) {
	shell.SetHistoryPath(filepath.Join(dir, ".history"))
}

func SetCfg(shell *ishell.Shell, cfg *Config) {
	shell.Set(cfgKey, cfg)
}

func GetCfg(c *ishell.Context) *Config {
	return c.Get(cfgKey).(*Config)
}

func SetClient(shell *ishell.Shell, clients *client.ClientSet) {
	shell.Set(clientKey, clients)
}

func GetClient(c *ishell.Context) *client.ClientSet {
	return c.Get(clientKey).(*client.ClientSet)
}
