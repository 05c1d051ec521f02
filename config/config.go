package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds everything that can be set from the config file or
// BOOTSTRAP_* environment variables. Command-line flags override it.
type Config struct {
	AppName     string `mapstructure:"app_name"`
	ProjectName string `mapstructure:"project_name"`
	UI          string `mapstructure:"ui"`
	Lang        string `mapstructure:"lang"`
	// Linked from the fatal error dialog
	IssueTracker string           `mapstructure:"issue_tracker"`
	Controller   ControllerConfig `mapstructure:"controller"`
	Headless     HeadlessConfig   `mapstructure:"headless"`
	Logging      LoggingConfig    `mapstructure:"logging"`
}

// ControllerConfig picks what drives the view. With neither set,
// the view is standalone.
type ControllerConfig struct {
	Command []string `mapstructure:"command"`
	Script  string   `mapstructure:"script"`
}

type HeadlessConfig struct {
	AssumeYes bool `mapstructure:"assume_yes"`
	JSON      bool `mapstructure:"json"`
}

type LoggingConfig struct {
	Dir        string `mapstructure:"dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

const (
	configName = "bootstrap"
	envPrefix  = "BOOTSTRAP"
)

func DefaultConfig() *Config {
	return &Config{
		AppName:      "itch",
		ProjectName:  "itch",
		UI:           "auto",
		IssueTracker: "https://github.com/itchio/itch/issues",
		Headless: HeadlessConfig{
			AssumeYes: false,
			JSON:      false,
		},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Dir is where the config file is looked up when no explicit path
// is given, typically `~/.config/itch-bootstrap`.
func Dir(appName string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appName+"-bootstrap")
}

// Load reads the config file at path, or looks for `bootstrap.*` in
// searchDir when path is empty. A missing file is only an error
// when path was given explicitly.
func Load(path string, searchDir string) (*Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetDefault("app_name", defaults.AppName)
	v.SetDefault("project_name", defaults.ProjectName)
	v.SetDefault("ui", defaults.UI)
	v.SetDefault("lang", defaults.Lang)
	v.SetDefault("issue_tracker", defaults.IssueTracker)
	v.SetDefault("controller.command", defaults.Controller.Command)
	v.SetDefault("controller.script", defaults.Controller.Script)
	v.SetDefault("headless.assume_yes", defaults.Headless.AssumeYes)
	v.SetDefault("headless.json", defaults.Headless.JSON)
	v.SetDefault("logging.dir", defaults.Logging.Dir)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		if searchDir != "" {
			v.AddConfigPath(searchDir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errors.WithMessage(err, "reading config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WithMessage(err, "parsing config")
	}

	return cfg, nil
}
