package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. BUNDLEVIEW_LOG_LEVEL
const EnvPrefix = "BUNDLEVIEW"

type Config struct {
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	LogFile        string `mapstructure:"log_file"`
	CacheDir       string `mapstructure:"cache_dir"`
	EntryCacheSize int    `mapstructure:"entry_cache_size"`
	IndexCache     bool   `mapstructure:"index_cache"`
	Highlight      bool   `mapstructure:"highlight"`
	HighlightStyle string `mapstructure:"highlight_style"`
	Progress       bool   `mapstructure:"progress"`
	Match          string `mapstructure:"match"`
	ForceDownload  bool   `mapstructure:"force_download"`
}

// Load initializes and loads configuration from defaults, an optional
// config file, a .env file in the working directory and the environment.
// The result is not validated; callers apply flag overrides first and then
// call Validate.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()

	// Set defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("cache_dir", "")
	v.SetDefault("entry_cache_size", 8)
	v.SetDefault("index_cache", false)
	v.SetDefault("highlight", true)
	v.SetDefault("highlight_style", "monokai")
	v.SetDefault("progress", true)
	v.SetDefault("match", "")
	v.SetDefault("force_download", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Config file handling
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName("bundleview")
		v.SetConfigType("yaml")
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
