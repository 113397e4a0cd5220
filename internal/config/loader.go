package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".depfix"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for depfix settings.
const envPrefix = "DEPFIX"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// Defaults for RegistryConfig/StyleConfig/ObservabilityConfig.
const (
	DefaultSandboxTimeout = 5 * time.Second
	DefaultNodeBinary     = "node"
	DefaultMemCacheSize   = 32
	DefaultRequireKeyword = "require"
	DefaultStyleKind      = "const"
	DefaultQuote          = "\""
	DefaultSemi           = ";"
	DefaultTab            = "  "
	DefaultTrailingComma  = ""
	DefaultLogLevel       = "info"
)

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("registry.cache_dir", os.TempDir())
	viperCfg.SetDefault("registry.sandbox_timeout", DefaultSandboxTimeout)
	viperCfg.SetDefault("registry.node_binary", DefaultNodeBinary)
	viperCfg.SetDefault("registry.mem_cache_size", DefaultMemCacheSize)

	viperCfg.SetDefault("style.require_keyword", DefaultRequireKeyword)
	viperCfg.SetDefault("style.kind", DefaultStyleKind)
	viperCfg.SetDefault("style.quote", DefaultQuote)
	viperCfg.SetDefault("style.semi", DefaultSemi)
	viperCfg.SetDefault("style.tab", DefaultTab)
	viperCfg.SetDefault("style.trailing_comma", DefaultTrailingComma)

	viperCfg.SetDefault("observability.log_level", DefaultLogLevel)
	viperCfg.SetDefault("observability.log_json", false)
	viperCfg.SetDefault("observability.debug_trace", false)
}
