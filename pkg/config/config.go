// Package config loads safekit settings from safekit.yaml, SAFEKIT_*
// environment variables and flags bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/luxfi/safekit/pkg/types"
)

const EnvPrefix = "SAFEKIT"

var ErrInvalidConfig = errors.New("invalid config")

type RPCConfig struct {
	URL        string        `mapstructure:"url"`
	Retries    uint          `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Config struct {
	Environment      string         `mapstructure:"environment"`
	LogLevel         string         `mapstructure:"log_level"`
	Network          string         `mapstructure:"network"`
	ChainID          uint64         `mapstructure:"chain_id"`
	SafeAddress      common.Address `mapstructure:"safe_address"`
	MultiSendAddress common.Address `mapstructure:"multisend_address"`
	ExtensionAddress common.Address `mapstructure:"extension_address"`
	KeyFile          string         `mapstructure:"key_file"`
	CacheSize        int            `mapstructure:"cache_size"`
	RPC              RPCConfig      `mapstructure:"rpc"`
}

// Debug reports whether debug logging was requested.
func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

var defaults = map[string]any{
	"environment":       "development",
	"log_level":         "info",
	"network":           string(types.NetworkETH),
	"chain_id":          0,
	"safe_address":      "",
	"multisend_address": "",
	"extension_address": "",
	"key_file":          "",
	"cache_size":        64,
	"rpc.url":           "http://127.0.0.1:8545",
	"rpc.retries":       3,
	"rpc.retry_delay":   "500ms",
	"rpc.timeout":       "15s",
}

// Configure installs defaults and environment lookup on v. Every key has a
// default so that AllSettings sees environment overrides.
func Configure(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// InitViperConfig configures the global viper and reads configFile, or
// safekit.yaml from the working directory or ~/.safekit when empty. A missing
// default file is not an error.
func InitViperConfig(configFile string) error {
	Configure(viper.GetViper())
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("safekit")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.safekit")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func addressHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(common.Address{}) || from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if s == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(s) {
		return nil, fmt.Errorf("%w: %q is not an address", ErrInvalidConfig, s)
	}
	return common.HexToAddress(s), nil
}

// Load decodes the settings of v and fills network defaults.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			addressHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.applyNetwork(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyNetwork() error {
	if c.Network == "" {
		return nil
	}
	n, ok := types.LookupNetwork(c.Network)
	if !ok {
		return fmt.Errorf("%w: unknown network %q (supported: %s)", ErrInvalidConfig, c.Network, strings.Join(types.NetworkCodes(), ", "))
	}
	if c.ChainID == 0 {
		c.ChainID = n.ChainID
	}
	if c.MultiSendAddress == (common.Address{}) {
		c.MultiSendAddress = n.MultiSend
	}
	return nil
}

// Validate checks the settings every command relies on.
func (c *Config) Validate() error {
	if c.ChainID == 0 {
		return fmt.Errorf("%w: chain_id is required", ErrInvalidConfig)
	}
	if c.MultiSendAddress == (common.Address{}) {
		return fmt.Errorf("%w: multisend_address is required", ErrInvalidConfig)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("%w: cache_size must be positive", ErrInvalidConfig)
	}
	if c.RPC.Retries == 0 {
		return fmt.Errorf("%w: rpc.retries must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// RequireSafe checks that a Safe address is configured.
func (c *Config) RequireSafe() error {
	if c.SafeAddress == (common.Address{}) {
		return fmt.Errorf("%w: safe_address is required", ErrInvalidConfig)
	}
	return nil
}
