package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ProgramConfig identifies one on-chain program to listen to. Programs with
// an empty address are skipped at startup instead of failing the process.
type ProgramConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
}

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCEndpoint string
	WSEndpoint  string
	PostgresDSN string
	ListenAddr  string
	LogLevel    string
	Programs    []ProgramConfig
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NOTIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("ws", "wss://api.mainnet-beta.solana.com")
	v.SetDefault("listen", ":10000")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCEndpoint: v.GetString("rpc"),
		WSEndpoint:  v.GetString("ws"),
		PostgresDSN: v.GetString("pg-dsn"),
		ListenAddr:  v.GetString("listen"),
		LogLevel:    v.GetString("log-level"),
		Programs:    DefaultPrograms(),
	}

	if v.IsSet("programs") {
		var programs []ProgramConfig
		if err := v.UnmarshalKey("programs", &programs); err != nil {
			return Config{}, fmt.Errorf("unmarshal programs: %w", err)
		}
		cfg.Programs = programs
	}

	return cfg, nil
}

// DefaultPrograms returns the built-in program table. Addresses can be
// overridden or cleared per deployment through the config file.
func DefaultPrograms() []ProgramConfig {
	return []ProgramConfig{
		{Name: "balansol", Address: "D3BBjqUdCYuP18fNvvMbPAZ8DpcCi4BZn4tW9ixtnPwi"},
		{Name: "farming_v2", Address: "9LWKWWnXyo6MUoQzPQmdcxsqyTWN9hTyFaJJXSB3hvmT"},
		{Name: "interdao", Address: "8Z5NrheM8xpZvmEnPAQQpnnDSGYQNDrcqGQiTpBPWenk"},
	}
}
