// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config binds the process's environment variables and CLI
// flags into one Config, per SPEC_FULL.md §6. DATABASE_URL and
// ETH_RPC_URL are read through viper so an optional config file (ini,
// yaml, toml, json, env — anything viper supports) can supply them
// without a code change; CLI flags are bound on top so they win.
package config

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the fully resolved process configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL-compatible DSN. Required.
	DatabaseURL string
	// EthRPCURL is the WebSocket chain RPC endpoint. Required.
	EthRPCURL string
	// NoIndexing puts the process in API-only mode: no indexer loop is
	// spawned.
	NoIndexing bool
	// StartBlock is the initial height used only when the store has no
	// blocks at all.
	StartBlock uint64
}

// ErrMissingRequired is wrapped with the name of whichever required
// setting (DATABASE_URL, ETH_RPC_URL) was left unset.
var ErrMissingRequired = errors.New("config: missing required setting")

// Load resolves Config from the process environment and flags, and
// optionally from a config file (ini, yaml, toml, json, env — anything
// viper supports). flags must already have been parsed (pflag.Parse or
// an equivalent) before Load runs, since it reads flag values rather
// than parsing argv itself. The returned *viper.Viper is handed to
// WatchFile so a later config-file edit can be logged; Load itself only
// ever reads the file once.
func Load(flags *pflag.FlagSet, configFile string) (Config, *viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.BindPFlag("no-indexing", flags.Lookup("no-indexing"))
	v.BindPFlag("start-block", flags.Lookup("start-block"))

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	databaseURL := v.GetString("DATABASE_URL")
	if databaseURL == "" {
		return Config{}, nil, fmt.Errorf("%w: DATABASE_URL", ErrMissingRequired)
	}
	ethRPCURL := v.GetString("ETH_RPC_URL")
	if ethRPCURL == "" {
		return Config{}, nil, fmt.Errorf("%w: ETH_RPC_URL", ErrMissingRequired)
	}

	return Config{
		DatabaseURL: databaseURL,
		EthRPCURL:   ethRPCURL,
		NoIndexing:  v.GetBool("no-indexing"),
		StartBlock:  v.GetUint64("start-block"),
	}, v, nil
}

// WatchFile logs a notice whenever the config file Load read from
// changes. There is no hot-reload: DATABASE_URL/ETH_RPC_URL are read
// once at startup, so a change only ever takes effect on the next
// restart. A no-op if v is nil or Load was never given a config file.
func WatchFile(v *viper.Viper) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Warn("config file changed; restart the process to apply it", "file", e.Name)
	})
	v.WatchConfig()
}
