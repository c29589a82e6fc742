// (c) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	gethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
	"github.com/urfave/cli/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/shubhamdubey02/chainindexer/internal/api"
	"github.com/shubhamdubey02/chainindexer/internal/chainclient"
	"github.com/shubhamdubey02/chainindexer/internal/config"
	"github.com/shubhamdubey02/chainindexer/internal/indexer"
	"github.com/shubhamdubey02/chainindexer/internal/ingest"
	"github.com/shubhamdubey02/chainindexer/internal/store"
)

const (
	accountCacheSize = 4096
	shutdownGrace    = 5 * time.Second
)

var (
	noIndexingFlag = &cli.BoolFlag{
		Name:  "no-indexing",
		Usage: "API-only mode; do not spawn the indexer loop",
	}
	startBlockFlag = &cli.Uint64Flag{
		Name:  "start-block",
		Usage: "initial height if the store has no blocks yet",
	}
	listenAddrFlag = &cli.StringFlag{
		Name:  "listen-addr",
		Usage: "address for the read API and /metrics",
		Value: ":8080",
	}
	logFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "rotate logs to this file instead of stderr",
	}
	configFileFlag = &cli.StringFlag{
		Name:  "config-file",
		Usage: "optional config file (yaml/toml/json/ini) supplying DATABASE_URL/ETH_RPC_URL",
	}
)

func main() {
	setupLogging("")

	app := &cli.App{
		Name:  "chainindexer",
		Usage: "index blocks, transactions, logs, and token transfers into PostgreSQL",
		Flags: []cli.Flag{noIndexingFlag, startBlockFlag, listenAddrFlag, logFileFlag, configFileFlag},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		gethlog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if logFile := c.String(logFileFlag.Name); logFile != "" {
		setupLogging(logFile)
	}

	flags := pflag.NewFlagSet("chainindexer", pflag.ContinueOnError)
	flags.Bool(noIndexingFlag.Name, c.Bool(noIndexingFlag.Name), noIndexingFlag.Usage)
	flags.Uint64(startBlockFlag.Name, c.Uint64(startBlockFlag.Name), startBlockFlag.Usage)
	// Flags given on the command line are marked as changed so viper ranks
	// them above values from the environment or a config file.
	if c.IsSet(noIndexingFlag.Name) {
		_ = flags.Set(noIndexingFlag.Name, strconv.FormatBool(c.Bool(noIndexingFlag.Name)))
	}
	if c.IsSet(startBlockFlag.Name) {
		_ = flags.Set(startBlockFlag.Name, strconv.FormatUint(c.Uint64(startBlockFlag.Name), 10))
	}

	cfg, v, err := config.Load(flags, c.String(configFileFlag.Name))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	config.WatchFile(v)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	printStartupTable(cfg)

	mux := api.NewMux(db)
	server := &http.Server{Addr: c.String(listenAddrFlag.Name), Handler: mux}
	serverErrs := make(chan error, 1)
	go func() {
		gethlog.Info("read API listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrs <- err
		}
	}()

	var indexerErrs chan error
	if !cfg.NoIndexing {
		chain, err := chainclient.Dial(ctx, chainclient.Config{URL: cfg.EthRPCURL})
		if err != nil {
			return fmt.Errorf("dial chain client: %w", err)
		}
		defer chain.Close()

		accounts, err := ingest.NewAccountCache(accountCacheSize)
		if err != nil {
			return fmt.Errorf("build account cache: %w", err)
		}

		ix := indexer.New(chain, db, accounts, indexer.NewMetrics(), indexer.Config{StartBlock: cfg.StartBlock})
		indexerErrs = make(chan error, 1)
		go func() {
			indexerErrs <- ix.Run(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		gethlog.Info("shutting down")
	case err := <-serverErrs:
		cancel()
		return fmt.Errorf("read API server: %w", err)
	case err := <-indexerErrs:
		cancel()
		if err != nil {
			return fmt.Errorf("indexer loop: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

func printStartupTable(cfg config.Config) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"setting", "value"})
	table.Append([]string{"database_url", redactDSN(cfg.DatabaseURL)})
	table.Append([]string{"eth_rpc_url", cfg.EthRPCURL})
	table.Append([]string{"no_indexing", strconv.FormatBool(cfg.NoIndexing)})
	table.Append([]string{"start_block", strconv.FormatUint(cfg.StartBlock, 10)})
	table.Render()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	return "<redacted>"
}

func setupLogging(file string) {
	if file != "" {
		rotated := &lumberjack.Logger{Filename: file, MaxSize: 100, MaxBackups: 5, MaxAge: 28}
		gethlog.SetDefault(gethlog.NewLogger(gethlog.NewTerminalHandlerWithLevel(rotated, gethlog.LevelInfo, false)))
		return
	}
	useColor := isatty.IsTerminal(os.Stderr.Fd())
	out := colorable.NewColorableStderr()
	gethlog.SetDefault(gethlog.NewLogger(gethlog.NewTerminalHandlerWithLevel(out, gethlog.LevelInfo, useColor)))
}
