// Command swyftxctl is a command line front end for the Swyftx exchange
// adapter. It loads configuration, validates it, wires dependencies, sets up
// signal handling, and runs one subcommand.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ozquant/swyftxgo/internal/app"
	"github.com/ozquant/swyftxgo/internal/config"
)

const usage = `usage: swyftxctl [-config path] <command> [args]

commands:
  markets                                 list tradable markets
  currencies                              list listed assets
  asset <code>                            show one asset
  ticker <symbol>                         quote one market
  tickers [symbol ...]                    quote all or selected markets
  ohlcv <symbol> [timeframe]              fetch candles
  balance                                 account balances
  buy <symbol> <amount> [price]           place a buy order
  sell <symbol> <amount> [price]          place a sell order
  edit-order <id> <symbol> <price|-> [amount]
  cancel-order <id> [symbol]              cancel an order
  order <id>                              fetch one order
  orders [symbol]                         list orders
  archive <symbol> [timeframe]            upload a day of bars to object storage
`

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	args := flag.Args()[1:]

	// Setup structured JSON logger. Logs go to stderr so command output on
	// stdout stays machine readable.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create the application.
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	// Run the command.
	if err := application.Run(ctx, command, args); err != nil {
		if err == context.Canceled {
			logger.Info("interrupted")
			os.Exit(1)
		}
		logger.Error("command failed",
			slog.String("command", command),
			slog.String("error", err.Error()),
		)
		fmt.Fprintf(os.Stderr, "swyftxctl: %v\n", err)
		os.Exit(1)
	}
}
