// Package app wires the exchange client to its optional infrastructure and
// executes the CLI commands.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ozquant/swyftxgo/internal/config"
	"github.com/ozquant/swyftxgo/internal/domain"
	"github.com/ozquant/swyftxgo/internal/platform/swyftx"
)

// rateLimitKey buckets all outbound exchange calls under one sliding window.
const rateLimitKey = "swyftx:api"

// App executes commands against the exchange.
type App struct {
	cfg    *config.Config
	client *swyftx.Client
	deps   *Dependencies
	logger *slog.Logger

	cleanup func()
}

// New constructs the application: it wires infrastructure dependencies from
// the config and builds the exchange client.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	deps, cleanup, err := Wire(ctx, cfg)
	if err != nil {
		return nil, err
	}

	opts := []swyftx.Option{swyftx.WithLogger(logger)}
	if cfg.Swyftx.UserAgent != "" {
		opts = append(opts, swyftx.WithUserAgent(cfg.Swyftx.UserAgent))
	}
	client := swyftx.NewClient(cfg.Swyftx.BaseURL, cfg.Swyftx.ApiKey, opts...)

	return &App{
		cfg:     cfg,
		client:  client,
		deps:    deps,
		logger:  logger,
		cleanup: cleanup,
	}, nil
}

// Close releases wired resources.
func (a *App) Close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

// Run dispatches one command.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "markets":
		return a.runMarkets(ctx)
	case "currencies":
		return a.runCurrencies(ctx)
	case "asset":
		return a.runAsset(ctx, args)
	case "ticker":
		return a.runTicker(ctx, args)
	case "tickers":
		return a.runTickers(ctx, args)
	case "ohlcv":
		return a.runOHLCV(ctx, args)
	case "balance":
		return a.runBalance(ctx)
	case "buy":
		return a.runOrder(ctx, domain.OrderSideBuy, args)
	case "sell":
		return a.runOrder(ctx, domain.OrderSideSell, args)
	case "edit-order":
		return a.runEditOrder(ctx, args)
	case "cancel-order":
		return a.runCancelOrder(ctx, args)
	case "order":
		return a.runFetchOrder(ctx, args)
	case "orders":
		return a.runFetchOrders(ctx, args)
	case "archive":
		return a.runArchive(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// pace blocks until the shared rate limiter admits one more exchange call.
// Without Redis it is a no-op; the adapter itself never throttles.
func (a *App) pace(ctx context.Context) error {
	if a.deps.RateLimiter == nil || a.cfg.Swyftx.RateLimit <= 0 {
		return nil
	}
	window := time.Duration(a.cfg.Swyftx.RateWindowSecs) * time.Second
	for {
		allowed, err := a.deps.RateLimiter.Allow(ctx, rateLimitKey, a.cfg.Swyftx.RateLimit, window)
		if err != nil {
			// A broken limiter should not take trading down with it.
			a.logger.Warn("rate limiter unavailable", slog.String("error", err.Error()))
			return nil
		}
		if allowed {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// journal records an order operation when the journal is configured. Journal
// failures are logged, not propagated: the exchange call already happened.
func (a *App) journal(ctx context.Context, entry domain.JournalEntry) {
	if a.deps.Journal == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	if err := a.deps.Journal.Append(ctx, entry); err != nil {
		a.logger.Warn("journal append failed",
			slog.String("order_id", entry.OrderID),
			slog.String("error", err.Error()),
		)
	}
}

func (a *App) runMarkets(ctx context.Context) error {
	if err := a.pace(ctx); err != nil {
		return err
	}
	markets, err := a.client.FetchMarkets(ctx)
	if err != nil {
		return err
	}

	if a.deps.AssetCache != nil {
		if assets, err := a.client.Assets(ctx); err == nil {
			if err := a.deps.AssetCache.SetAll(ctx, assets); err != nil {
				a.logger.Warn("asset cache write failed", slog.String("error", err.Error()))
			}
		}
	}

	return printJSON(markets)
}

func (a *App) runCurrencies(ctx context.Context) error {
	if err := a.pace(ctx); err != nil {
		return err
	}
	currencies, err := a.client.FetchCurrencies(ctx)
	if err != nil {
		return err
	}
	return printJSON(currencies)
}

// runAsset reads one asset through the Redis cache when available, falling
// back to the live catalog on a miss.
func (a *App) runAsset(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: asset <code>")
	}
	code := args[0]

	if a.deps.AssetCache != nil {
		if asset, err := a.deps.AssetCache.GetByCode(ctx, code); err == nil {
			return printJSON(asset)
		}
	}

	if err := a.pace(ctx); err != nil {
		return err
	}
	asset, err := a.client.AssetByCode(ctx, code)
	if err != nil {
		return err
	}
	return printJSON(asset)
}

func (a *App) runTicker(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ticker <symbol>")
	}
	if err := a.pace(ctx); err != nil {
		return err
	}
	ticker, err := a.client.FetchTicker(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(ticker)
}

func (a *App) runTickers(ctx context.Context, args []string) error {
	if err := a.pace(ctx); err != nil {
		return err
	}
	tickers, err := a.client.FetchTickers(ctx, args)
	if err != nil {
		return err
	}
	return printJSON(tickers)
}

func (a *App) runOHLCV(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: ohlcv <symbol> [timeframe]")
	}
	timeframe := "1h"
	if len(args) > 1 {
		timeframe = args[1]
	}
	if err := a.pace(ctx); err != nil {
		return err
	}
	candles, err := a.client.FetchOHLCV(ctx, args[0], timeframe, 0, 0, "")
	if err != nil {
		return err
	}
	return printJSON(candles)
}

func (a *App) runBalance(ctx context.Context) error {
	if err := a.pace(ctx); err != nil {
		return err
	}
	balances, err := a.client.FetchBalance(ctx)
	if err != nil {
		return err
	}
	return printJSON(balances)
}

// runOrder places a market or limit order:
//
//	buy  <symbol> <amount>          market buy
//	buy  <symbol> <amount> <price>  limit buy
func (a *App) runOrder(ctx context.Context, side domain.OrderSide, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s <symbol> <amount> [price]", side)
	}
	symbol := args[0]
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}

	req := domain.OrderRequest{
		Symbol: symbol,
		Kind:   domain.OrderKindMarket,
		Side:   side,
		Amount: amount,
	}
	if len(args) > 2 {
		price, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", args[2], err)
		}
		req.Kind = domain.OrderKindLimit
		req.Price = &price
	}

	if err := a.pace(ctx); err != nil {
		return err
	}
	order, err := a.client.CreateOrder(ctx, req, nil)
	if err != nil {
		return err
	}

	a.journal(ctx, domain.JournalEntry{
		OrderID: order.ID,
		Symbol:  symbol,
		Action:  "create",
		Kind:    req.Kind,
		Side:    side,
		Status:  order.Status,
		Price:   req.Price,
		Amount:  &amount,
	})

	return printJSON(order)
}

// runEditOrder updates a resting limit order. A "-" skips a field:
//
//	edit-order <id> <symbol> <price|-> [amount]
func (a *App) runEditOrder(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: edit-order <id> <symbol> <price|-> [amount]")
	}
	id, symbol := args[0], args[1]

	var price, amount *float64
	if args[2] != "-" {
		p, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", args[2], err)
		}
		price = &p
	}
	if len(args) > 3 {
		v, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[3], err)
		}
		amount = &v
	}

	if err := a.pace(ctx); err != nil {
		return err
	}
	order, err := a.client.EditOrder(ctx, id, symbol, domain.OrderKindLimit, amount, price, nil)
	if err != nil {
		return err
	}

	a.journal(ctx, domain.JournalEntry{
		OrderID: order.ID,
		Symbol:  symbol,
		Action:  "edit",
		Kind:    domain.OrderKindLimit,
		Side:    order.Side,
		Status:  order.Status,
		Price:   price,
		Amount:  amount,
	})

	return printJSON(order)
}

func (a *App) runCancelOrder(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: cancel-order <id> [symbol]")
	}
	id := args[0]
	symbol := ""
	if len(args) > 1 {
		symbol = args[1]
	}

	if err := a.pace(ctx); err != nil {
		return err
	}
	order, err := a.client.CancelOrder(ctx, id, symbol)
	if err != nil {
		return err
	}

	a.journal(ctx, domain.JournalEntry{
		OrderID: order.ID,
		Symbol:  symbol,
		Action:  "cancel",
		Status:  domain.OrderStatusCanceled,
	})

	return printJSON(order)
}

func (a *App) runFetchOrder(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: order <id>")
	}
	if err := a.pace(ctx); err != nil {
		return err
	}
	order, err := a.client.FetchOrder(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(order)
}

func (a *App) runFetchOrders(ctx context.Context, args []string) error {
	symbol := ""
	if len(args) > 0 {
		symbol = args[0]
	}
	if err := a.pace(ctx); err != nil {
		return err
	}
	orders, err := a.client.FetchOrders(ctx, symbol, 0, nil)
	if err != nil {
		return err
	}
	return printJSON(orders)
}

// runArchive fetches a day of bars and uploads them to object storage.
func (a *App) runArchive(ctx context.Context, args []string) error {
	if a.deps.Archiver == nil {
		return fmt.Errorf("archive: s3 is not configured")
	}
	if len(args) < 1 {
		return fmt.Errorf("usage: archive <symbol> [timeframe]")
	}
	symbol := args[0]
	timeframe := "1h"
	if len(args) > 1 {
		timeframe = args[1]
	}

	if err := a.pace(ctx); err != nil {
		return err
	}
	candles, err := a.client.FetchOHLCV(ctx, symbol, timeframe, 0, 0, "")
	if err != nil {
		return err
	}

	count, err := a.deps.Archiver.ArchiveBars(ctx, symbol, timeframe, time.Now().UTC(), candles)
	if err != nil {
		return err
	}

	a.logger.Info("bars archived",
		slog.String("symbol", symbol),
		slog.String("timeframe", timeframe),
		slog.Int64("count", count),
	)
	return nil
}

// printJSON renders a command result to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
