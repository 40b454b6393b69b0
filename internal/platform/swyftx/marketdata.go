package swyftx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ozquant/swyftxgo/internal/domain"
)

// timeframes maps unified timeframe names onto chart resolutions.
var timeframes = map[string]string{
	"1m":  "1",
	"5m":  "5",
	"15m": "15",
	"30m": "30",
	"1h":  "60",
	"4h":  "240",
	"1d":  "1D",
	"1w":  "1W",
}

// maxOHLCVLimit is the largest bar count the charts endpoint accepts.
const maxOHLCVLimit = 10000

// FetchTicker returns the unified ticker for one symbol.
//
// The live-rate snapshot supplies the core fields; the markets/info/detail
// call only enriches the ticker with 24h volume and is best-effort - when it
// fails the ticker is built with an empty detail object instead of failing
// the whole call.
func (c *Client) FetchTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	market, err := c.market(ctx, symbol)
	if err != nil {
		return domain.Ticker{}, err
	}

	body, err := c.publicGet(ctx, "live-rates/"+market.QuoteID+"/", nil)
	if err != nil {
		return domain.Ticker{}, err
	}

	var rates map[string]map[string]any
	if err := json.Unmarshal(body, &rates); err != nil {
		return domain.Ticker{}, fmt.Errorf("swyftx: decode live rates: %w", err)
	}

	rateInfo, ok := rates[market.BaseID]
	if !ok {
		return domain.Ticker{}, fmt.Errorf("%w: symbol %s not found in live rates", domain.ErrBadRequest, symbol)
	}

	detail := map[string]any{}
	if detailBody, err := c.publicGet(ctx, "markets/info/detail/"+market.Base+"/", nil); err != nil {
		c.logger.Debug("swyftx ticker detail fetch failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
	} else if err := json.Unmarshal(detailBody, &detail); err != nil {
		detail = map[string]any{}
	}

	payload := map[string]any{"assetId": market.BaseID, "detail": detail}
	for k, v := range rateInfo {
		payload[k] = v
	}

	return c.parseTicker(payload, &market), nil
}

// FetchTickers returns unified tickers for every synthesized market present in
// the AUD live-rate snapshot. A non-empty symbols list filters the result.
func (c *Client) FetchTickers(ctx context.Context, symbols []string) (map[string]domain.Ticker, error) {
	if err := c.loadMarkets(ctx); err != nil {
		return nil, err
	}

	body, err := c.publicGet(ctx, "live-rates/"+audAssetID+"/", nil)
	if err != nil {
		return nil, err
	}

	var rates map[string]map[string]any
	if err := json.Unmarshal(body, &rates); err != nil {
		return nil, fmt.Errorf("swyftx: decode live rates: %w", err)
	}

	var wanted map[string]bool
	if len(symbols) > 0 {
		wanted = make(map[string]bool, len(symbols))
		for _, s := range symbols {
			wanted[s] = true
		}
	}

	result := make(map[string]domain.Ticker)
	for assetID, rateInfo := range rates {
		if assetID == audAssetID {
			continue
		}
		market, ok := c.marketByID(assetID + "/" + audAssetID)
		if !ok {
			continue
		}
		if wanted != nil && !wanted[market.Symbol] {
			continue
		}

		payload := map[string]any{"assetId": assetID}
		for k, v := range rateInfo {
			payload[k] = v
		}
		result[market.Symbol] = c.parseTicker(payload, &market)
	}
	return result, nil
}

// parseTicker maps a live-rate payload onto the unified ticker. The upstream
// payload has no high/low/open/timestamp data, so those fields stay nil.
func (c *Client) parseTicker(raw map[string]any, market *domain.Market) domain.Ticker {
	if market == nil {
		if assetID := stringOf(raw, "assetId"); assetID != "" {
			if m, ok := c.marketByID(assetID + "/" + audAssetID); ok {
				market = &m
			}
		}
	}

	ticker := domain.Ticker{Info: raw}
	if market != nil {
		ticker.Symbol = market.Symbol
	}

	mid := floatPtr(raw, "midPrice")
	ticker.Close = mid
	ticker.Last = mid
	ticker.Bid = floatPtr(raw, "bidPrice")
	ticker.Ask = floatPtr(raw, "askPrice")
	ticker.Percentage = floatPtr(raw, "dailyPriceChange")

	if detail, ok := raw["detail"].(map[string]any); ok {
		if volume, ok := detail["volume"].(map[string]any); ok {
			ticker.QuoteVolume = floatPtr(volume, "24H")
		}
	}

	return ticker
}

// FetchOHLCV returns candles for a symbol. since is milliseconds since epoch;
// zero means the trailing 24 hours. limit 0 means no cap; anything above the
// endpoint maximum is rejected. side selects the "ask" or "bid" chart series,
// defaulting to ask.
//
// Bars are passed through exactly as returned - no aggregation or resampling.
func (c *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, since int64, limit int, side string) ([]domain.Candle, error) {
	market, err := c.market(ctx, symbol)
	if err != nil {
		return nil, err
	}

	resolution, ok := timeframes[timeframe]
	if !ok {
		return nil, fmt.Errorf("%w: invalid timeframe %s", domain.ErrBadRequest, timeframe)
	}
	if limit > maxOHLCVLimit {
		return nil, fmt.Errorf("%w: limit cannot exceed %d", domain.ErrBadRequest, maxOHLCVLimit)
	}
	if side == "" {
		side = "ask"
	}

	now := time.Now().UnixMilli()
	timeStart := since
	if timeStart == 0 {
		timeStart = now - 24*time.Hour.Milliseconds()
	}

	params := map[string]any{
		"resolution": resolution,
		"timeStart":  timeStart,
		"timeEnd":    now,
	}
	if limit > 0 {
		params["limit"] = limit
	}

	path := "charts/v2/getBars/" + market.Base + "/" + market.Quote + "/" + side + "/"
	body, err := c.publicGet(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var raw []apiCandle
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("swyftx: decode candles: %w", err)
	}

	candles := make([]domain.Candle, 0, len(raw))
	for _, bar := range raw {
		candles = append(candles, bar.toDomainCandle())
	}
	return candles, nil
}
