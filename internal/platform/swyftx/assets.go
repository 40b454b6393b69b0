package swyftx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ozquant/swyftxgo/internal/domain"
)

const (
	// defaultQuotePriceScale fills in price_scale when the AUD catalog entry
	// omits it; defaultBasePriceScale is the fallback for every other asset.
	// An explicit price_scale of 0 is honored, not defaulted.
	defaultQuotePriceScale = 6
	defaultBasePriceScale  = 8
)

// ensureAssetsLoaded populates the byCode/byID asset indexes on first use.
// The check-then-fetch is collapsed through a singleflight group so
// concurrent first calls share one catalog fetch, and both indexes are
// installed under a single lock write - a reader can never observe one index
// populated and the other empty.
func (c *Client) ensureAssetsLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.assetsByCode != nil
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := c.catalogGroup.Do("assets", func() (any, error) {
		c.mu.RLock()
		loaded := c.assetsByCode != nil
		c.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		assets, err := c.fetchAssetList(ctx)
		if err != nil {
			return nil, err
		}

		byCode := make(map[string]domain.Asset, len(assets))
		byID := make(map[string]domain.Asset, len(assets))
		for _, a := range assets {
			byCode[a.Code] = a
			byID[a.ID] = a
		}

		c.mu.Lock()
		c.assetsByCode = byCode
		c.assetsByID = byID
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// ResetAssets drops the asset indexes and the synthesized market set, forcing
// a re-fetch on next use. The exchange offers no invalidation signal, so this
// is the only refresh path for a long-lived process.
func (c *Client) ResetAssets() {
	c.mu.Lock()
	c.assetsByCode = nil
	c.assetsByID = nil
	c.markets = nil
	c.marketsByID = nil
	c.mu.Unlock()
}

// Assets returns the loaded catalog as a slice, fetching it on first use.
func (c *Client) Assets(ctx context.Context) ([]domain.Asset, error) {
	if err := c.ensureAssetsLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	assets := make([]domain.Asset, 0, len(c.assetsByID))
	for _, a := range c.assetsByID {
		assets = append(assets, a)
	}
	return assets, nil
}

// AssetByID looks an asset up in the loaded catalog.
func (c *Client) AssetByID(ctx context.Context, id string) (domain.Asset, error) {
	if err := c.ensureAssetsLoaded(ctx); err != nil {
		return domain.Asset{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assetsByID[id]
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: asset id %s", domain.ErrNotFound, id)
	}
	return a, nil
}

// AssetByCode looks an asset up by its currency code.
func (c *Client) AssetByCode(ctx context.Context, code string) (domain.Asset, error) {
	if err := c.ensureAssetsLoaded(ctx); err != nil {
		return domain.Asset{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assetsByCode[code]
	if !ok {
		return domain.Asset{}, fmt.Errorf("%w: asset code %s", domain.ErrNotFound, code)
	}
	return a, nil
}

// fetchAssetList retrieves the full catalog from markets/assets/.
func (c *Client) fetchAssetList(ctx context.Context) ([]domain.Asset, error) {
	body, err := c.publicGet(ctx, "markets/assets/", nil)
	if err != nil {
		return nil, err
	}

	var raw []apiAsset
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("swyftx: decode assets: %w", err)
	}

	assets := make([]domain.Asset, 0, len(raw))
	for _, a := range raw {
		defaultScale := defaultBasePriceScale
		if a.ID.String() == audAssetID {
			defaultScale = defaultQuotePriceScale
		}
		assets = append(assets, a.toDomainAsset(defaultScale))
	}
	return assets, nil
}

// FetchCurrencies returns the unified currency map keyed by code.
func (c *Client) FetchCurrencies(ctx context.Context) (map[string]domain.Currency, error) {
	assets, err := c.fetchAssetList(ctx)
	if err != nil {
		return nil, fmt.Errorf("swyftx: fetch currencies: %w", err)
	}

	result := make(map[string]domain.Currency, len(assets))
	for _, a := range assets {
		result[a.Code] = domain.Currency{
			ID:          a.ID,
			Code:        a.Code,
			Name:        a.Name,
			Active:      a.DepositEnabled || a.WithdrawEnabled,
			Deposit:     a.DepositEnabled,
			Withdraw:    a.WithdrawEnabled,
			Fee:         a.MiningFee,
			Precision:   tickFromScale(a.PriceScale).InexactFloat64(),
			MinAmount:   a.MinimumOrder,
			MinWithdraw: a.MinWithdrawal,
		}
	}
	return result, nil
}

// FetchMarkets synthesizes the spot market list. The exchange has no market
// endpoint; a market exists for base id B exactly when B appears in the AUD
// live-rate snapshot and B has a catalog entry. The quote side is always AUD.
//
// The catalog and the rate snapshot are independent fetches, so they run
// concurrently.
func (c *Client) FetchMarkets(ctx context.Context) ([]domain.Market, error) {
	var rates map[string]apiLiveRate

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.ensureAssetsLoaded(gctx)
	})
	g.Go(func() error {
		body, err := c.publicGet(gctx, "live-rates/"+audAssetID+"/", nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, &rates); err != nil {
			return fmt.Errorf("swyftx: decode live rates: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	quote, err := c.AssetByID(ctx, audAssetID)
	if err != nil {
		return nil, fmt.Errorf("%w: could not find AUD asset in catalog", domain.ErrExchange)
	}
	priceTick := tickFromScale(quote.PriceScale)

	c.mu.RLock()
	byID := c.assetsByID
	c.mu.RUnlock()

	result := make([]domain.Market, 0, len(rates))
	for baseID, rate := range rates {
		if baseID == audAssetID {
			continue
		}
		base, ok := byID[baseID]
		if !ok {
			continue
		}

		amountTick := tickFromScale(base.PriceScale)
		if base.MinimumOrderIncrement > 0 {
			amountTick = decimal.NewFromFloat(base.MinimumOrderIncrement)
		}

		active := !rate.BuyLiquidityFlag && !rate.SellLiquidityFlag &&
			base.DepositEnabled && base.WithdrawEnabled

		result = append(result, domain.Market{
			ID:              baseID + "/" + audAssetID,
			Symbol:          base.Code + "/" + quote.Code,
			Base:            base.Code,
			Quote:           quote.Code,
			BaseID:          baseID,
			QuoteID:         audAssetID,
			Active:          active,
			AmountPrecision: amountTick,
			PricePrecision:  priceTick,
			MinAmount:       base.MinimumOrder,
		})
	}
	return result, nil
}

// loadMarkets fetches and indexes the market set on first use.
func (c *Client) loadMarkets(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.markets != nil
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := c.catalogGroup.Do("markets", func() (any, error) {
		c.mu.RLock()
		loaded := c.markets != nil
		c.mu.RUnlock()
		if loaded {
			return nil, nil
		}

		list, err := c.FetchMarkets(ctx)
		if err != nil {
			return nil, err
		}

		bySymbol := make(map[string]domain.Market, len(list))
		byID := make(map[string]domain.Market, len(list))
		for _, m := range list {
			bySymbol[m.Symbol] = m
			byID[m.ID] = m
		}

		c.mu.Lock()
		c.markets = bySymbol
		c.marketsByID = byID
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// market resolves a unified symbol against the loaded market set.
func (c *Client) market(ctx context.Context, symbol string) (domain.Market, error) {
	if err := c.loadMarkets(ctx); err != nil {
		return domain.Market{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.markets[symbol]
	if !ok {
		return domain.Market{}, fmt.Errorf("%w: unknown market %s", domain.ErrBadRequest, symbol)
	}
	return m, nil
}

// marketByID resolves an exchange market id like "3/1".
func (c *Client) marketByID(id string) (domain.Market, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.marketsByID[id]
	return m, ok
}
