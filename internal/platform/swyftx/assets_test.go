package swyftx

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/ozquant/swyftxgo/internal/domain"
)

func TestFetchMarkets_Synthesis(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()

	markets, err := client.FetchMarkets(context.Background())
	if err != nil {
		t.Fatalf("FetchMarkets: %v", err)
	}

	// Asset 1 is the quote and asset 77 has no catalog entry; neither may
	// produce a market.
	if len(markets) != 2 {
		t.Fatalf("markets = %d, want 2", len(markets))
	}

	bySymbol := map[string]domain.Market{}
	for _, m := range markets {
		bySymbol[m.Symbol] = m
	}

	btc, ok := bySymbol["BTC/AUD"]
	if !ok {
		t.Fatal("missing BTC/AUD market")
	}
	if btc.ID != "3/1" || btc.BaseID != "3" || btc.QuoteID != "1" {
		t.Errorf("BTC ids = %s %s %s, want 3/1 3 1", btc.ID, btc.BaseID, btc.QuoteID)
	}
	if !btc.Active {
		t.Error("BTC/AUD must be active")
	}
	if got := btc.AmountPrecision.String(); got != "0.0001" {
		t.Errorf("BTC amount tick = %s, want 0.0001 from minimum_order_increment", got)
	}
	if got := btc.PricePrecision.String(); got != "0.01" {
		t.Errorf("BTC price tick = %s, want 0.01 from the quote's price_scale", got)
	}
	if btc.MinAmount != 0.0003 {
		t.Errorf("BTC min amount = %v, want 0.0003", btc.MinAmount)
	}

	eth, ok := bySymbol["ETH/AUD"]
	if !ok {
		t.Fatal("missing ETH/AUD market")
	}
	// Buy liquidity flag set and withdrawals disabled.
	if eth.Active {
		t.Error("ETH/AUD must be inactive")
	}
	// No minimum_order_increment, so the tick derives from price_scale.
	if got := eth.AmountPrecision.String(); got != "0.00000001" {
		t.Errorf("ETH amount tick = %s, want 0.00000001", got)
	}
}

func TestFetchMarkets_MissingQuoteAsset(t *testing.T) {
	fake := newFakeExchange(t)
	fake.catalog = `[{"id":3,"code":"BTC","name":"Bitcoin","price_scale":8}]`
	client := fake.client()

	_, err := client.FetchMarkets(context.Background())
	if !errors.Is(err, domain.ErrExchange) {
		t.Fatalf("error = %v, want ErrExchange when the quote asset is absent", err)
	}
}

func TestFetchMarkets_QuotePriceScaleDefaults(t *testing.T) {
	t.Run("missing price_scale falls back to 6", func(t *testing.T) {
		fake := newFakeExchange(t)
		fake.catalog = `[
		  {"id":1,"code":"AUD","name":"Australian Dollar"},
		  {"id":3,"code":"BTC","name":"Bitcoin","price_scale":8,"deposit_enabled":true,"withdraw_enabled":true}
		]`
		client := fake.client()

		markets, err := client.FetchMarkets(context.Background())
		if err != nil {
			t.Fatalf("FetchMarkets: %v", err)
		}
		for _, m := range markets {
			if m.Symbol != "BTC/AUD" {
				continue
			}
			if got := m.PricePrecision.String(); got != "0.000001" {
				t.Errorf("price tick = %s, want 0.000001 from the quote default", got)
			}
			return
		}
		t.Fatal("missing BTC/AUD market")
	})

	t.Run("explicit price_scale 0 is honored", func(t *testing.T) {
		fake := newFakeExchange(t)
		fake.catalog = `[
		  {"id":1,"code":"AUD","name":"Australian Dollar","price_scale":0},
		  {"id":3,"code":"BTC","name":"Bitcoin","price_scale":8,"deposit_enabled":true,"withdraw_enabled":true}
		]`
		client := fake.client()

		markets, err := client.FetchMarkets(context.Background())
		if err != nil {
			t.Fatalf("FetchMarkets: %v", err)
		}
		for _, m := range markets {
			if m.Symbol != "BTC/AUD" {
				continue
			}
			if got := m.PricePrecision.String(); got != "1" {
				t.Errorf("price tick = %s, want 1 for an explicit zero scale", got)
			}
			return
		}
		t.Fatal("missing BTC/AUD market")
	})
}

// Both catalog indexes must describe the same asset set.
func TestAssetIndexes_Agree(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()
	ctx := context.Background()

	assets, err := client.Assets(ctx)
	if err != nil {
		t.Fatalf("Assets: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("assets = %d, want 3", len(assets))
	}

	for _, a := range assets {
		byCode, err := client.AssetByCode(ctx, a.Code)
		if err != nil {
			t.Fatalf("AssetByCode(%s): %v", a.Code, err)
		}
		byID, err := client.AssetByID(ctx, a.ID)
		if err != nil {
			t.Fatalf("AssetByID(%s): %v", a.ID, err)
		}
		if byCode.ID != a.ID || byID.Code != a.Code {
			t.Errorf("index mismatch for %s: byCode.ID=%s byID.Code=%s", a.Code, byCode.ID, byID.Code)
		}
	}
}

func TestAssetLookup_Miss(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()
	ctx := context.Background()

	if _, err := client.AssetByCode(ctx, "DOGE"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AssetByCode miss = %v, want ErrNotFound", err)
	}
	if _, err := client.AssetByID(ctx, "404"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("AssetByID miss = %v, want ErrNotFound", err)
	}
}

func TestResetAssets_ForcesRefetch(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()
	ctx := context.Background()

	if _, err := client.Assets(ctx); err != nil {
		t.Fatalf("Assets: %v", err)
	}
	if _, err := client.Assets(ctx); err != nil {
		t.Fatalf("Assets: %v", err)
	}

	fake.mu.Lock()
	before := fake.catalogCalls
	fake.mu.Unlock()
	if before != 1 {
		t.Fatalf("catalog fetches before reset = %d, want 1", before)
	}

	client.ResetAssets()
	if _, err := client.Assets(ctx); err != nil {
		t.Fatalf("Assets after reset: %v", err)
	}

	fake.mu.Lock()
	after := fake.catalogCalls
	fake.mu.Unlock()
	if after != 2 {
		t.Errorf("catalog fetches after reset = %d, want 2", after)
	}
}

func TestFetchCurrencies(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()

	currencies, err := client.FetchCurrencies(context.Background())
	if err != nil {
		t.Fatalf("FetchCurrencies: %v", err)
	}

	codes := make([]string, 0, len(currencies))
	for code := range currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	if len(codes) != 3 {
		t.Fatalf("currencies = %v, want AUD, BTC, ETH", codes)
	}

	btc := currencies["BTC"]
	if btc.ID != "3" || !btc.Active || !btc.Deposit || !btc.Withdraw {
		t.Errorf("unexpected BTC currency: %+v", btc)
	}
	if btc.Fee != 0.0005 || btc.MinAmount != 0.0003 || btc.MinWithdraw != 0.001 {
		t.Errorf("unexpected BTC limits: %+v", btc)
	}

	// Withdrawals disabled but deposits open still counts as active.
	eth := currencies["ETH"]
	if !eth.Active || eth.Withdraw {
		t.Errorf("unexpected ETH currency: %+v", eth)
	}
}

func TestMarketLookup_UnknownSymbol(t *testing.T) {
	fake := newFakeExchange(t)
	client := fake.client()

	_, err := client.market(context.Background(), "DOGE/AUD")
	if !errors.Is(err, domain.ErrBadRequest) {
		t.Fatalf("error = %v, want ErrBadRequest", err)
	}
}
