package swyftx

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ozquant/swyftxgo/internal/domain"
)

// ---------------------------------------------------------------------------
// Wire types. Swyftx mixes snake_case catalog fields with camelCase rate and
// order fields, and reports numbers variously as strings and as literals, so
// every numeric field decodes through json.Number.
// ---------------------------------------------------------------------------

// apiAsset is one entry of the markets/assets/ catalog response.
type apiAsset struct {
	ID                    json.Number `json:"id"`
	Code                  string      `json:"code"`
	Name                  string      `json:"name"`
	PriceScale            *int        `json:"price_scale"`
	MinimumOrder          json.Number `json:"minimum_order"`
	MinimumOrderIncrement json.Number `json:"minimum_order_increment"`
	MiningFee             json.Number `json:"mining_fee"`
	MinWithdrawal         json.Number `json:"min_withdrawal"`
	DepositEnabled        *bool       `json:"deposit_enabled"`
	WithdrawEnabled       *bool       `json:"withdraw_enabled"`
}

// toDomainAsset converts the wire asset to the domain snapshot.
// defaultScale fills in price_scale when the catalog omits it.
func (a apiAsset) toDomainAsset(defaultScale int) domain.Asset {
	return domain.Asset{
		ID:                    a.ID.String(),
		Code:                  a.Code,
		Name:                  a.Name,
		PriceScale:            intOr(a.PriceScale, defaultScale),
		MinimumOrder:          numToFloat(a.MinimumOrder),
		MinimumOrderIncrement: numToFloat(a.MinimumOrderIncrement),
		MiningFee:             numToFloat(a.MiningFee),
		MinWithdrawal:         numToFloat(a.MinWithdrawal),
		DepositEnabled:        boolOr(a.DepositEnabled, true),
		WithdrawEnabled:       boolOr(a.WithdrawEnabled, true),
	}
}

// apiLiveRate is one entry of the live-rates/{assetId}/ snapshot, keyed by
// base asset id against the fixed quote.
type apiLiveRate struct {
	MidPrice          json.Number `json:"midPrice"`
	AskPrice          json.Number `json:"askPrice"`
	BidPrice          json.Number `json:"bidPrice"`
	DailyPriceChange  json.Number `json:"dailyPriceChange"`
	BuyLiquidityFlag  bool        `json:"buyLiquidityFlag"`
	SellLiquidityFlag bool        `json:"sellLiquidityFlag"`
}

// apiBalance is one entry of the user/balance/ response.
type apiBalance struct {
	AssetID          json.Number `json:"assetId"`
	AvailableBalance json.Number `json:"availableBalance"`
}

// apiCandle is one bar of the charts getBars response.
type apiCandle struct {
	Time   int64       `json:"time"`
	Open   json.Number `json:"open"`
	High   json.Number `json:"high"`
	Low    json.Number `json:"low"`
	Close  json.Number `json:"close"`
	Volume json.Number `json:"volume"`
}

// toDomainCandle passes the bar through one-to-one; whatever bar boundaries
// the exchange returns are preserved.
func (c apiCandle) toDomainCandle() domain.Candle {
	return domain.Candle{
		Time:   c.Time,
		Open:   numToFloat(c.Open),
		High:   numToFloat(c.High),
		Low:    numToFloat(c.Low),
		Close:  numToFloat(c.Close),
		Volume: numToFloat(c.Volume),
	}
}

// orderTypeCode maps the order type enum onto the exchange's wire codes. The
// numeric strings appear nowhere else in the adapter.
func orderTypeCode(t domain.OrderType) string {
	switch t {
	case domain.OrderTypeLimitBuy:
		return "1"
	case domain.OrderTypeLimitSell:
		return "2"
	case domain.OrderTypeMarketBuy:
		return "3"
	case domain.OrderTypeMarketSell:
		return "4"
	}
	return ""
}

// orderTypeFromCode is the inverse mapping, used when parsing order payloads.
func orderTypeFromCode(code string) domain.OrderType {
	switch code {
	case "1":
		return domain.OrderTypeLimitBuy
	case "2":
		return domain.OrderTypeLimitSell
	case "3":
		return domain.OrderTypeMarketBuy
	case "4":
		return domain.OrderTypeMarketSell
	}
	return domain.OrderTypeUnknown
}

// kindSide splits an order type back into the unified kind and side.
func kindSide(t domain.OrderType) (domain.OrderKind, domain.OrderSide) {
	switch t {
	case domain.OrderTypeLimitBuy:
		return domain.OrderKindLimit, domain.OrderSideBuy
	case domain.OrderTypeLimitSell:
		return domain.OrderKindLimit, domain.OrderSideSell
	case domain.OrderTypeMarketBuy:
		return domain.OrderKindMarket, domain.OrderSideBuy
	case domain.OrderTypeMarketSell:
		return domain.OrderKindMarket, domain.OrderSideSell
	}
	return "", ""
}

// orderStatusFromCode maps the exchange's numeric order status onto the
// unified lifecycle.
func orderStatusFromCode(code string) domain.OrderStatus {
	switch code {
	case "1", "2":
		return domain.OrderStatusOpen
	case "3":
		return domain.OrderStatusClosed
	case "4":
		return domain.OrderStatusCanceled
	case "5", "6":
		return domain.OrderStatusFailed
	}
	return ""
}

// ---------------------------------------------------------------------------
// decode helpers
// ---------------------------------------------------------------------------

func numToFloat(n json.Number) float64 {
	f, err := n.Float64()
	if err != nil {
		return 0
	}
	return f
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// tickFromScale converts a decimal-digit scale into a tick size, e.g. 2 into
// 0.01.
func tickFromScale(scale int) decimal.Decimal {
	return decimal.New(1, int32(-scale))
}

// floatPtr extracts a numeric field from a raw payload as a pointer, leaving
// nil when the field is absent or unreadable.
func floatPtr(m map[string]any, key string) *float64 {
	switch v := m[key].(type) {
	case float64:
		return &v
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		return &f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// stringOf renders a raw payload field as a string, tolerating numeric ids.
func stringOf(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
