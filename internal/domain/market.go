package domain

import "github.com/shopspring/decimal"

// Market is a synthesized spot market pairing one catalog asset against the
// fixed AUD quote. The exchange has no native market list; a market exists for
// a base asset exactly when that asset appears in the AUD live-rate snapshot
// and has a catalog entry.
type Market struct {
	ID      string // "{baseID}/{quoteID}", e.g. "3/1"
	Symbol  string // "{BASE}/{QUOTE}", e.g. "BTC/AUD"
	Base    string
	Quote   string
	BaseID  string
	QuoteID string
	Active  bool

	// AmountPrecision and PricePrecision are tick sizes, not digit counts.
	AmountPrecision decimal.Decimal
	PricePrecision  decimal.Decimal

	MinAmount float64
}

// FormatAmount truncates an amount to the market's amount tick size and
// returns its canonical string form.
func (m Market) FormatAmount(amount float64) string {
	return toTick(amount, m.AmountPrecision, true)
}

// FormatPrice rounds a price to the market's price tick size.
func (m Market) FormatPrice(price float64) string {
	return toTick(price, m.PricePrecision, false)
}

// FormatCost rounds a quote-denominated cost to the price tick size, which is
// the precision the exchange applies to cost figures.
func (m Market) FormatCost(cost float64) string {
	return toTick(cost, m.PricePrecision, false)
}

// toTick snaps value to a multiple of tick. Amounts truncate toward zero so an
// order never exceeds what the caller asked for; prices and costs round half
// up. A zero or negative tick leaves the value untouched.
func toTick(value float64, tick decimal.Decimal, truncate bool) string {
	v := decimal.NewFromFloat(value)
	if tick.Sign() <= 0 {
		return v.String()
	}
	steps := v.Div(tick)
	if truncate {
		steps = steps.Truncate(0)
	} else {
		steps = steps.Round(0)
	}
	return steps.Mul(tick).String()
}
