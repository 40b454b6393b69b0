package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func testMarket(amountTick, priceTick string) Market {
	return Market{
		Symbol:          "BTC/AUD",
		AmountPrecision: decimal.RequireFromString(amountTick),
		PricePrecision:  decimal.RequireFromString(priceTick),
	}
}

func TestFormatAmount_TruncatesTowardZero(t *testing.T) {
	m := testMarket("0.0001", "0.01")

	tests := []struct {
		in   float64
		want string
	}{
		{0.01, "0.01"},
		{0.00019, "0.0001"},
		{0.00012345, "0.0001"},
		{1.23456, "1.2345"},
		{0.00009, "0"},
	}
	for _, tt := range tests {
		if got := m.FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPrice_RoundsHalfUp(t *testing.T) {
	m := testMarket("0.0001", "0.01")

	tests := []struct {
		in   float64
		want string
	}{
		{50000, "50000"},
		{1.005, "1.01"},
		{1.004, "1"},
		{1.006, "1.01"},
		{0.009, "0.01"},
	}
	for _, tt := range tests {
		if got := m.FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCost_UsesPriceTick(t *testing.T) {
	m := testMarket("0.0001", "0.01")

	if got := m.FormatCost(0.01 * 50000); got != "500" {
		t.Errorf("FormatCost(0.01*50000) = %q, want %q", got, "500")
	}
	if got := m.FormatCost(123.456); got != "123.46" {
		t.Errorf("FormatCost(123.456) = %q, want %q", got, "123.46")
	}
}

func TestFormat_ZeroTickPassesThrough(t *testing.T) {
	m := Market{Symbol: "X/AUD"}

	if got := m.FormatAmount(0.123456789); got != "0.123456789" {
		t.Errorf("FormatAmount = %q, want the value untouched", got)
	}
	if got := m.FormatPrice(42.5); got != "42.5" {
		t.Errorf("FormatPrice = %q, want the value untouched", got)
	}
}
