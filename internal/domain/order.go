package domain

import "time"

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderKind is the unified order type.
type OrderKind string

const (
	OrderKindMarket OrderKind = "market"
	OrderKindLimit  OrderKind = "limit"
)

// OrderType is the combination of side and kind the exchange encodes in a
// single field. The numeric wire codes are applied only when a request is
// serialized.
type OrderType int

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeLimitBuy
	OrderTypeLimitSell
	OrderTypeMarketBuy
	OrderTypeMarketSell
)

// SelectOrderType maps a unified (kind, side) pair onto the exchange's order
// type. It returns OrderTypeUnknown for kinds the exchange does not offer.
func SelectOrderType(kind OrderKind, side OrderSide) OrderType {
	switch kind {
	case OrderKindMarket:
		if side == OrderSideBuy {
			return OrderTypeMarketBuy
		}
		return OrderTypeMarketSell
	case OrderKindLimit:
		if side == OrderSideBuy {
			return OrderTypeLimitBuy
		}
		return OrderTypeLimitSell
	}
	return OrderTypeUnknown
}

// OrderStatus tracks the unified order lifecycle.
type OrderStatus string

const (
	OrderStatusOpen     OrderStatus = "open"
	OrderStatusClosed   OrderStatus = "closed"
	OrderStatusCanceled OrderStatus = "canceled"
	OrderStatusFailed   OrderStatus = "failed"
)

// OrderRequest is the unified create-order request.
type OrderRequest struct {
	Symbol string
	Kind   OrderKind
	Side   OrderSide
	Amount float64
	// Price is nil for market orders.
	Price *float64
}

// Order is the unified order shape. Numeric fields are pointers because the
// exchange omits most of them in several responses; a nil field means the
// upstream payload carried no such value, and it must stay nil rather than be
// backfilled with an invented number.
type Order struct {
	ID        string
	Symbol    string
	Kind      OrderKind
	Side      OrderSide
	Status    OrderStatus
	Price     *float64
	Amount    *float64
	Filled    *float64
	Remaining *float64
	Timestamp *time.Time
	// Info preserves the raw exchange payload for diagnostics.
	Info map[string]any
}
