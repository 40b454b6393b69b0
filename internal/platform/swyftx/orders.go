package swyftx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ozquant/swyftxgo/internal/domain"
)

// CreateOrder translates a unified order request into the exchange's
// primary/secondary/quantity/trigger representation and submits it.
//
// The default denomination is base-asset terms. A limit buy is placed in
// quote-asset terms instead: primary and secondary swap, the trigger carries
// the precision-rounded price, and the quantity becomes amount*price rounded
// to cost precision. A limit sell keeps the base-denominated quantity but
// expresses its trigger as the inverse rate 1/price, converted to a plain
// numeric string with no rounding.
//
// Caller-supplied extra params are merged into the exchange payload and win on
// key collision.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest, extra map[string]any) (domain.Order, error) {
	orderType := domain.SelectOrderType(req.Kind, req.Side)
	if orderType == domain.OrderTypeUnknown {
		return domain.Order{}, fmt.Errorf("%w: unsupported order type %q", domain.ErrInvalidOrder, req.Kind)
	}
	if req.Kind == domain.OrderKindLimit && req.Price == nil {
		return domain.Order{}, fmt.Errorf("%w: limit orders require a price", domain.ErrInvalidOrder)
	}

	market, err := c.market(ctx, req.Symbol)
	if err != nil {
		return domain.Order{}, err
	}

	primary := market.Base
	secondary := market.Quote
	quantity := market.FormatAmount(req.Amount)
	assetQuantity := market.Base
	trigger := ""

	if req.Kind == domain.OrderKindLimit && req.Price != nil {
		price := *req.Price
		if req.Side == domain.OrderSideBuy {
			// Quote-asset terms: the exchange wants the order expressed as
			// "spend this much AUD", so the pair flips and the quantity
			// becomes the cost.
			trigger = market.FormatPrice(price)
			primary = market.Quote
			secondary = market.Base
			quantity = market.FormatCost(req.Amount * price)
			assetQuantity = market.Quote
		} else {
			// The limit-sell trigger is an inverse rate.
			trigger = strconv.FormatFloat(1/price, 'f', -1, 64)
			quantity = market.FormatAmount(req.Amount)
			assetQuantity = market.Base
		}
	}

	params := map[string]any{
		"primary":       primary,
		"secondary":     secondary,
		"quantity":      quantity,
		"assetQuantity": assetQuantity,
		"orderType":     orderTypeCode(orderType),
	}
	if trigger != "" {
		params["trigger"] = trigger
	}
	for k, v := range extra {
		params[k] = v
	}

	body, err := c.request(ctx, "orders", scopePrivate, http.MethodPost, params)
	if err != nil {
		return domain.Order{}, err
	}

	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Order{}, fmt.Errorf("swyftx: decode create order response: %w", err)
	}

	merged := map[string]any{}
	if order, ok := resp["order"].(map[string]any); ok {
		for k, v := range order {
			merged[k] = v
		}
	}
	merged["orderUuid"] = stringOf(resp, "orderUuid")

	return c.parseOrder(merged, &market), nil
}

// EditOrder updates a resting limit order's trigger and/or quantity.
//
// Only limit orders are editable. The edit path cannot express the quote-
// denomination flip that CreateOrder applies to limit buys: an amount edit is
// always base-denominated. The exchange's own edit response is not
// self-sufficient, so a successful edit re-fetches the order by its returned
// id to produce a normalized view.
func (c *Client) EditOrder(ctx context.Context, id, symbol string, kind domain.OrderKind, amount, price *float64, extra map[string]any) (domain.Order, error) {
	if kind != domain.OrderKindLimit {
		return domain.Order{}, fmt.Errorf("%w: only limit orders can be edited", domain.ErrNotSupported)
	}
	if price == nil && amount == nil {
		return domain.Order{}, fmt.Errorf("%w: edit requires price and/or amount", domain.ErrInvalidOrder)
	}

	market, err := c.market(ctx, symbol)
	if err != nil {
		return domain.Order{}, err
	}

	params := map[string]any{"orderUuid": id}
	if price != nil {
		params["trigger"] = market.FormatPrice(*price)
	}
	if amount != nil {
		params["quantity"] = market.FormatAmount(*amount)
		params["assetQuantity"] = market.Base
	}
	for k, v := range extra {
		params[k] = v
	}

	body, err := c.request(ctx, "orders/{orderUuid}", scopePrivate, http.MethodPut, params)
	if err != nil {
		return domain.Order{}, err
	}

	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Order{}, fmt.Errorf("swyftx: decode edit order response: %w", err)
	}

	updatedUuid := stringOf(resp, "orderUuid")
	if updatedUuid == "" {
		return domain.Order{}, fmt.Errorf("%w: failed to update order %s: %s", domain.ErrExchange, id, string(body))
	}

	return c.FetchOrder(ctx, updatedUuid)
}

// CancelOrder deletes an order by id. The exchange's delete response carries
// no order snapshot, so the returned unified order has only the id, a
// canceled status, and the symbol populated; every other field stays nil.
func (c *Client) CancelOrder(ctx context.Context, id, symbol string) (domain.Order, error) {
	body, err := c.request(ctx, "orders/"+id+"/", scopePrivate, http.MethodDelete, map[string]any{
		"orderUuid": id,
	})
	if err != nil {
		return domain.Order{}, err
	}

	var resp map[string]any
	_ = json.Unmarshal(body, &resp)

	return domain.Order{
		ID:     id,
		Symbol: symbol,
		Status: domain.OrderStatusCanceled,
		Info:   resp,
	}, nil
}

// FetchOrder retrieves one order by its uuid.
func (c *Client) FetchOrder(ctx context.Context, id string) (domain.Order, error) {
	if err := c.loadMarkets(ctx); err != nil {
		return domain.Order{}, err
	}

	body, err := c.request(ctx, "orders/byId/"+id, scopePrivate, http.MethodGet, nil)
	if err != nil {
		return domain.Order{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Order{}, fmt.Errorf("swyftx: decode order: %w", err)
	}

	return c.parseOrder(raw, nil), nil
}

// FetchOrders lists orders, optionally restricted to one symbol's base asset.
// limit <= 0 means no limit. Extra params pass straight through to the query.
func (c *Client) FetchOrders(ctx context.Context, symbol string, limit int, extra map[string]any) ([]domain.Order, error) {
	if err := c.loadMarkets(ctx); err != nil {
		return nil, err
	}

	path := "orders/"
	var market *domain.Market
	if symbol != "" {
		m, err := c.market(ctx, symbol)
		if err != nil {
			return nil, err
		}
		market = &m
		path += m.Base + "/"
	}

	params := map[string]any{}
	if limit > 0 {
		params["limit"] = limit
	}
	for k, v := range extra {
		params[k] = v
	}

	body, err := c.request(ctx, path, scopePrivate, http.MethodGet, params)
	if err != nil {
		return nil, err
	}

	var raws []map[string]any
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("swyftx: decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, c.parseOrder(raw, market))
	}
	return orders, nil
}

// FetchOpenOrders lists orders still resting on the book.
func (c *Client) FetchOpenOrders(ctx context.Context, symbol string, limit int) ([]domain.Order, error) {
	orders, err := c.FetchOrders(ctx, symbol, limit, nil)
	if err != nil {
		return nil, err
	}
	open := orders[:0]
	for _, o := range orders {
		if o.Status == domain.OrderStatusOpen {
			open = append(open, o)
		}
	}
	return open, nil
}

// FetchClosedOrders lists orders that reached a terminal state.
func (c *Client) FetchClosedOrders(ctx context.Context, symbol string, limit int) ([]domain.Order, error) {
	orders, err := c.FetchOrders(ctx, symbol, limit, nil)
	if err != nil {
		return nil, err
	}
	closed := orders[:0]
	for _, o := range orders {
		switch o.Status {
		case domain.OrderStatusClosed, domain.OrderStatusCanceled, domain.OrderStatusFailed:
			closed = append(closed, o)
		}
	}
	return closed, nil
}

// FetchBalance retrieves per-currency available funds. Codes resolve through
// the asset catalog first, then through the synthetic market id as a
// fallback, and degrade to the raw asset id when neither knows it.
func (c *Client) FetchBalance(ctx context.Context) (domain.Balances, error) {
	if err := c.ensureAssetsLoaded(ctx); err != nil {
		return nil, err
	}

	body, err := c.request(ctx, "user/balance/", scopePrivate, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}

	var raw []apiBalance
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("swyftx: decode balance: %w", err)
	}

	c.mu.RLock()
	byID := c.assetsByID
	c.mu.RUnlock()

	result := make(domain.Balances, len(raw))
	for _, b := range raw {
		assetID := b.AssetID.String()
		code := assetID
		if asset, ok := byID[assetID]; ok {
			code = asset.Code
		} else if m, ok := c.marketByID(assetID + "/" + audAssetID); ok {
			code = m.Base
		}
		available := numToFloat(b.AvailableBalance)
		result[code] = domain.Balance{Free: available, Total: available}
	}
	return result, nil
}

// parseOrder converts a raw exchange order payload into the unified shape.
// When market is nil the symbol is reconstructed from the payload's asset ids
// against the fixed quote; the primary/secondary assignment flips per order
// side, so both orientations are tried.
func (c *Client) parseOrder(raw map[string]any, market *domain.Market) domain.Order {
	order := domain.Order{
		ID:   stringOf(raw, "orderUuid"),
		Info: raw,
	}
	if order.ID == "" {
		order.ID = stringOf(raw, "uuid")
	}

	typeCode := stringOf(raw, "order_type")
	if typeCode == "" {
		typeCode = stringOf(raw, "orderType")
	}
	order.Kind, order.Side = kindSide(orderTypeFromCode(typeCode))
	order.Status = orderStatusFromCode(stringOf(raw, "status"))

	order.Price = floatPtr(raw, "trigger")
	order.Amount = floatPtr(raw, "quantity")
	order.Filled = floatPtr(raw, "amount")

	if ms := floatPtr(raw, "created_time"); ms != nil {
		t := time.UnixMilli(int64(*ms)).UTC()
		order.Timestamp = &t
	}

	if market != nil {
		order.Symbol = market.Symbol
	} else {
		primary := stringOf(raw, "primary_asset")
		secondary := stringOf(raw, "secondary_asset")
		if m, ok := c.marketByID(primary + "/" + audAssetID); ok {
			order.Symbol = m.Symbol
		} else if m, ok := c.marketByID(secondary + "/" + audAssetID); ok {
			order.Symbol = m.Symbol
		}
	}

	return order
}
