package domain

import (
	"context"
	"time"
)

// JournalEntry records one order operation the adapter performed against the
// exchange, for audit and reconciliation.
type JournalEntry struct {
	ID        string // journal entry id, assigned by the store caller
	OrderID   string // exchange order uuid (empty when the call failed)
	Symbol    string
	Action    string // "create", "edit", "cancel"
	Kind      OrderKind
	Side      OrderSide
	Status    OrderStatus
	Price     *float64
	Amount    *float64
	CreatedAt time.Time
}

// OrderJournal persists order operations.
type OrderJournal interface {
	Append(ctx context.Context, e JournalEntry) error
	ListByOrder(ctx context.Context, orderID string) ([]JournalEntry, error)
	ListSince(ctx context.Context, since time.Time) ([]JournalEntry, error)
}
