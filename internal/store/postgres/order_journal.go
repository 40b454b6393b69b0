package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ozquant/swyftxgo/internal/domain"
)

// OrderJournal implements domain.OrderJournal using PostgreSQL. Every order
// operation the adapter performs is appended here for later reconciliation
// against exchange history.
type OrderJournal struct {
	pool *pgxpool.Pool
}

// NewOrderJournal creates a new OrderJournal backed by the given pool.
func NewOrderJournal(pool *pgxpool.Pool) *OrderJournal {
	return &OrderJournal{pool: pool}
}

const journalCols = `id, order_id, symbol, action, kind, side, status, price, amount, created_at`

// Append inserts one journal entry.
func (j *OrderJournal) Append(ctx context.Context, e domain.JournalEntry) error {
	const query = `
		INSERT INTO order_journal (
			id, order_id, symbol, action, kind, side, status, price, amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := j.pool.Exec(ctx, query,
		e.ID, e.OrderID, e.Symbol, e.Action,
		string(e.Kind), string(e.Side), string(e.Status),
		e.Price, e.Amount, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: append journal entry %s: %w", e.ID, err)
	}
	return nil
}

func scanJournalRows(rows pgx.Rows) ([]domain.JournalEntry, error) {
	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		var kind, side, status string
		err := rows.Scan(
			&e.ID, &e.OrderID, &e.Symbol, &e.Action,
			&kind, &side, &status,
			&e.Price, &e.Amount, &e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		e.Kind = domain.OrderKind(kind)
		e.Side = domain.OrderSide(side)
		e.Status = domain.OrderStatus(status)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListByOrder returns the journal entries for one exchange order, oldest
// first.
func (j *OrderJournal) ListByOrder(ctx context.Context, orderID string) ([]domain.JournalEntry, error) {
	rows, err := j.pool.Query(ctx,
		`SELECT `+journalCols+` FROM order_journal
		 WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list journal by order %s: %w", orderID, err)
	}
	defer rows.Close()

	entries, err := scanJournalRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan journal by order %s: %w", orderID, err)
	}
	return entries, nil
}

// ListSince returns all journal entries created at or after the given time,
// newest first.
func (j *OrderJournal) ListSince(ctx context.Context, since time.Time) ([]domain.JournalEntry, error) {
	rows, err := j.pool.Query(ctx,
		`SELECT `+journalCols+` FROM order_journal
		 WHERE created_at >= $1 ORDER BY created_at DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("postgres: list journal since %s: %w", since, err)
	}
	defer rows.Close()

	entries, err := scanJournalRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan journal since %s: %w", since, err)
	}
	return entries, nil
}

// Compile-time interface check.
var _ domain.OrderJournal = (*OrderJournal)(nil)
