package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so the ledger runs
// inside the order-creation and cancellation transactions.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// reserveStock is the inventory ledger's decrement: a single conditional
// update, so two concurrent orders can never jointly drive the quantity
// negative. Zero rows affected means either insufficient stock or an unknown
// product; the follow-up read tells them apart.
func reserveStock(ctx context.Context, db dbtx, productID string, qty int) error {
	ct, err := db.Exec(ctx, `
		UPDATE products
		SET available_quantity = available_quantity - $2, updated_at = now()
		WHERE id = $1 AND available_quantity >= $2`, productID, qty)
	if err != nil {
		return internal("reserve stock", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var available int
	err = db.QueryRow(ctx, `SELECT available_quantity FROM products WHERE id=$1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("product")
	}
	if err != nil {
		return internal("reserve stock", err)
	}
	return &ConflictError{Reason: ReasonInsufficientStock, Requested: qty, Available: available}
}

// restoreStock is the reverse increment. No overshoot check: callers restore
// exactly the quantity reserved for an order, and the pending-only
// cancellation guard makes that happen at most once.
func restoreStock(ctx context.Context, db dbtx, productID string, qty int) error {
	_, err := db.Exec(ctx, `
		UPDATE products
		SET available_quantity = available_quantity + $2, updated_at = now()
		WHERE id = $1`, productID, qty)
	if err != nil {
		return internal("restore stock", err)
	}
	return nil
}
