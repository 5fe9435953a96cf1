package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const orderCols = `id, user_id, buyer_email, buyer_name, product_id, product_name,
	product_image, product_category, unit_price_cents, quantity, total_cents,
	contact_number, delivery_address, additional_notes, payment_method, status,
	tracking, created_at, updated_at, cancelled_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.UserID, &o.BuyerEmail, &o.BuyerName, &o.ProductID,
		&o.ProductName, &o.ProductImage, &o.ProductCategory, &o.UnitPriceCents,
		&o.Quantity, &o.TotalCents, &o.ContactNumber, &o.DeliveryAddress,
		&o.AdditionalNotes, &o.PaymentMethod, &o.Status, &o.Tracking,
		&o.CreatedAt, &o.UpdatedAt, &o.CancelledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotFound("order")
	}
	if err != nil {
		return nil, internal("scan order", err)
	}
	return &o, nil
}

// trackingJSON marshals entries as a jsonb array fragment for `tracking || $n`.
// Returned as text so the ::jsonb cast applies server side.
func trackingJSON(entries ...TrackingEntry) string {
	b, _ := json.Marshal(entries)
	return string(b)
}

// Create reserves stock and inserts the order in one transaction. Either both
// happen or neither does; a failed insert never leaks a reservation.
func (r *Repo) Create(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return internal("begin create order", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := reserveStock(ctx, tx, o.ProductID, o.Quantity); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, user_id, buyer_email, buyer_name, product_id,
			product_name, product_image, product_category, unit_price_cents,
			quantity, total_cents, contact_number, delivery_address,
			additional_notes, payment_method, status, tracking, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17::jsonb,$18,$19)`,
		o.ID, o.UserID, o.BuyerEmail, o.BuyerName, o.ProductID,
		o.ProductName, o.ProductImage, o.ProductCategory, o.UnitPriceCents,
		o.Quantity, o.TotalCents, o.ContactNumber, o.DeliveryAddress,
		o.AdditionalNotes, o.PaymentMethod, o.Status, trackingJSON(o.Tracking...),
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return internal("insert order", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return internal("commit create order", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id)
	return scanOrder(row)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, internal("list orders", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, internal("list orders", err)
	}
	return out, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders
		WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repo) ListByEmail(ctx context.Context, email string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders
		WHERE buyer_email=$1 ORDER BY created_at DESC`, email)
}

// ListPending feeds the manager queue of orders awaiting approval.
func (r *Repo) ListPending(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderCols+` FROM orders
		WHERE status=$1 ORDER BY created_at DESC`, StatusPending)
}

// ListInProgress returns orders in active fulfillment, most recently touched
// first.
func (r *Repo) ListInProgress(ctx context.Context) ([]Order, error) {
	statuses := make([]string, len(InProgressStatuses))
	for i, s := range InProgressStatuses {
		statuses[i] = string(s)
	}
	return r.list(ctx, `SELECT `+orderCols+` FROM orders
		WHERE status = ANY($1) ORDER BY updated_at DESC`, statuses)
}

// escapeLike neutralizes LIKE metacharacters in a user-supplied search term so
// a literal "%" or "_" matches itself instead of acting as a wildcard.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

// List applies the admin filter: optional status, case-insensitive substring
// search across product name, buyer name and buyer email, newest first, with
// page/limit pagination. Returns the page plus the unpaginated total.
func (r *Repo) List(ctx context.Context, f ListFilter) ([]Order, int, error) {
	f = f.normalized()

	where := ""
	args := []any{}
	n := 0
	if f.Status != "" && f.Status != "all" {
		n++
		where = fmt.Sprintf(" WHERE status=$%d", n)
		args = append(args, f.Status)
	}
	if f.Search != "" {
		n++
		clause := fmt.Sprintf("(product_name ILIKE $%d OR buyer_name ILIKE $%d OR buyer_email ILIKE $%d)", n, n, n)
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, "%"+escapeLike(f.Search)+"%")
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, internal("count orders", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderCols, where, n+1, n+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	out, err := r.list(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateStatus moves an order from `from` to `to` and appends the tracking
// entry in one statement. The status predicate makes the transition safe
// against a concurrent writer that already moved the order elsewhere.
func (r *Repo) UpdateStatus(ctx context.Context, id string, from, to Status, entry TrackingEntry) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET status=$3, updated_at=$4, tracking = tracking || $5::jsonb
		WHERE id=$1 AND status=$2`,
		id, from, to, entry.Date, trackingJSON(entry))
	if err != nil {
		return internal("update status", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// Either the order vanished or its status moved under us.
	var current Status
	err = r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return NotFound("order")
	}
	if err != nil {
		return internal("update status", err)
	}
	return &ConflictError{Reason: ReasonInvalidTransition}
}

// AppendTracking records a fulfillment annotation without touching the
// order's status.
func (r *Repo) AppendTracking(ctx context.Context, id string, entry TrackingEntry) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET updated_at=$2, tracking = tracking || $3::jsonb
		WHERE id=$1`,
		id, entry.Date, trackingJSON(entry))
	if err != nil {
		return internal("append tracking", err)
	}
	if ct.RowsAffected() == 0 {
		return NotFound("order")
	}
	return nil
}

// Cancel flips a pending order to cancelled and restores its reserved
// quantity, all in one transaction. The row lock on the order closes the
// double-cancel race.
func (r *Repo) Cancel(ctx context.Context, id string, entry TrackingEntry, now time.Time) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, internal("begin cancel", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1 FOR UPDATE`, id)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, &ConflictError{Reason: ReasonNotCancellable}
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status=$2, cancelled_at=$3, updated_at=$3, tracking = tracking || $4::jsonb
		WHERE id=$1`,
		id, StatusCancelled, now, trackingJSON(entry))
	if err != nil {
		return nil, internal("cancel order", err)
	}

	if err := restoreStock(ctx, tx, o.ProductID, o.Quantity); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, internal("commit cancel", err)
	}

	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.Tracking = append(o.Tracking, entry)
	return o, nil
}
