package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

type Orders struct {
	db *bun.DB
}

func NewOrders(db *bun.DB) *Orders {
	return &Orders{db: db}
}

// Create writes the order header and its item rows in one transaction and
// returns the new order id. Uniqueness violations come back as ErrDuplicate
// so callers can treat a replayed commit as already done.
func (r *Orders) Create(ctx context.Context, o *Order, items []LineItem) (int64, error) {
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(o).Exec(ctx); err != nil {
			return err
		}
		rows := make([]OrderItem, 0, len(items))
		for _, it := range items {
			rows = append(rows, OrderItem{
				OrderID:   o.ID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.Price,
				CreatedAt: now,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return o.ID, nil
}

func (r *Orders) SetPayment(ctx context.Context, orderID int64, method, notes string) error {
	q := r.db.NewUpdate().
		Model((*Order)(nil)).
		Set("payment_method = ?", method).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", orderID)
	if notes != "" {
		q = q.Set("notes = ?", notes)
	}
	_, err := q.Exec(ctx)
	return err
}

func (r *Orders) Status(ctx context.Context, orderID int64) (string, error) {
	var status string
	err := r.db.NewSelect().
		Model((*Order)(nil)).
		Column("status").
		Where("id = ?", orderID).
		Scan(ctx, &status)
	if err != nil {
		return "", notFound(err)
	}
	return status, nil
}

func (r *Orders) RecentByCustomer(ctx context.Context, customerID int64, limit int) ([]OrderSummary, error) {
	if limit <= 0 {
		limit = 5
	}
	var summaries []OrderSummary
	err := r.db.NewSelect().
		ColumnExpr("o.id, o.total, o.status, o.created_at").
		ColumnExpr("count(oi.id) AS item_count").
		TableExpr("orders AS o").
		Join("LEFT JOIN order_items AS oi ON oi.order_id = o.id").
		Where("o.customer_id = ?", customerID).
		GroupExpr("o.id").
		OrderExpr("o.created_at DESC").
		Limit(limit).
		Scan(ctx, &summaries)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}
