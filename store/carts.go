package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

type Carts struct {
	db *bun.DB
}

func NewCarts(db *bun.DB) *Carts {
	return &Carts{db: db}
}

func (r *Carts) ForCustomer(ctx context.Context, customerID int64) ([]CartItem, error) {
	var items []CartItem
	err := r.db.NewSelect().
		Model(&items).
		Where("customer_id = ?", customerID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert adds quantity to an existing customer cart line or creates it.
func (r *Carts) Upsert(ctx context.Context, item *CartItem) error {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := r.db.NewInsert().
		Model(item).
		On("CONFLICT (customer_id, product_id) DO UPDATE").
		Set("quantity = cart_item.quantity + EXCLUDED.quantity").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// MergeAnonymous moves session-keyed cart lines onto the customer account,
// summing quantities for products already in the customer cart.
func (r *Carts) MergeAnonymous(ctx context.Context, sessionID string, customerID int64) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cart_items (customer_id, product_id, quantity, created_at, updated_at)
			SELECT ?, product_id, quantity, created_at, now()
			FROM cart_items
			WHERE session_id = ?
			ON CONFLICT (customer_id, product_id) DO UPDATE
			SET quantity = cart_items.quantity + EXCLUDED.quantity,
			    updated_at = EXCLUDED.updated_at
		`, customerID, sessionID)
		if err != nil {
			return err
		}
		_, err = tx.NewDelete().
			Model((*CartItem)(nil)).
			Where("session_id = ?", sessionID).
			Exec(ctx)
		return err
	})
}
