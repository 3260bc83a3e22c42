package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates every table this service owns. Safe to run on every
// boot.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*Customer)(nil),
		(*Product)(nil),
		(*Conversation)(nil),
		(*Message)(nil),
		(*PendingOrder)(nil),
		(*Order)(nil),
		(*OrderItem)(nil),
		(*CartItem)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("store: create table for %T: %w", m, err)
		}
	}
	return nil
}
