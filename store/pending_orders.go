package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

type PendingOrders struct {
	db *bun.DB
}

func NewPendingOrders(db *bun.DB) *PendingOrders {
	return &PendingOrders{db: db}
}

// Replace swaps the pending order for a conversation in one transaction so
// the unique constraint on conversation_id can never see two rows.
func (r *PendingOrders) Replace(ctx context.Context, po *PendingOrder) error {
	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PendingOrder)(nil)).
			Where("conversation_id = ?", po.ConversationID).
			Exec(ctx); err != nil {
			return err
		}
		if po.CreatedAt.IsZero() {
			po.CreatedAt = time.Now()
		}
		_, err := tx.NewInsert().Model(po).Exec(ctx)
		return err
	})
}

func (r *PendingOrders) ByConversation(ctx context.Context, conversationID int64) (*PendingOrder, error) {
	po := new(PendingOrder)
	err := r.db.NewSelect().
		Model(po).
		Where("conversation_id = ?", conversationID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return po, nil
}

func (r *PendingOrders) Delete(ctx context.Context, conversationID int64) error {
	_, err := r.db.NewDelete().
		Model((*PendingOrder)(nil)).
		Where("conversation_id = ?", conversationID).
		Exec(ctx)
	return err
}
