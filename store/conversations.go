package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Conversations struct {
	db *bun.DB
}

func NewConversations(db *bun.DB) *Conversations {
	return &Conversations{db: db}
}

func (r *Conversations) BySession(ctx context.Context, sessionID string) (*Conversation, error) {
	conv := new(Conversation)
	err := r.db.NewSelect().
		Model(conv).
		Where("session_id = ?", sessionID).
		Order("id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return conv, nil
}

func (r *Conversations) Create(ctx context.Context, sessionID string) (*Conversation, error) {
	now := time.Now()
	conv := &Conversation{
		SessionID: sessionID,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.db.NewInsert().Model(conv).Exec(ctx); err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *Conversations) BindCustomer(ctx context.Context, conversationID, customerID int64) error {
	_, err := r.db.NewUpdate().
		Model((*Conversation)(nil)).
		Set("customer_id = ?", customerID).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", conversationID).
		Exec(ctx)
	return err
}

func (r *Conversations) Touch(ctx context.Context, conversationID int64) error {
	_, err := r.db.NewUpdate().
		Model((*Conversation)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", conversationID).
		Exec(ctx)
	return err
}
