package store

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type Messages struct {
	db *bun.DB
}

func NewMessages(db *bun.DB) *Messages {
	return &Messages{db: db}
}

func (r *Messages) Append(ctx context.Context, conversationID int64, sender Sender, content string) (*Message, error) {
	msg := &Message{
		ConversationID: conversationID,
		Sender:         sender,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	if _, err := r.db.NewInsert().Model(msg).Exec(ctx); err != nil {
		return nil, err
	}
	return msg, nil
}

func (r *Messages) History(ctx context.Context, conversationID int64) ([]Message, error) {
	var msgs []Message
	err := r.db.NewSelect().
		Model(&msgs).
		Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *Messages) LastBot(ctx context.Context, conversationID int64) (*Message, error) {
	msg := new(Message)
	err := r.db.NewSelect().
		Model(msg).
		Where("conversation_id = ?", conversationID).
		Where("sender = ?", SenderBot).
		Order("id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return msg, nil
}
