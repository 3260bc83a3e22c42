package contract

import (
	"context"

	storex "github.com/burgerhouse/orderchat/store"
)

// ConversationStore persists the durable conversation record.
type ConversationStore interface {
	BySession(ctx context.Context, sessionID string) (*storex.Conversation, error)
	Create(ctx context.Context, sessionID string) (*storex.Conversation, error)
	BindCustomer(ctx context.Context, conversationID, customerID int64) error
	Touch(ctx context.Context, conversationID int64) error
}

// MessageStore is append-only chat history.
type MessageStore interface {
	Append(ctx context.Context, conversationID int64, sender storex.Sender, content string) (*storex.Message, error)
	History(ctx context.Context, conversationID int64) ([]storex.Message, error)
	LastBot(ctx context.Context, conversationID int64) (*storex.Message, error)
}

// PendingOrderStore holds at most one tentative order per conversation.
// Replace must be atomic so concurrent writers cannot leave two rows.
type PendingOrderStore interface {
	Replace(ctx context.Context, po *storex.PendingOrder) error
	ByConversation(ctx context.Context, conversationID int64) (*storex.PendingOrder, error)
	Delete(ctx context.Context, conversationID int64) error
}

type CustomerStore interface {
	ByID(ctx context.Context, id int64) (*storex.Customer, error)
	ByPhone(ctx context.Context, phone string) (*storex.Customer, error)
	// Create inserts the customer; a phone-uniqueness conflict resolves to the
	// existing row instead of failing.
	Create(ctx context.Context, c *storex.Customer) (*storex.Customer, error)
	UpdateAddress(ctx context.Context, id int64, c *storex.Customer) error
}

type OrderStore interface {
	// Create inserts the order header and its items in one transaction and
	// returns the order id. A uniqueness violation surfaces as ErrDuplicate.
	Create(ctx context.Context, o *storex.Order, items []storex.LineItem) (int64, error)
	SetPayment(ctx context.Context, orderID int64, method, notes string) error
	Status(ctx context.Context, orderID int64) (string, error)
	RecentByCustomer(ctx context.Context, customerID int64, limit int) ([]storex.OrderSummary, error)
}

// ProductCatalog is the read-only catalog view the core consumes.
type ProductCatalog interface {
	Active(ctx context.Context) ([]storex.Product, error)
	ByID(ctx context.Context, id int64) (*storex.Product, error)
	SearchActive(ctx context.Context, query string) ([]storex.Product, error)
}

// Responder is the external AI collaborator. Implementations return
// ErrUnavailable (or any error) to make the caller fall back to the
// deterministic resolver.
type Responder interface {
	Respond(ctx context.Context, message string, pctx PromptContext) (string, error)
}

// AddressLookup resolves a postal code into address fields.
type AddressLookup interface {
	Lookup(ctx context.Context, postalCode string) (*Address, error)
}
