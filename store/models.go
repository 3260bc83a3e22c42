package store

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Sender identifies the author of a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Conversation is the durable per-session dialogue record. Dialogue state
// itself lives in memory (chat/state); the row only pins the session to a
// customer and anchors message history and the pending order.
type Conversation struct {
	bun.BaseModel `bun:"table:conversations"`

	ID         int64     `bun:"id,pk,autoincrement"`
	SessionID  string    `bun:"session_id,notnull"`
	CustomerID int64     `bun:"customer_id,nullzero"`
	Status     string    `bun:"status,notnull,default:'active'"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// Message is an append-only chat history record.
type Message struct {
	bun.BaseModel `bun:"table:messages"`

	ID             int64     `bun:"id,pk,autoincrement"`
	ConversationID int64     `bun:"conversation_id,notnull"`
	Sender         Sender    `bun:"sender,notnull"`
	Content        string    `bun:"content,notnull"`
	CreatedAt      time.Time `bun:"created_at,notnull"`
}

// LineItem is one product line of a tentative or committed order. The price
// is the unit price quoted when the line was built; commit never re-reads it
// from the catalog.
type LineItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

func (li LineItem) Total() float64 {
	return li.Price * float64(li.Quantity)
}

// SumItems returns the total of a set of line items.
func SumItems(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Total()
	}
	return total
}

// PendingOrder mirrors an unconfirmed tentative order so it survives
// reconnects. At most one row per conversation; writers always replace.
type PendingOrder struct {
	bun.BaseModel `bun:"table:chat_pending_orders"`

	ID             int64      `bun:"id,pk,autoincrement"`
	ConversationID int64      `bun:"conversation_id,notnull,unique"`
	CustomerID     int64      `bun:"customer_id,nullzero"`
	Items          []LineItem `bun:"items,type:jsonb,notnull"`
	Total          float64    `bun:"total,notnull"`
	CreatedAt      time.Time  `bun:"created_at,notnull"`
}

// Customer is created once by the registration sub-flow; phone is unique.
type Customer struct {
	bun.BaseModel `bun:"table:customers"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Name         string    `bun:"name,notnull"`
	Phone        string    `bun:"phone,notnull,unique"`
	CEP          string    `bun:"cep"`
	Address      string    `bun:"address"`
	Number       string    `bun:"number"`
	Complement   string    `bun:"complement"`
	Neighborhood string    `bun:"neighborhood"`
	City         string    `bun:"city"`
	State        string    `bun:"state"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero"`
}

// FirstName returns the leading name token, or a friendly fallback.
func (c *Customer) FirstName() string {
	if c == nil {
		return "amigo"
	}
	if parts := strings.Fields(c.Name); len(parts) > 0 {
		return parts[0]
	}
	return "amigo"
}

// Order is the permanent record created by the commit workflow.
// Invariant: Total == Subtotal + Shipping - Discount.
type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID              int64     `bun:"id,pk,autoincrement"`
	CustomerID      int64     `bun:"customer_id,notnull"`
	Subtotal        float64   `bun:"subtotal,notnull"`
	Shipping        float64   `bun:"shipping,notnull"`
	Discount        float64   `bun:"discount,notnull"`
	Total           float64   `bun:"total,notnull"`
	Status          string    `bun:"status,notnull"`
	PaymentMethod   string    `bun:"payment_method,notnull"`
	ShippingAddress string    `bun:"shipping_address"`
	Notes           string    `bun:"notes"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
	UpdatedAt       time.Time `bun:"updated_at,notnull"`
}

// OrderItem is one committed order line row.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items"`

	ID        int64     `bun:"id,pk,autoincrement"`
	OrderID   int64     `bun:"order_id,notnull"`
	ProductID int64     `bun:"product_id,notnull"`
	Quantity  int       `bun:"quantity,notnull"`
	Price     float64   `bun:"price,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// OrderSummary is the compact view used by chat replies and history lookups.
type OrderSummary struct {
	ID        int64     `bun:"id"`
	Total     float64   `bun:"total"`
	Status    string    `bun:"status"`
	CreatedAt time.Time `bun:"created_at"`
	ItemCount int       `bun:"item_count"`
}

// Product is read-only to the chat core. Pack sizing rides informally in the
// name ("Coca-Cola (Pack 6)").
type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID          int64   `bun:"id,pk,autoincrement"`
	Name        string  `bun:"name,notnull"`
	Description string  `bun:"description"`
	Price       float64 `bun:"price,notnull"`
	Stock       int     `bun:"stock,notnull"`
	Active      bool    `bun:"active,notnull,default:true"`
}

// CartItem belongs to the storefront cart, keyed by customer or by the
// anonymous session that created it.
type CartItem struct {
	bun.BaseModel `bun:"table:cart_items"`

	ID         int64     `bun:"id,pk,autoincrement"`
	SessionID  string    `bun:"session_id,nullzero"`
	CustomerID int64     `bun:"customer_id,nullzero,unique:cart_owner_product"`
	ProductID  int64     `bun:"product_id,notnull,unique:cart_owner_product"`
	Quantity   int       `bun:"quantity,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}
