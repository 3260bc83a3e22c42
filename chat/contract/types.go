package contract

import (
	storex "github.com/burgerhouse/orderchat/store"
)

// OrderAction is the structured order fragment an AI reply may embed.
// It is never trusted blindly: items are revalidated against the active
// catalog and the same pack rules the deterministic resolver applies.
type OrderAction struct {
	Action            string            `json:"action"`
	Items             []OrderActionItem `json:"items"`
	NeedsConfirmation bool              `json:"needs_confirmation"`
}

type OrderActionItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// PromptContext is everything the AI collaborator gets to see for one turn.
type PromptContext struct {
	Customer *storex.Customer
	Products []storex.Product
}

// Address is the result of a postal-code lookup.
type Address struct {
	Street   string
	District string
	City     string
	Region   string
}
