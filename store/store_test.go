package store_test

import (
	"testing"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	storex "github.com/burgerhouse/orderchat/store"
)

// The repositories must keep satisfying the chat-core contracts.
var (
	_ contractx.ConversationStore = (*storex.Conversations)(nil)
	_ contractx.MessageStore      = (*storex.Messages)(nil)
	_ contractx.PendingOrderStore = (*storex.PendingOrders)(nil)
	_ contractx.CustomerStore     = (*storex.Customers)(nil)
	_ contractx.OrderStore        = (*storex.Orders)(nil)
	_ contractx.ProductCatalog    = (*storex.Products)(nil)
)

func TestSumItems(t *testing.T) {
	items := []storex.LineItem{
		{ProductID: 1, Price: 5.5, Quantity: 2},
		{ProductID: 2, Price: 12, Quantity: 1},
	}
	if got := storex.SumItems(items); got != 23 {
		t.Fatalf("SumItems = %v, want 23", got)
	}
	if got := storex.SumItems(nil); got != 0 {
		t.Fatalf("SumItems(nil) = %v, want 0", got)
	}
}

func TestCustomerFirstName(t *testing.T) {
	cases := []struct {
		c    *storex.Customer
		want string
	}{
		{&storex.Customer{Name: "Maria Souza"}, "Maria"},
		{&storex.Customer{Name: ""}, "amigo"},
		{nil, "amigo"},
	}
	for _, tc := range cases {
		if got := tc.c.FirstName(); got != tc.want {
			t.Errorf("FirstName() = %q, want %q", got, tc.want)
		}
	}
}
