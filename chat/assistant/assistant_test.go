package assistant

import (
	"strings"
	"testing"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	storex "github.com/burgerhouse/orderchat/store"
)

func TestExtractOrderAction(t *testing.T) {
	reply := "Boa escolha! Vou separar seu pedido.\n" +
		`{"action":"create_order","items":[{"product_id":8,"quantity":2}],"needs_confirmation":true}`

	action, text := ExtractOrderAction(reply)
	if action == nil {
		t.Fatal("expected an action")
	}
	if len(action.Items) != 1 || action.Items[0].ProductID != 8 || action.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v", action.Items)
	}
	if !action.NeedsConfirmation {
		t.Error("expected needs_confirmation to carry over")
	}
	if strings.Contains(text, "{") {
		t.Errorf("text still contains JSON: %q", text)
	}
}

func TestExtractOrderActionPlainReply(t *testing.T) {
	reply := "Oi! Como posso ajudar hoje?"
	action, text := ExtractOrderAction(reply)
	if action != nil {
		t.Fatalf("action = %+v, want nil", action)
	}
	if text != reply {
		t.Errorf("text = %q, want unchanged reply", text)
	}
}

func TestExtractOrderActionMalformedJSON(t *testing.T) {
	reply := "Anotei! {action: create_order, items: []}"
	if action, _ := ExtractOrderAction(reply); action != nil {
		t.Fatalf("action = %+v, want nil for malformed block", action)
	}
}

func TestExtractOrderActionEmptyItems(t *testing.T) {
	reply := `{"action":"create_order","items":[]}`
	if action, _ := ExtractOrderAction(reply); action != nil {
		t.Fatalf("action = %+v, want nil for empty items", action)
	}
}

func TestSystemPromptIncludesCatalogAndCustomer(t *testing.T) {
	pctx := contractx.PromptContext{
		Customer: &storex.Customer{Name: "Maria Souza", City: "Campinas"},
		Products: []storex.Product{
			{ID: 7, Name: "Classic Burger", Price: 25, Stock: 40},
			{ID: 5, Name: "Água Mineral 500ml", Price: 3, Stock: 0},
		},
	}

	prompt := systemPrompt(pctx)
	for _, want := range []string{"[7] Classic Burger - R$ 25.00", "esgotado", "Maria Souza", "Campinas", "create_order"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
