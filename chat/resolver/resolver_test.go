package resolver

import (
	"testing"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	statex "github.com/burgerhouse/orderchat/chat/state"
	storex "github.com/burgerhouse/orderchat/store"
)

// orderAction builds an action from (productID, quantity) pairs.
func orderAction(pairs ...int64) *contractx.OrderAction {
	a := &contractx.OrderAction{Action: "create_order"}
	for i := 0; i+1 < len(pairs); i += 2 {
		a.Items = append(a.Items, contractx.OrderActionItem{
			ProductID: pairs[i],
			Quantity:  int(pairs[i+1]),
		})
	}
	return a
}

func catalog() []storex.Product {
	return []storex.Product{
		{ID: 1, Name: "Coca-Cola Lata 350ml", Price: 5.5, Stock: 50, Active: true},
		{ID: 2, Name: "Coca-Cola 2L", Price: 12, Stock: 30, Active: true},
		{ID: 3, Name: "Coca-Cola Lata 350ml (Pack 6)", Price: 28, Stock: 20, Active: true},
		{ID: 4, Name: "Guaraná Antarctica 2L", Price: 10, Stock: 25, Active: true},
		{ID: 5, Name: "Água Mineral 500ml", Price: 3, Stock: 100, Active: true},
		{ID: 6, Name: "Água Galão 20L", Price: 15, Stock: 10, Active: true},
		{ID: 7, Name: "Classic Burger", Price: 25, Stock: 40, Active: true},
		{ID: 8, Name: "Smash Burger", Price: 22, Stock: 40, Active: true},
		{ID: 9, Name: "Cheese Bacon Burger", Price: 28, Stock: 40, Active: true},
		{ID: 10, Name: "Batata Frita Grande", Price: 18, Stock: 60, Active: true},
		{ID: 11, Name: "Batata Frita Média", Price: 12, Stock: 60, Active: true},
	}
}

func TestQuantity(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"quero 2 cocas", 2},
		{"quero coca 350ml", 1},
		{"quero uma coca", 1},
		{"2 litros de guaraná", 1},
		{"quero 2 latas de coca", 2},
		{"manda 10 águas", 10},
	}
	for _, tc := range cases {
		if got := Quantity(tc.text); got != tc.want {
			t.Errorf("Quantity(%q) = %d, want %d", tc.text, got, tc.want)
		}
	}
}

func TestResolveNoIntent(t *testing.T) {
	out := Resolve("oi, tudo bem?", catalog())
	if out.Kind != KindNoIntent {
		t.Fatalf("kind = %d, want KindNoIntent", out.Kind)
	}
}

func TestResolveGenericBurgerListsOptions(t *testing.T) {
	out := Resolve("quero um hamburguer", catalog())
	if out.Kind != KindChoice {
		t.Fatalf("kind = %d, want KindChoice", out.Kind)
	}
	if len(out.Candidates) != 3 {
		t.Fatalf("candidates = %d, want 3", len(out.Candidates))
	}
	if out.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", out.Quantity)
	}
}

func TestResolveSpecificBurger(t *testing.T) {
	out := Resolve("me vê um smash", catalog())
	if out.Kind != KindTentative {
		t.Fatalf("kind = %d, want KindTentative", out.Kind)
	}
	if len(out.Items) != 1 || out.Items[0].ProductID != 8 {
		t.Fatalf("items = %+v, want smash burger", out.Items)
	}
	if out.Total != 22 {
		t.Errorf("total = %v, want 22", out.Total)
	}
}

func TestResolveSizeQualifier(t *testing.T) {
	out := Resolve("quero 2 batatas grandes", catalog())
	if out.Kind != KindTentative {
		t.Fatalf("kind = %d, want KindTentative", out.Kind)
	}
	if out.Items[0].ProductID != 10 {
		t.Fatalf("product = %d, want 10 (grande)", out.Items[0].ProductID)
	}
	if out.Items[0].Quantity != 2 || out.Total != 36 {
		t.Errorf("quantity = %d total = %v, want 2 and 36", out.Items[0].Quantity, out.Total)
	}
}

func TestResolveCanCue(t *testing.T) {
	out := Resolve("quero uma coca lata", catalog())
	if out.Kind != KindTentative {
		t.Fatalf("kind = %d, want KindTentative", out.Kind)
	}
	if out.Items[0].ProductID != 1 {
		t.Fatalf("product = %d, want 1 (single can, not pack)", out.Items[0].ProductID)
	}
}

func TestResolveAmbiguousVolume(t *testing.T) {
	out := Resolve("quero uma agua", catalog())
	if out.Kind != KindChoice {
		t.Fatalf("kind = %d, want KindChoice", out.Kind)
	}
	if len(out.Candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(out.Candidates))
	}
}

func TestResolveVolumeCueNarrows(t *testing.T) {
	out := Resolve("quero um galão de água", catalog())
	if out.Kind != KindTentative {
		t.Fatalf("kind = %d, want KindTentative", out.Kind)
	}
	if out.Items[0].ProductID != 6 {
		t.Fatalf("product = %d, want 6 (galão)", out.Items[0].ProductID)
	}
}

func TestResolveExplicitPack(t *testing.T) {
	out := Resolve("quero 1 pack de coca", catalog())
	if out.Kind != KindTentative {
		t.Fatalf("kind = %d, want KindTentative", out.Kind)
	}
	if out.Items[0].ProductID != 3 || out.Items[0].Quantity != 1 {
		t.Fatalf("items = %+v, want one pack", out.Items)
	}
}

func TestResolvePackFallbackAsksUnits(t *testing.T) {
	packOnly := []storex.Product{
		{ID: 3, Name: "Coca-Cola Lata 350ml (Pack 6)", Price: 28, Stock: 20, Active: true},
	}
	out := Resolve("quero 2 cocas", packOnly)
	if out.Kind != KindPackConfirm {
		t.Fatalf("kind = %d, want KindPackConfirm", out.Kind)
	}
	if out.Units != 12 || out.Items[0].Quantity != 2 {
		t.Errorf("units = %d packs = %d, want 12 and 2", out.Units, out.Items[0].Quantity)
	}
	if out.Total != 56 {
		t.Errorf("total = %v, want 56", out.Total)
	}
}

func TestResolveStockShort(t *testing.T) {
	low := []storex.Product{
		{ID: 7, Name: "Classic Burger", Price: 25, Stock: 1, Active: true},
	}
	out := Resolve("quero 2 classic", low)
	if out.Kind != KindStockShort {
		t.Fatalf("kind = %d, want KindStockShort", out.Kind)
	}
	if out.Product == nil || out.Product.ID != 7 {
		t.Fatalf("product = %+v, want classic burger", out.Product)
	}
}

func TestResolveNoMatch(t *testing.T) {
	out := Resolve("quero uma pizza", catalog())
	if out.Kind != KindNoMatch {
		t.Fatalf("kind = %d, want KindNoMatch", out.Kind)
	}
}

func TestPickByNumber(t *testing.T) {
	choice := &statex.Choice{Candidates: catalog()[6:9], Quantity: 2}
	out, ok := Pick("2", choice)
	if !ok {
		t.Fatal("expected pick to succeed")
	}
	if out.Items[0].ProductID != 8 || out.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v, want 2x smash", out.Items)
	}
}

func TestPickByVolumeCue(t *testing.T) {
	choice := &statex.Choice{Candidates: []storex.Product{
		{ID: 1, Name: "Coca-Cola Lata 350ml", Price: 5.5, Stock: 50, Active: true},
		{ID: 2, Name: "Coca-Cola 2L", Price: 12, Stock: 30, Active: true},
	}, Quantity: 1}
	out, ok := Pick("a garrafa de 2 litros", choice)
	if !ok {
		t.Fatal("expected pick to succeed")
	}
	if out.Items[0].ProductID != 2 {
		t.Fatalf("product = %d, want 2", out.Items[0].ProductID)
	}
}

func TestPickOutOfRange(t *testing.T) {
	choice := &statex.Choice{Candidates: catalog()[6:9], Quantity: 1}
	if _, ok := Pick("9", choice); ok {
		t.Fatal("expected out-of-range pick to fail")
	}
	if _, ok := Pick("tanto faz", choice); ok {
		t.Fatal("expected vague pick to fail")
	}
}

func TestFromAction(t *testing.T) {
	byID := func(id int64) *storex.Product {
		for _, p := range catalog() {
			if p.ID == id {
				out := p
				return &out
			}
		}
		return nil
	}

	out, ok := FromAction(orderAction(8, 2, 10, 1), byID)
	if !ok {
		t.Fatal("expected action to resolve")
	}
	if out.Kind != KindTentative || len(out.Items) != 2 {
		t.Fatalf("outcome = %+v, want two tentative items", out)
	}
	if out.Total != 62 {
		t.Errorf("total = %v, want 62", out.Total)
	}

	if _, ok := FromAction(orderAction(999, 1), byID); ok {
		t.Fatal("expected unknown product to drop the action")
	}
}
