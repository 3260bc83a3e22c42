// Package resolver turns free-text order attempts into concrete catalog
// products without calling a language model. It is the deterministic fast
// path of the ordering pipeline.
package resolver

import (
	"regexp"
	"strings"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	statex "github.com/burgerhouse/orderchat/chat/state"
	storex "github.com/burgerhouse/orderchat/store"
)

// Kind classifies what a resolution attempt produced.
type Kind int

const (
	// KindNoIntent means the text does not read as an order attempt.
	KindNoIntent Kind = iota
	// KindNoMatch means order intent was detected but no product fit.
	KindNoMatch
	// KindTentative carries a fully resolved item set ready to confirm.
	KindTentative
	// KindChoice carries several candidates the user must pick from.
	KindChoice
	// KindPackConfirm means a pack matched a small quantity and the user
	// must confirm individual units instead.
	KindPackConfirm
	// KindStockShort means the product matched but stock cannot cover it.
	KindStockShort
)

// Outcome is the result of resolving one user message against the catalog.
type Outcome struct {
	Kind       Kind
	Group      string
	Quantity   int
	Units      int // individual units held by a pack confirmation
	Items      []storex.LineItem
	Total      float64
	Candidates []storex.Product
	Product    *storex.Product
}

var (
	quantityRe = regexp.MustCompile(`\d+`)
	packSizeRe = regexp.MustCompile(`\(pack\s*(\d+)`)
)

// Quantity extracts the first integer in the text that is not part of a
// volume mention ("350ml", "2 litros"), defaulting to 1.
func Quantity(text string) int {
	for _, loc := range quantityRe.FindAllStringIndex(text, -1) {
		if volumeSuffix(text[loc[1]:]) {
			continue
		}
		if n := atoi(text[loc[0]:loc[1]]); n > 0 {
			return n
		}
	}
	return 1
}

func volumeSuffix(rest string) bool {
	rest = strings.TrimPrefix(rest, " ")
	if strings.HasPrefix(rest, "ml") || strings.HasPrefix(rest, "litro") {
		return true
	}
	if strings.HasPrefix(rest, "l") {
		tail := rest[1:]
		return tail == "" || tail[0] < 'a' || tail[0] > 'z'
	}
	return false
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// PackSize reads the unit count out of a pack product name, e.g.
// "Coca-Cola Lata 350ml (Pack 6)" yields 6.
func PackSize(name string) (int, bool) {
	m := packSizeRe.FindStringSubmatch(strings.ToLower(name))
	if m == nil {
		return 0, false
	}
	n := atoi(m[1])
	if n <= 0 {
		return 0, false
	}
	return n, true
}

// Resolve maps an order message onto the active catalog.
func Resolve(text string, products []storex.Product) Outcome {
	lower := strings.ToLower(text)
	if !HasOrderIntent(text) && detectGroup(lower) == "" {
		return Outcome{Kind: KindNoIntent}
	}

	qty := Quantity(lower)
	wantsPack := strings.Contains(lower, "pack") || strings.Contains(lower, "caixa") || qty >= 6
	group := detectGroup(lower)
	if group == "" {
		return Outcome{Kind: KindNoMatch, Quantity: qty}
	}

	// "lata" with no pack intent is a strong cue for the single-can product.
	if strings.Contains(lower, "lata") && !wantsPack {
		if p := findCan(group, products); p != nil {
			return finalize(*p, qty, wantsPack)
		}
	}

	candidates := filterGroup(group, products, wantsPack, qty)
	if len(candidates) == 0 && !wantsPack {
		// Only packs exist for this group. Match them anyway and let
		// finalize hold the multiplied units for confirmation.
		candidates = filterGroup(group, products, true, qty)
	}
	if len(candidates) == 0 {
		return Outcome{Kind: KindNoMatch, Group: group, Quantity: qty}
	}

	if len(candidates) > 1 {
		if refined := refineByText(lower, candidates); len(refined) > 0 {
			candidates = refined
		}
	}

	if group == "hamburguer" && len(candidates) > 1 && !hasBurgerQualifier(lower) {
		return Outcome{Kind: KindChoice, Group: group, Quantity: qty, Candidates: candidates}
	}
	if len(candidates) > 1 {
		return Outcome{Kind: KindChoice, Group: group, Quantity: qty, Candidates: candidates}
	}
	return finalize(candidates[0], qty, wantsPack)
}

// Pick resolves a reply to a pending disambiguation list, either by its
// number or by a size/pack cue. The second return is false when the reply
// could not be understood.
func Pick(text string, choice *statex.Choice) (Outcome, bool) {
	if choice == nil || len(choice.Candidates) == 0 {
		return Outcome{}, false
	}
	lower := strings.ToLower(strings.TrimSpace(text))

	if m := quantityRe.FindString(lower); m == lower && m != "" {
		idx := Quantity(lower)
		if idx >= 1 && idx <= len(choice.Candidates) {
			return finalize(choice.Candidates[idx-1], choice.Quantity, false), true
		}
		return Outcome{}, false
	}

	wantsPack := strings.Contains(lower, "pack") || strings.Contains(lower, "caixa")
	volume := detectVolume(lower)
	for _, p := range choice.Candidates {
		name := strings.ToLower(p.Name)
		isPack := strings.Contains(name, "pack")
		if wantsPack != isPack {
			continue
		}
		if volume != "" && !strings.Contains(name, volume) && !matchesGalao(volume, name) {
			continue
		}
		if volume == "" && !wantsPack {
			continue
		}
		return finalize(p, choice.Quantity, wantsPack), true
	}
	return Outcome{}, false
}

// FromAction revalidates a model-proposed order action against the catalog.
// Unknown or inactive products drop the whole action.
func FromAction(action *contractx.OrderAction, byID func(int64) *storex.Product) (Outcome, bool) {
	if action == nil || len(action.Items) == 0 {
		return Outcome{}, false
	}
	var items []storex.LineItem
	for _, it := range action.Items {
		p := byID(it.ProductID)
		if p == nil || !p.Active {
			return Outcome{}, false
		}
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		if p.Stock < qty {
			out := *p
			return Outcome{Kind: KindStockShort, Quantity: qty, Product: &out}, true
		}
		items = append(items, storex.LineItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  qty,
		})
	}
	if len(items) == 1 {
		if size, ok := PackSize(items[0].Name); ok && items[0].Quantity <= 3 && items[0].Quantity < size {
			return Outcome{
				Kind:     KindPackConfirm,
				Quantity: items[0].Quantity,
				Units:    items[0].Quantity * size,
				Items:    items,
				Total:    storex.SumItems(items),
			}, true
		}
	}
	return Outcome{
		Kind:     KindTentative,
		Quantity: len(items),
		Items:    items,
		Total:    storex.SumItems(items),
	}, true
}

func finalize(p storex.Product, qty int, wantsPack bool) Outcome {
	if p.Stock < qty {
		out := p
		return Outcome{Kind: KindStockShort, Quantity: qty, Product: &out}
	}
	item := storex.LineItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty}

	// A pack reached with a small quantity usually means the user wanted
	// units, not boxes. Hold the pack reading and confirm the unit count.
	if size, ok := PackSize(p.Name); ok && !wantsPack && qty <= 3 && qty < size {
		return Outcome{
			Kind:     KindPackConfirm,
			Quantity: qty,
			Units:    qty * size,
			Items:    []storex.LineItem{item},
			Total:    item.Total(),
		}
	}
	return Outcome{
		Kind:     KindTentative,
		Quantity: qty,
		Items:    []storex.LineItem{item},
		Total:    item.Total(),
	}
}

func findCan(group string, products []storex.Product) *storex.Product {
	for i := range products {
		name := strings.ToLower(products[i].Name)
		if !nameInGroup(name, group) {
			continue
		}
		if strings.Contains(name, "lata") && !strings.Contains(name, "pack") {
			return &products[i]
		}
	}
	return nil
}

func filterGroup(group string, products []storex.Product, wantsPack bool, qty int) []storex.Product {
	var out []storex.Product
	for _, p := range products {
		name := strings.ToLower(p.Name)
		if !nameInGroup(name, group) {
			continue
		}
		isPack := strings.Contains(name, "pack")
		if wantsPack && !isPack {
			continue
		}
		if !wantsPack && qty <= 3 && isPack {
			continue
		}
		out = append(out, p)
	}
	return out
}

func nameInGroup(lowerName, group string) bool {
	for _, kw := range groupKeywords(group) {
		if strings.Contains(lowerName, kw) {
			return true
		}
	}
	// Group keywords like "lanche" never appear in product names. Fall back
	// to the group identity tokens for burgers.
	if group == "hamburguer" {
		return strings.Contains(lowerName, "burger")
	}
	return false
}

// refineByText narrows candidates using cues in the message itself. A
// volume mention filters outright; otherwise descriptor words narrow the
// list only when they discriminate, e.g. "grandes" keeps the Grande size
// while a word matching every candidate changes nothing.
func refineByText(lower string, candidates []storex.Product) []storex.Product {
	if volume := detectVolume(lower); volume != "" {
		var out []storex.Product
		for _, p := range candidates {
			name := strings.ToLower(p.Name)
			if strings.Contains(name, volume) || matchesGalao(volume, name) {
				out = append(out, p)
			}
		}
		return out
	}

	out := candidates
	for _, tok := range strings.Fields(lower) {
		tok = strings.TrimSuffix(tok, "s")
		if len(tok) < 4 {
			continue
		}
		var sub []storex.Product
		for _, p := range out {
			if strings.Contains(strings.ToLower(p.Name), tok) {
				sub = append(sub, p)
			}
		}
		if len(sub) > 0 && len(sub) < len(out) {
			out = sub
		}
	}
	return out
}

func matchesGalao(volume, lowerName string) bool {
	return volume == "20l" && (strings.Contains(lowerName, "galão") || strings.Contains(lowerName, "galao"))
}

func hasBurgerQualifier(lower string) bool {
	for _, q := range burgerQualifiers {
		if strings.Contains(lower, q) {
			return true
		}
	}
	return false
}
