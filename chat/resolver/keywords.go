package resolver

import "strings"

// Group is one canonical product group in the intent table. Matching is
// longest-keyword-wins so "cheese bacon" beats "bacon" and insertion order
// never decides a tie.
type Group struct {
	Name     string
	Keywords []string
}

var groups = []Group{
	{Name: "coca", Keywords: []string{"coca", "coca-cola"}},
	{Name: "guarana", Keywords: []string{"guaraná", "guarana", "antarctica"}},
	{Name: "fanta", Keywords: []string{"fanta"}},
	{Name: "sprite", Keywords: []string{"sprite"}},
	{Name: "agua", Keywords: []string{"água", "agua", "mineral"}},
	{Name: "cerveja", Keywords: []string{"cerveja", "brahma", "skol", "heineken"}},
	{Name: "suco", Keywords: []string{"suco"}},
	{Name: "cheese bacon", Keywords: []string{"cheese bacon", "bacon"}},
	{Name: "classic", Keywords: []string{"classic"}},
	{Name: "smash", Keywords: []string{"smash"}},
	{Name: "batata", Keywords: []string{"batata", "frita"}},
	{Name: "hamburguer", Keywords: []string{"hamburguer", "hamburger", "burger", "lanche"}},
}

// orderVerbs mark a message as an order attempt.
var orderVerbs = []string{
	"quero", "preciso", "manda", "me vê", "me da", "me dá",
	"queria", "gostaria", "pode", "pedir",
}

// volumeCues map free-text size mentions to the token expected inside a
// product name.
var volumeCues = []struct {
	Token string
	Cues  []string
}{
	{Token: "2l", Cues: []string{"2l", "2 l", "2 litros", "garrafa"}},
	{Token: "350ml", Cues: []string{"350ml", "350 ml", "latinha", "lata"}},
	{Token: "500ml", Cues: []string{"500ml", "500 ml"}},
	{Token: "1l", Cues: []string{"1l", "1 l", "1 litro"}},
	{Token: "20l", Cues: []string{"20l", "20 l", "galão", "galao"}},
}

// burgerQualifiers are the cues that make a burger request specific enough
// to skip the "which one?" list.
var burgerQualifiers = []string{"cheese", "bacon", "classic", "smash", "bbq"}

// HasOrderIntent reports whether the text reads like an order attempt.
func HasOrderIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, v := range orderVerbs {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return false
}

// detectGroup returns the canonical group whose longest keyword appears in
// the text, or "" when nothing matches.
func detectGroup(lower string) string {
	best := ""
	bestLen := 0
	for _, g := range groups {
		for _, kw := range g.Keywords {
			if len(kw) > bestLen && strings.Contains(lower, kw) {
				best = g.Name
				bestLen = len(kw)
			}
		}
	}
	return best
}

func groupKeywords(name string) []string {
	for _, g := range groups {
		if g.Name == name {
			return g.Keywords
		}
	}
	return nil
}

func detectVolume(lower string) string {
	for _, vc := range volumeCues {
		for _, cue := range vc.Cues {
			if strings.Contains(lower, cue) {
				return vc.Token
			}
		}
	}
	return ""
}
