package engine

import (
	"strings"
	"testing"

	storex "github.com/burgerhouse/orderchat/store"
)

func TestParseTotal(t *testing.T) {
	cases := []struct {
		content string
		want    float64
		ok      bool
	}{
		{"Seu pedido:\n• 2x Coca - R$ 11.00\n\nTotal: R$ 49.80\n\nConfirma?", 49.80, true},
		{"Total: R$ 1.234,50", 1234.50, true},
		{"Total: R$ 56,00", 56, true},
		{"Oi! Em que posso te ajudar?", 0, false},
		{"O produto custa R$ 25.00", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseTotal(tc.content)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseTotal(%q) = %.2f, %v; want %.2f, %v", tc.content, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAffirmativeNegativeMatching(t *testing.T) {
	affirmatives := []string{"sim", "SIM!", "s", "pode confirmar", "tudo certo", "é isso"}
	for _, in := range affirmatives {
		if !isAffirmative(strings.ToLower(in)) {
			t.Errorf("isAffirmative(%q) = false", in)
		}
	}

	// "sábado" must not match the bare "s" affirmative.
	notAffirmative := []string{"sábado", "quero mais um", "talvez"}
	for _, in := range notAffirmative {
		if isAffirmative(strings.ToLower(in)) {
			t.Errorf("isAffirmative(%q) = true", in)
		}
	}

	negatives := []string{"não", "nao", "cancela", "não quero mais"}
	for _, in := range negatives {
		if !isNegative(strings.ToLower(in)) {
			t.Errorf("isNegative(%q) = false", in)
		}
	}
	if isNegative("semana que vem") {
		t.Error("isNegative(\"semana que vem\") = true")
	}
}

func TestGreetingMatching(t *testing.T) {
	greetings := []string{"oi", "Olá!", "bom dia", "oi, tudo bem?"}
	for _, in := range greetings {
		if !isGreeting(in, strings.ToLower(in)) {
			t.Errorf("isGreeting(%q) = false", in)
		}
	}

	notGreetings := []string{"dois", "quero 2 coca lata", "oi quero fazer um pedido agora mesmo"}
	for _, in := range notGreetings {
		if isGreeting(in, strings.ToLower(in)) {
			t.Errorf("isGreeting(%q) = true", in)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("maria  dos santos"); got != "Maria Dos Santos" {
		t.Errorf("titleCase = %q", got)
	}
}

func TestShippingAddress(t *testing.T) {
	c := &storex.Customer{
		Address: "Rua A", Number: "10", Complement: "Apto 2",
		Neighborhood: "Centro", City: "Belo Horizonte", State: "MG",
	}
	want := "Rua A, 10 Apto 2 - Centro, Belo Horizonte/MG"
	if got := shippingAddress(c); got != want {
		t.Errorf("shippingAddress = %q, want %q", got, want)
	}

	c.Complement = ""
	want = "Rua A, 10 - Centro, Belo Horizonte/MG"
	if got := shippingAddress(c); got != want {
		t.Errorf("shippingAddress = %q, want %q", got, want)
	}
}

func TestStatusLabel(t *testing.T) {
	if got := statusLabel("out_for_delivery"); got != "A caminho" {
		t.Errorf("statusLabel = %q", got)
	}
	if got := statusLabel("weird"); got != "weird" {
		t.Errorf("unknown status should pass through, got %q", got)
	}
}
