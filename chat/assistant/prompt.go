package assistant

import (
	"fmt"
	"strings"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
)

// systemPrompt renders the storefront persona with the live catalog and,
// when known, the customer profile. The JSON block contract at the end is
// what ExtractOrderAction parses out of replies.
func systemPrompt(pctx contractx.PromptContext) string {
	var b strings.Builder

	b.WriteString("Você é o atendente virtual da Burger House, uma hamburgueria com entrega.\n")
	b.WriteString("Responda sempre em português brasileiro, de forma curta e simpática.\n")
	b.WriteString("Nunca invente produtos nem preços: use apenas o cardápio abaixo.\n\n")

	b.WriteString("Cardápio disponível:\n")
	for _, p := range pctx.Products {
		fmt.Fprintf(&b, "- [%d] %s - R$ %.2f", p.ID, p.Name, p.Price)
		if p.Stock <= 0 {
			b.WriteString(" (esgotado)")
		}
		b.WriteString("\n")
	}

	if c := pctx.Customer; c != nil {
		fmt.Fprintf(&b, "\nCliente: %s", c.Name)
		if c.City != "" {
			fmt.Fprintf(&b, ", de %s", c.City)
		}
		b.WriteString(". Trate-o pelo primeiro nome.\n")
	}

	b.WriteString("\nQuando o cliente pedir produtos do cardápio, termine a resposta com um bloco JSON neste formato:\n")
	b.WriteString(`{"action":"create_order","items":[{"product_id":1,"quantity":2}],"needs_confirmation":true}`)
	b.WriteString("\nUse os IDs do cardápio. Se o cliente só estiver conversando, não inclua JSON.\n")

	return b.String()
}
