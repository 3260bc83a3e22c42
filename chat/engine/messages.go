package engine

import (
	"fmt"
	"strings"

	storex "github.com/burgerhouse/orderchat/store"
)

// Canned reply texts. Customer-facing copy is Brazilian Portuguese.
const (
	msgAskPhoneFirst  = "Oi! Sou a Ana da Burger House!\n\nMe passa seu telefone com DDD?"
	msgBadPhone       = "Digite seu telefone com DDD (10-11 dígitos).\n\nEx: 31999999999"
	msgAskFullName    = "Beleza! Qual é seu nome completo?"
	msgNeedFullName   = "Legal! Mas preciso do seu nome completo, tipo: Maria Santos"
	msgAskCEP         = "Agora preciso do seu endereço. Qual é o seu CEP?"
	msgBadCEP         = "Esse CEP não está certo!\n\nDigite 8 números, sem traço.\n\nExemplo: 30130000"
	msgCEPNotFound    = "Não encontrei esse CEP. Confere se está certo e digita de novo?"
	msgCEPLookupDown  = "Tive um probleminha ao buscar o CEP. Pode digitar de novo?"
	msgAskNumber      = "Qual é o número da sua casa/apartamento?"
	msgAskComplement  = "Agora o complemento (apartamento, bloco, casa, etc.)\n\nSe não tiver complemento, basta digitar NÃO"
	msgRestartReg     = "Opa! Vamos recomeçar.\n\nMe passa seu telefone com DDD?"
	msgAskNameFinal   = "Quase lá! Me diz seu nome completo?"
	msgNeedPhoneOrder = "Opa! Pra finalizar seu pedido, preciso confirmar seus dados.\n\nPode me passar seu telefone com DDD?"
	msgAskPayment     = "Como quer pagar?\n\n1 - Dinheiro\n2 - Cartão\n3 - PIX\n\nMe diz: 1, 2 ou 3"
	msgAskChange      = "Pagamento em dinheiro!\n\nVocê vai precisar de troco? Se sim, troco para quanto?\n\nSe não precisar de troco, digite 'não'"
	msgConfirmUnclear = "Desculpa, não entendi bem. Você quer confirmar o pedido? Responde SIM ou NÃO"
	msgDuplicateOrder = "Parece que já existe um pedido em andamento!\n\nVamos fazer um novo? Me diz o que você precisa!"
	msgCommitFailed   = "Ops! Deu um probleminha técnico aqui.\n\nVamos tentar de novo? Responde SIM pra confirmar ou NÃO pra fazer outro pedido."
	msgAskOrderNumber = "Me passa o número do pedido pra eu ver o status!"
	msgHours          = "Nosso horário:\n\nTer a Dom: 18:00 às 23:00\nSegunda: Fechado"
)

var statusLabels = map[string]string{
	"pending":          "Pendente",
	"confirmed":        "Confirmado",
	"preparing":        "Preparando",
	"out_for_delivery": "A caminho",
	"delivered":        "Entregue",
	"cancelled":        "Cancelado",
}

func statusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

func msgWelcomeKnown(firstName, lastOrder string) string {
	return fmt.Sprintf("Oi, %s!%s\n\nO que você precisa hoje?", firstName, lastOrder)
}

func msgWelcomeBack(firstName, lastOrder string) string {
	return fmt.Sprintf("Oi, %s! Que bom te ver de volta!\n\nPosso te ajudar em algo?%s", firstName, lastOrder)
}

func msgNicePrazer(fullName, next string) string {
	return fmt.Sprintf("Prazer, %s!\n\n%s", fullName, next)
}

func formatItems(items []storex.LineItem) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("• %dx %s - R$ %.2f", it.Quantity, it.Name, it.Total()))
	}
	return strings.Join(lines, "\n")
}

func msgConfirmOrder(items []storex.LineItem, total float64) string {
	if len(items) == 1 {
		it := items[0]
		return fmt.Sprintf("Beleza!\n\n%dx %s - R$ %.2f\n\nConfirma? Responde SIM ou NÃO", it.Quantity, it.Name, total)
	}
	return fmt.Sprintf("Seu pedido:\n%s\n\nTotal: R$ %.2f\n\nConfirma? Responde SIM ou NÃO", formatItems(items), total)
}

func msgReshowOrder(items []storex.LineItem, total float64) string {
	return fmt.Sprintf("Aqui está seu pedido:\n%s\n\nTotal: R$ %.2f\n\nConfirma? SIM ou NÃO", formatItems(items), total)
}

func msgOrderCommitted(orderID int64, items []storex.LineItem, total float64) string {
	return fmt.Sprintf("Pedido #%d confirmado!\n\n%s\n\nTotal: R$ %.2f\n\nComo você prefere pagar?\n\n1 - Dinheiro\n2 - Cartão\n3 - PIX\n\nMe diz aí: 1, 2 ou 3",
		orderID, formatItems(items), total)
}

func msgOrderFinalized(orderID int64, paymentLine string) string {
	return fmt.Sprintf("Pedido #%d finalizado com sucesso!\n\n%s\n\nAgradecemos a preferência! Em breve nosso entregador estará no seu endereço.\n\nAcompanhe em: Menu > Meus Pedidos\n\nPrecisa de algo mais? Estou aqui!",
		orderID, paymentLine)
}

func msgPackClarify(name string, packs, units int, total float64) string {
	return fmt.Sprintf("Atenção!\n\n%s vem em pack fechado.\n\nVocê quer %d pack(s) = %d unidades por R$ %.2f?\n\nResponda SIM para confirmar ou NÃO para cancelar",
		name, packs, units, total)
}

func msgChoiceList(products []storex.Product) string {
	lines := make([]string, 0, len(products))
	for i, p := range products {
		lines = append(lines, fmt.Sprintf("%d. %s - R$ %.2f", i+1, p.Name, p.Price))
	}
	return fmt.Sprintf("Encontrei essas opções:\n\n%s\n\nDigite o número da opção que você quer ou descreva melhor!", strings.Join(lines, "\n"))
}

func msgStockShort(p *storex.Product) string {
	return fmt.Sprintf("Tenho só %d unidades de %s no momento. Quer essa quantidade?", p.Stock, p.Name)
}

func msgCatalogSample(products []storex.Product) string {
	if len(products) == 0 {
		return "Tô sem produtos cadastrados no momento. Entra em contato pelo WhatsApp (31) 99212-2844!"
	}
	if len(products) > 5 {
		products = products[:5]
	}
	lines := make([]string, 0, len(products))
	for i, p := range products {
		lines = append(lines, fmt.Sprintf("%d. %s - R$ %.2f", i+1, p.Name, p.Price))
	}
	return fmt.Sprintf("Temos esses produtos disponíveis:\n\n%s\n\nMe fala o que você quer!", strings.Join(lines, "\n"))
}

func msgNoGroupMatch(group string) string {
	return fmt.Sprintf("Não encontrei %s no estoque no momento.\n\nQuer ver outros produtos? Digite 'produtos' ou me fala o que você precisa!", group)
}

func msgAddressFound(street, district, city, region string) string {
	if street == "" {
		street = "Rua não identificada"
	}
	return fmt.Sprintf("Achei o endereço!\n\n%s\n%s - %s/%s\n\nQual é o número da sua casa/apartamento?", street, district, city, region)
}

// Intent matchers. Affirmatives and negatives match whole words or known
// phrases, never bare substrings, so "sábado" is not a "s".

var (
	affirmativeExact   = []string{"sim", "s", "ok", "yes", "claro", "perfeito", "isso", "confirmo", "confirma", "é isso"}
	affirmativePhrases = []string{"tudo certo", "pode ser", "pode confirmar"}

	negativeExact   = []string{"não", "nao", "n", "no", "sem"}
	negativePhrases = []string{"cancela", "desiste", "voltar", "não quero", "nao quero"}

	greetingWords = []string{"oi", "olá", "ola", "hey", "hi", "e aí", "eai", "bom dia", "boa tarde", "boa noite"}

	thanksWords = []string{"obrigado", "obrigada", "valeu", "brigado", "brigada", "thanks"}
)

func trimPunct(lower string) string {
	return strings.Trim(strings.TrimSpace(lower), "!?.,")
}

func isAffirmative(lower string) bool {
	t := trimPunct(lower)
	for _, w := range affirmativeExact {
		if t == w {
			return true
		}
	}
	for _, p := range affirmativePhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

func isNegative(lower string) bool {
	t := trimPunct(lower)
	for _, w := range negativeExact {
		if t == w {
			return true
		}
	}
	for _, p := range negativePhrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

// isGreeting matches short salutations. Long messages that happen to start
// with "oi" are treated as content, not greetings.
func isGreeting(text, lower string) bool {
	if len(strings.Fields(text)) > 3 {
		return false
	}
	t := trimPunct(lower)
	for _, w := range greetingWords {
		if t == w || strings.HasPrefix(t, w+" ") || strings.HasPrefix(t, w+",") {
			return true
		}
	}
	return false
}

func isThanks(lower string) bool {
	for _, w := range thanksWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func containsAny(lower string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
