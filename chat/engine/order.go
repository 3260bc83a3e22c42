package engine

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/burgerhouse/orderchat/chat/assistant"
	contractx "github.com/burgerhouse/orderchat/chat/contract"
	"github.com/burgerhouse/orderchat/chat/resolver"
	statex "github.com/burgerhouse/orderchat/chat/state"
	storex "github.com/burgerhouse/orderchat/store"
)

var digitsRe = regexp.MustCompile(`\d+`)

// handleRegistered is the resting-state handler: keyword fast paths first,
// then the AI collaborator when configured, then the deterministic resolver.
func (e *Engine) handleRegistered(ctx context.Context, in *GraphState) (string, error) {
	lower := in.Lower

	switch {
	case containsAny(lower, "produtos", "produto", "catalogo", "catálogo", "cardapio", "cardápio", "menu", "o que tem", "que vende"):
		return e.replyCatalog(ctx)
	case containsAny(lower, "meus pedidos", "meu pedido", "pedidos"):
		return e.replyMyOrders(ctx, in)
	case containsAny(lower, "acompanhar", "rastrear", "status", "onde está", "cadê"):
		return e.replyTrackOrder(ctx, in)
	case isThanks(lower):
		return "Por nada! Precisando, é só chamar!", nil
	case containsAny(lower, "horário", "horario", "abre", "fecha", "funcionamento"):
		return msgHours, nil
	}

	if e.responder != nil {
		if reply, handled := e.respondWithAI(ctx, in); handled {
			return reply, nil
		}
	}
	return e.resolveOrder(ctx, in)
}

func (e *Engine) replyCatalog(ctx context.Context) (string, error) {
	products, err := e.catalog.Active(ctx)
	if err != nil {
		return "", err
	}
	if len(products) == 0 {
		return "Tô sem produtos cadastrados no momento. Entra em contato pelo WhatsApp (31) 99212-2844!", nil
	}
	if len(products) > 10 {
		products = products[:10]
	}
	lines := make([]string, 0, len(products))
	for _, p := range products {
		line := fmt.Sprintf("• %s - R$ %.2f", p.Name, p.Price)
		if p.Description != "" {
			line += "\n   " + p.Description
		}
		lines = append(lines, line)
	}
	return fmt.Sprintf("Nossos produtos:\n\n%s\n\nPra fazer um pedido, é só me falar o que você quer!", strings.Join(lines, "\n")), nil
}

func (e *Engine) replyMyOrders(ctx context.Context, in *GraphState) (string, error) {
	customerID := in.Session.Data.CustomerID
	if customerID == 0 {
		in.Session.State = statex.StateNeedPhoneForOrder
		return "Pra ver seus pedidos, preciso te identificar.\n\nMe passa seu telefone com DDD?", nil
	}
	orders, err := e.orders.RecentByCustomer(ctx, customerID, 5)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "Você ainda não tem pedidos!\n\nQuer fazer o primeiro? É só me falar o que precisa!", nil
	}
	lines := make([]string, 0, len(orders))
	for _, o := range orders {
		lines = append(lines, fmt.Sprintf("#%d (%s) - R$ %.2f", o.ID, statusLabel(o.Status), o.Total))
	}
	return fmt.Sprintf("Seus pedidos:\n\n%s\n\nAcesse 'Meus Pedidos' no menu para ver mais detalhes!", strings.Join(lines, "\n")), nil
}

func (e *Engine) replyTrackOrder(ctx context.Context, in *GraphState) (string, error) {
	num := digitsRe.FindString(in.Text)
	if num == "" {
		return msgAskOrderNumber, nil
	}
	var orderID int64
	for _, r := range num {
		orderID = orderID*10 + int64(r-'0')
	}
	status, err := e.orders.Status(ctx, orderID)
	if err != nil {
		return fmt.Sprintf("Não achei o pedido #%d. Confere o número?", orderID), nil
	}
	return fmt.Sprintf("Pedido #%d: %s\n\nQuer mais detalhes? Clica em 'Meus Pedidos' no menu!", orderID, statusLabel(status)), nil
}

// respondWithAI consults the collaborator. Any error falls through silently
// to the deterministic path; an embedded order action is revalidated with
// the same rules the resolver applies.
func (e *Engine) respondWithAI(ctx context.Context, in *GraphState) (string, bool) {
	products, err := e.catalog.Active(ctx)
	if err != nil {
		return "", false
	}

	var customer *storex.Customer
	if id := in.Session.Data.CustomerID; id > 0 {
		customer, _ = e.customers.ByID(ctx, id)
	}

	text, err := e.responder.Respond(ctx, in.Text, contractx.PromptContext{
		Customer: customer,
		Products: products,
	})
	if err != nil {
		log.Warn().Err(err).Str("session_id", in.SessionID).Msg("responder unavailable, using resolver")
		return "", false
	}

	action, cleaned := assistant.ExtractOrderAction(text)
	if action == nil {
		cleaned = strings.TrimSpace(cleaned)
		return cleaned, cleaned != ""
	}

	byID := func(id int64) *storex.Product {
		for i := range products {
			if products[i].ID == id {
				return &products[i]
			}
		}
		return nil
	}
	out, ok := resolver.FromAction(action, byID)
	if !ok {
		cleaned = strings.TrimSpace(cleaned)
		return cleaned, cleaned != ""
	}
	reply, err := e.applyOutcome(ctx, in, out)
	if err != nil {
		log.Warn().Err(err).Msg("apply ai order action failed")
		return "", false
	}
	return reply, true
}

// resolveOrder is the deterministic path.
func (e *Engine) resolveOrder(ctx context.Context, in *GraphState) (string, error) {
	products, err := e.catalog.Active(ctx)
	if err != nil {
		return "", err
	}

	out := resolver.Resolve(in.Text, products)
	if out.Kind == resolver.KindNoIntent {
		return fmt.Sprintf("Oi, %s! Em que posso te ajudar?", firstNameOf(in.Session)), nil
	}
	if out.Kind == resolver.KindNoMatch {
		if out.Group != "" {
			return msgNoGroupMatch(out.Group), nil
		}
		return msgCatalogSample(products), nil
	}
	return e.applyOutcome(ctx, in, out)
}

// applyOutcome turns a resolver outcome into state transitions and a reply.
func (e *Engine) applyOutcome(ctx context.Context, in *GraphState, out resolver.Outcome) (string, error) {
	s := in.Session
	switch out.Kind {
	case resolver.KindStockShort:
		return msgStockShort(out.Product), nil

	case resolver.KindChoice:
		s.Data.Choice = &statex.Choice{Candidates: out.Candidates, Quantity: out.Quantity}
		s.State = statex.StateAwaitingChoice
		return msgChoiceList(out.Candidates), nil

	case resolver.KindPackConfirm:
		s.Data.PackConfirm = &statex.PackConfirm{Items: out.Items, Total: out.Total}
		s.State = statex.StateConfirmingProduct
		return msgPackClarify(out.Items[0].Name, out.Items[0].Quantity, out.Units, out.Total), nil

	case resolver.KindTentative:
		e.setTentative(ctx, s, out.Items, out.Total)
		return msgConfirmOrder(out.Items, out.Total), nil
	}
	return msgConfirmUnclear, nil
}

// setTentative records the tentative order in memory and mirrors it into
// the pending-order store. The mirror write is best effort; the order is
// still confirmable from memory if it fails.
func (e *Engine) setTentative(ctx context.Context, s *statex.Session, items []storex.LineItem, total float64) {
	s.SetTentative(items, total)
	err := e.pending.Replace(ctx, &storex.PendingOrder{
		ConversationID: s.ConversationID,
		CustomerID:     s.Data.CustomerID,
		Items:          items,
		Total:          total,
		CreatedAt:      e.now(),
	})
	if err != nil {
		log.Warn().Err(err).Int64("conversation_id", s.ConversationID).Msg("pending order mirror failed")
	}
}

// handleChoice resolves a reply to a pending numbered list.
func (e *Engine) handleChoice(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	choice := s.Data.Choice

	out, ok := resolver.Pick(in.Text, choice)
	if ok {
		s.Data.Choice = nil
		if s.State == statex.StateAwaitingChoice {
			s.State = statex.StateRegistered
		}
		return e.applyOutcome(ctx, in, out)
	}

	// Free-text description: try a name search, the way "qual burger?"
	// answers like "o de bacon" arrive.
	products, err := e.catalog.SearchActive(ctx, trimPunct(in.Lower))
	if err == nil {
		switch len(products) {
		case 1:
			p := products[0]
			qty := 1
			if choice != nil && choice.Quantity > 0 {
				qty = choice.Quantity
			}
			if p.Stock < qty {
				s.Data.Choice = nil
				s.State = statex.StateRegistered
				return msgStockShort(&p), nil
			}
			s.Data.Choice = nil
			item := storex.LineItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: qty}
			e.setTentative(ctx, s, []storex.LineItem{item}, item.Total())
			return msgConfirmOrder([]storex.LineItem{item}, item.Total()), nil
		case 0:
		default:
			s.Data.Choice = &statex.Choice{Candidates: products, Quantity: choice.Quantity}
			return msgChoiceList(products), nil
		}
	}

	if choice != nil {
		return msgChoiceList(choice.Candidates), nil
	}
	s.State = statex.StateRegistered
	return msgConfirmUnclear, nil
}

// handlePackConfirm waits for a yes on the multiplied pack reading.
func (e *Engine) handlePackConfirm(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	held := s.Data.PackConfirm

	if isAffirmative(in.Lower) && held != nil {
		s.Data.PackConfirm = nil
		e.setTentative(ctx, s, held.Items, held.Total)
		return msgConfirmOrder(held.Items, held.Total), nil
	}

	s.Data.PackConfirm = nil
	s.State = statex.StateRegistered
	return "Sem problemas! Posso te ajudar em algo mais?", nil
}
