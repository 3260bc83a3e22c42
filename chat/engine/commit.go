package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	statex "github.com/burgerhouse/orderchat/chat/state"
	storex "github.com/burgerhouse/orderchat/store"
)

// handleConfirmation is the awaiting_order_confirmation handler: yes
// commits, no cancels, anything else re-displays the held order.
func (e *Engine) handleConfirmation(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session

	if isAffirmative(in.Lower) {
		return e.commit(ctx, in)
	}

	if isNegative(in.Lower) {
		s.ClearTentative()
		s.State = statex.StateRegistered
		if err := e.pending.Delete(ctx, s.ConversationID); err != nil {
			log.Warn().Err(err).Int64("conversation_id", s.ConversationID).Msg("pending delete failed on cancel")
		}
		return fmt.Sprintf("Tranquilo, %s! Sem problema.\n\nSe quiser pedir outra coisa, é só me falar!", firstNameOf(s)), nil
	}

	if t := s.Data.Tentative; t != nil {
		return msgReshowOrder(t.Items, t.Total), nil
	}
	return msgConfirmUnclear, nil
}

// commit turns the tentative order into a permanent one. Recovery runs
// first when memory lost the tentative fields; any step that cannot
// complete leaves the state re-promptable instead of advancing.
func (e *Engine) commit(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session

	items, total, customerID := e.recoverTentative(ctx, in)

	if len(items) == 0 {
		if customerID == 0 {
			s.State = statex.StateNeedPhoneForOrder
			return msgNeedPhoneOrder, nil
		}
		// Nothing to recover: treat the message as a fresh order request.
		s.ClearTentative()
		s.State = statex.StateRegistered
		if err := e.pending.Delete(ctx, s.ConversationID); err != nil {
			log.Warn().Err(err).Msg("pending delete failed")
		}
		return e.resolveOrder(ctx, in)
	}
	if customerID == 0 {
		s.State = statex.StateNeedPhoneForOrder
		return msgNeedPhoneOrder, nil
	}
	if total == 0 {
		total = storex.SumItems(items)
	}

	customer, err := e.customers.ByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			s.State = statex.StateNeedPhoneForOrder
			return "Não encontrei seu cadastro. Pode me informar seu telefone para eu te encontrar?", nil
		}
		return msgCommitFailed, nil
	}

	order := &storex.Order{
		CustomerID:      customerID,
		Subtotal:        storex.SumItems(items),
		Shipping:        0,
		Discount:        0,
		Total:           total,
		Status:          "pending",
		PaymentMethod:   "pending",
		ShippingAddress: shippingAddress(customer),
		Notes:           "Pedido via chat",
	}
	orderID, err := e.orders.Create(ctx, order, items)
	if err != nil {
		if errors.Is(err, contractx.ErrDuplicate) {
			// An order for this confirmation already exists. Idempotent
			// near-success, never a raw error.
			s.ClearTentative()
			s.State = statex.StateRegistered
			if derr := e.pending.Delete(ctx, s.ConversationID); derr != nil {
				log.Warn().Err(derr).Msg("pending delete failed")
			}
			return msgDuplicateOrder, nil
		}
		log.Error().Err(err).Int64("conversation_id", s.ConversationID).Msg("order commit failed")
		s.State = statex.StateAwaitingConfirmation
		return msgCommitFailed, nil
	}

	if err := e.pending.Delete(ctx, s.ConversationID); err != nil {
		log.Warn().Err(err).Int64("conversation_id", s.ConversationID).Msg("pending delete failed after commit")
	}
	s.ClearTentative()
	s.Data.CommittedOrderID = orderID
	s.State = statex.StateAwaitingPayment

	log.Info().
		Int64("order_id", orderID).
		Int64("customer_id", customerID).
		Float64("total", total).
		Msg("order committed")

	return msgOrderCommitted(orderID, items, total), nil
}

func (e *Engine) handlePayment(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	lower := in.Lower

	var method string
	switch {
	case containsAny(lower, "1", "dinheiro", "cash"):
		s.State = statex.StateAwaitingChange
		return msgAskChange, nil
	case containsAny(lower, "2", "cartao", "cartão", "card"):
		method = "cartao"
	case containsAny(lower, "3", "pix"):
		method = "pix"
	default:
		return msgAskPayment, nil
	}

	orderID := s.Data.CommittedOrderID
	if orderID == 0 {
		s.State = statex.StateRegistered
		return "Não achei um pedido aberto aqui. Me fala o que você precisa!", nil
	}
	if err := e.orders.SetPayment(ctx, orderID, method, ""); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("set payment failed")
		return "Ops, não consegui registrar. Tenta de novo: 1, 2 ou 3", nil
	}

	s.Data.CommittedOrderID = 0
	s.State = statex.StateRegistered
	return msgOrderFinalized(orderID, "Forma de pagamento: "+strings.ToUpper(method)), nil
}

func (e *Engine) handleChange(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session

	change := ""
	switch {
	case containsAny(in.Lower, "não", "nao", "sem"):
		change = "Não precisa de troco"
	default:
		if num := digitsRe.FindString(in.Text); num != "" {
			change = fmt.Sprintf("Troco para R$ %s,00", num)
		} else {
			change = strings.TrimSpace(in.Text)
		}
	}

	orderID := s.Data.CommittedOrderID
	if orderID == 0 {
		s.State = statex.StateRegistered
		return "Não achei um pedido aberto aqui. Me fala o que você precisa!", nil
	}
	if err := e.orders.SetPayment(ctx, orderID, "dinheiro", change); err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Msg("set payment failed")
		return "Ops, não consegui registrar. Me diz de novo o troco?", nil
	}

	s.Data.CommittedOrderID = 0
	s.State = statex.StateRegistered
	return msgOrderFinalized(orderID, "Forma de pagamento: Dinheiro\n"+change), nil
}

func shippingAddress(c *storex.Customer) string {
	complement := c.Complement
	if complement != "" {
		complement = " " + complement
	}
	return fmt.Sprintf("%s, %s%s - %s, %s/%s", c.Address, c.Number, complement, c.Neighborhood, c.City, c.State)
}
