package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	statex "github.com/burgerhouse/orderchat/chat/state"
	storex "github.com/burgerhouse/orderchat/store"
)

var totalRe = regexp.MustCompile(`R\$ ([\d,.]+)`)

// recoverTentative rebuilds the order under confirmation after the in-memory
// session lost it (server restart, reconnect to a fresh worker). Durable
// sources are tried in order: the pending-order row, then the total printed
// in the last bot message, then the conversation row for the customer.
func (e *Engine) recoverTentative(ctx context.Context, in *GraphState) ([]storex.LineItem, float64, int64) {
	s := in.Session

	var items []storex.LineItem
	var total float64
	if t := s.Data.Tentative; t != nil {
		items = t.Items
		total = t.Total
	}
	customerID := s.Data.CustomerID

	if len(items) == 0 || total == 0 {
		pending, err := e.pending.ByConversation(ctx, s.ConversationID)
		if err == nil {
			items = pending.Items
			total = pending.Total
			if pending.CustomerID > 0 {
				customerID = pending.CustomerID
			}
			s.Data.Tentative = &statex.Tentative{Items: items, Total: total}
			log.Info().
				Int64("conversation_id", s.ConversationID).
				Int("items", len(items)).
				Float64("total", total).
				Msg("tentative order restored from pending store")
		} else if !errors.Is(err, contractx.ErrNotFound) {
			log.Warn().Err(err).Int64("conversation_id", s.ConversationID).Msg("pending lookup failed")
		}
	}

	if len(items) > 0 && total == 0 {
		if msg, err := e.messages.LastBot(ctx, s.ConversationID); err == nil {
			if recovered, ok := parseTotal(msg.Content); ok {
				total = recovered
			}
		}
	}

	if customerID == 0 {
		if conv, err := e.conversations.BySession(ctx, s.SessionID); err == nil && conv != nil && conv.CustomerID > 0 {
			customerID = conv.CustomerID
			s.Data.CustomerID = customerID
		}
	}

	return items, total, customerID
}

// parseTotal pulls the order total back out of a previously sent
// confirmation message. Best effort: only messages that carry the
// "Total: R$" line are considered.
func parseTotal(content string) (float64, bool) {
	if !strings.Contains(content, "Total: R$") {
		return 0, false
	}
	m := totalRe.FindStringSubmatch(content)
	if m == nil {
		return 0, false
	}
	raw := m[1]
	if strings.Contains(raw, ",") {
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	total, err := strconv.ParseFloat(raw, 64)
	if err != nil || total <= 0 {
		return 0, false
	}
	return total, true
}

// handleNeedPhoneForOrder re-identifies a customer whose confirmation
// arrived without a bound identity and resumes the held order if one is
// still on file.
func (e *Engine) handleNeedPhoneForOrder(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session

	phone := onlyDigits(in.Text)
	if len(phone) < 10 || len(phone) > 11 {
		return msgBadPhone, nil
	}

	customer, err := e.customers.ByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			s.Data = statex.Data{Phone: phone}
			s.State = statex.StateAwaitingCEP
			return "Não encontrei esse telefone cadastrado ainda.\n\nVamos fazer seu cadastro rapidinho! Qual é o seu CEP?", nil
		}
		return "", err
	}

	s.Identify(customer)
	if err := e.conversations.BindCustomer(ctx, s.ConversationID, customer.ID); err != nil {
		return "", err
	}

	pending, perr := e.pending.ByConversation(ctx, s.ConversationID)
	if perr == nil && len(pending.Items) > 0 {
		s.SetTentative(pending.Items, pending.Total)
		return fmt.Sprintf("Encontrei você, %s!\n\nSeu pedido:\n%s\n\nTotal: R$ %.2f\n\nTá tudo certo? Responde SIM ou NÃO",
			customer.Name, formatItems(pending.Items), pending.Total), nil
	}
	if perr != nil && !errors.Is(perr, contractx.ErrNotFound) {
		log.Warn().Err(perr).Int64("conversation_id", s.ConversationID).Msg("pending lookup failed")
	}

	s.State = statex.StateRegistered
	return fmt.Sprintf("Oi, %s! Te identifiquei aqui!\n\nO que você precisa hoje?%s",
		customer.FirstName(), e.lastOrderLine(ctx, customer.ID)), nil
}
