package engine

import (
	"context"
	"fmt"
	"strings"

	statex "github.com/burgerhouse/orderchat/chat/state"
)

// dispatch routes the message to the handler for the current state. The
// greeting short-circuit runs first: a short salutation from a known
// customer re-identifies them no matter which state the machine is in.
func (e *Engine) dispatch(ctx context.Context, in *GraphState) (*GraphState, error) {
	if isGreeting(in.Text, in.Lower) {
		if reply, ok := e.greetKnownCustomer(ctx, in); ok {
			in.Reply = reply
			return in, nil
		}
	}

	var (
		reply string
		err   error
	)
	switch in.Session.State {
	case statex.StateAwaitingPhone:
		reply, err = e.handleAwaitingPhone(ctx, in)
	case statex.StateAwaitingPhoneAfterName:
		reply, err = e.handleAwaitingPhoneAfterName(ctx, in)
	case statex.StateAwaitingName:
		reply, err = e.handleAwaitingName(ctx, in)
	case statex.StateAwaitingNameFinal:
		reply, err = e.handleAwaitingNameFinal(ctx, in)
	case statex.StateAwaitingCEP:
		reply, err = e.handleAwaitingCEP(ctx, in)
	case statex.StateAwaitingNumber:
		reply, err = e.handleAwaitingNumber(ctx, in)
	case statex.StateAwaitingComplement:
		reply, err = e.handleAwaitingComplement(ctx, in)
	case statex.StateNeedPhoneForOrder:
		reply, err = e.handleNeedPhoneForOrder(ctx, in)
	case statex.StateRegistered:
		reply, err = e.handleRegistered(ctx, in)
	case statex.StateAwaitingChoice:
		reply, err = e.handleChoice(ctx, in)
	case statex.StateConfirmingProduct:
		reply, err = e.handlePackConfirm(ctx, in)
	case statex.StateAwaitingConfirmation:
		reply, err = e.handleConfirmation(ctx, in)
	case statex.StateAwaitingPayment:
		reply, err = e.handlePayment(ctx, in)
	case statex.StateAwaitingChange:
		reply, err = e.handleChange(ctx, in)
	default:
		in.Session.ResetRegistration()
		reply = msgAskPhoneFirst
	}
	if err != nil {
		return nil, err
	}
	in.Reply = reply
	return in, nil
}

// greetKnownCustomer re-identifies a returning customer on a salutation.
// A held tentative order is never dropped by a greeting.
func (e *Engine) greetKnownCustomer(ctx context.Context, in *GraphState) (string, bool) {
	s := in.Session
	customerID := s.Data.CustomerID
	if customerID == 0 {
		conv, err := e.conversations.BySession(ctx, s.SessionID)
		if err != nil {
			return "", false
		}
		customerID = conv.CustomerID
	}
	if customerID == 0 {
		return "", false
	}

	customer, err := e.customers.ByID(ctx, customerID)
	if err != nil {
		return "", false
	}

	s.Identify(customer)
	if s.Data.Tentative == nil {
		s.State = statex.StateRegistered
	}
	if err := e.conversations.BindCustomer(ctx, s.ConversationID, customer.ID); err != nil {
		return "", false
	}

	return msgWelcomeBack(customer.FirstName(), e.lastOrderLine(ctx, customer.ID)), true
}

// lastOrderLine renders the one-line most-recent-order summary appended to
// welcome messages. Empty when the customer has no orders.
func (e *Engine) lastOrderLine(ctx context.Context, customerID int64) string {
	orders, err := e.orders.RecentByCustomer(ctx, customerID, 3)
	if err != nil || len(orders) == 0 {
		return ""
	}
	o := orders[0]
	line := fmt.Sprintf("\n\nÚltimo pedido: #%d (%s) - R$ %.2f", o.ID, statusLabel(o.Status), o.Total)
	if len(orders) > 1 {
		line += "\nDigite 'pedidos' pra ver todos"
	}
	return line
}

func firstNameOf(s *statex.Session) string {
	if s == nil || s.Data.Name == "" {
		return "amigo"
	}
	if parts := strings.Fields(s.Data.Name); len(parts) > 0 {
		return parts[0]
	}
	return "amigo"
}
