// Package engine owns the conversation state machine. Each inbound message
// runs through a compiled pipeline: validate, load session, persist the
// inbound message, dispatch to the handler for the current state, persist
// the reply.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	statex "github.com/burgerhouse/orderchat/chat/state"
	storex "github.com/burgerhouse/orderchat/store"
)

type Deps struct {
	Sessions      statex.Store
	Conversations contractx.ConversationStore
	Messages      contractx.MessageStore
	Pending       contractx.PendingOrderStore
	Customers     contractx.CustomerStore
	Orders        contractx.OrderStore
	Catalog       contractx.ProductCatalog
	// Responder is optional; without it every message takes the
	// deterministic path.
	Responder contractx.Responder
	Addresses contractx.AddressLookup
}

type Engine struct {
	sessions      statex.Store
	conversations contractx.ConversationStore
	messages      contractx.MessageStore
	pending       contractx.PendingOrderStore
	customers     contractx.CustomerStore
	orders        contractx.OrderStore
	catalog       contractx.ProductCatalog
	responder     contractx.Responder
	addresses     contractx.AddressLookup

	graphRunner compose.Runnable[GraphInput, GraphOutput]

	now func() time.Time
}

func New(d Deps) (*Engine, error) {
	if d.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if d.Conversations == nil {
		return nil, errors.New("conversation store is required")
	}
	if d.Messages == nil {
		return nil, errors.New("message store is required")
	}
	if d.Pending == nil {
		return nil, errors.New("pending order store is required")
	}
	if d.Customers == nil {
		return nil, errors.New("customer store is required")
	}
	if d.Orders == nil {
		return nil, errors.New("order store is required")
	}
	if d.Catalog == nil {
		return nil, errors.New("product catalog is required")
	}
	if d.Addresses == nil {
		return nil, errors.New("address lookup is required")
	}

	e := &Engine{
		sessions:      d.Sessions,
		conversations: d.Conversations,
		messages:      d.Messages,
		pending:       d.Pending,
		customers:     d.Customers,
		orders:        d.Orders,
		catalog:       d.Catalog,
		responder:     d.Responder,
		addresses:     d.Addresses,
		now:           time.Now,
	}

	graphRunner, err := e.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	e.graphRunner = graphRunner

	return e, nil
}

// HandleMessage processes one inbound message and returns the reply. The
// caller is responsible for serializing calls per session.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	out, err := e.graphRunner.Invoke(ctx, GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// BootstrapResult is what a fresh connection gets back: the restored
// history, or a welcome message when the conversation is new.
type BootstrapResult struct {
	Conversation *storex.Conversation
	History      []storex.Message
	Welcome      *storex.Message
}

// Bootstrap prepares the session for a new connection: finds or creates the
// conversation, re-identifies the customer, restores a pending order into
// confirmation state, and emits a welcome message for empty conversations.
// customerID is the logged-in customer, zero when anonymous.
func (e *Engine) Bootstrap(ctx context.Context, sessionID string, customerID int64) (*BootstrapResult, error) {
	session, conv, customer, err := e.bootstrapSession(ctx, sessionID, customerID)
	if err != nil {
		return nil, err
	}
	if err := e.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	history, err := e.messages.History(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	res := &BootstrapResult{Conversation: conv, History: history}
	if len(history) > 0 {
		return res, nil
	}

	welcome := msgAskPhoneFirst
	if customer != nil {
		welcome = msgWelcomeKnown(customer.FirstName(), e.lastOrderLine(ctx, customer.ID))
	}
	msg, err := e.messages.Append(ctx, conv.ID, storex.SenderBot, welcome)
	if err != nil {
		return nil, err
	}
	res.Welcome = msg
	return res, nil
}

// bootstrapSession builds the in-memory session for a connection. Pending
// orders survive reconnects: when one exists the session comes back in
// confirmation state with the tentative order rehydrated.
func (e *Engine) bootstrapSession(ctx context.Context, sessionID string, customerID int64) (*statex.Session, *storex.Conversation, *storex.Customer, error) {
	conv, err := e.conversations.BySession(ctx, sessionID)
	if errors.Is(err, contractx.ErrNotFound) {
		conv, err = e.conversations.Create(ctx, sessionID)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	if customerID == 0 {
		customerID = conv.CustomerID
	}
	var customer *storex.Customer
	if customerID > 0 {
		customer, err = e.customers.ByID(ctx, customerID)
		if err != nil && !errors.Is(err, contractx.ErrNotFound) {
			return nil, nil, nil, err
		}
	}

	if customer == nil {
		return statex.NewSession(sessionID, conv.ID, statex.StateAwaitingPhone, e.now()), conv, nil, nil
	}

	if err := e.conversations.BindCustomer(ctx, conv.ID, customer.ID); err != nil {
		return nil, nil, nil, err
	}

	session := statex.NewSession(sessionID, conv.ID, statex.StateRegistered, e.now())
	session.Identify(customer)

	po, err := e.pending.ByConversation(ctx, conv.ID)
	if err == nil && len(po.Items) > 0 {
		session.SetTentative(po.Items, po.Total)
		log.Info().
			Str("session_id", sessionID).
			Int64("conversation_id", conv.ID).
			Float64("total", po.Total).
			Msg("pending order restored on reconnect")
	} else if err != nil && !errors.Is(err, contractx.ErrNotFound) {
		return nil, nil, nil, err
	}

	return session, conv, customer, nil
}

// loadSession is the pipeline node behind HandleMessage: it reuses the live
// session or rebuilds one from durable state after a restart.
func (e *Engine) loadSession(ctx context.Context, in *GraphState) (*GraphState, error) {
	session, err := e.sessions.Load(ctx, in.SessionID)
	if err == nil {
		in.Session = session
		return in, nil
	}
	if !errors.Is(err, statex.ErrStateNotFound) {
		return nil, err
	}

	session, _, _, err = e.bootstrapSession(ctx, in.SessionID, 0)
	if err != nil {
		return nil, err
	}
	in.Session = session
	return in, nil
}

func (e *Engine) appendInbound(ctx context.Context, in *GraphState) (*GraphState, error) {
	if _, err := e.messages.Append(ctx, in.Session.ConversationID, storex.SenderUser, in.Text); err != nil {
		return nil, err
	}
	return in, nil
}

func (e *Engine) appendOutbound(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in.Reply == "" {
		return in, nil
	}
	if _, err := e.messages.Append(ctx, in.Session.ConversationID, storex.SenderBot, in.Reply); err != nil {
		return nil, err
	}
	if err := e.conversations.Touch(ctx, in.Session.ConversationID); err != nil {
		log.Warn().Err(err).Int64("conversation_id", in.Session.ConversationID).Msg("touch conversation failed")
	}
	return in, nil
}

func (e *Engine) finalizeReply(ctx context.Context, in *GraphState) (GraphOutput, error) {
	in.Session.Touch(in.Now)
	if err := e.sessions.Save(ctx, in.Session); err != nil {
		return GraphOutput{}, err
	}
	return GraphOutput{Reply: in.Reply}, nil
}
