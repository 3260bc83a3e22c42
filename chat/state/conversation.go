package state

import (
	"errors"
	"fmt"
	"time"

	storex "github.com/burgerhouse/orderchat/store"
)

// State enumerates the dialogue states. Each inbound message is handled by
// exactly one handler selected solely by the current state.
type State string

const (
	StateAwaitingPhone          State = "awaiting_phone"
	StateAwaitingName           State = "awaiting_name"
	StateAwaitingPhoneAfterName State = "awaiting_phone_after_name"
	StateAwaitingCEP            State = "awaiting_cep"
	StateAwaitingNumber         State = "awaiting_number"
	StateAwaitingComplement     State = "awaiting_complement"
	StateAwaitingNameFinal      State = "awaiting_name_final"
	StateRegistered             State = "registered"
	StateAwaitingChoice         State = "awaiting_choice"
	StateConfirmingProduct      State = "confirming_product"
	StateAwaitingConfirmation   State = "awaiting_order_confirmation"
	StateAwaitingPayment        State = "awaiting_payment_method"
	StateAwaitingChange         State = "awaiting_change"
	StateNeedPhoneForOrder      State = "need_phone_for_order"
)

var (
	ErrNilSession     = errors.New("session is nil")
	ErrInvalidSession = errors.New("session id is empty")
	ErrNoTentative    = errors.New("no tentative order")
)

// Choice is the awaiting_choice sub-state: a numbered candidate list plus
// the quantity the customer already asked for.
type Choice struct {
	Candidates []storex.Product `json:"candidates"`
	Quantity   int              `json:"quantity"`
}

// PackConfirm is the confirming_product sub-state: a pack item offered for a
// small quantity, held until the customer approves the multiplied units.
type PackConfirm struct {
	Items []storex.LineItem `json:"items"`
	Total float64           `json:"total"`
}

// Tentative is an order proposed but not yet confirmed. It is durably
// mirrored in the pending-order store.
type Tentative struct {
	Items []storex.LineItem `json:"items"`
	Total float64           `json:"total"`
}

// Data carries the per-conversation scratch fields. Registration fields are
// plain values; sub-states are pointers so a conversation that is not in the
// sub-state carries nothing for it.
type Data struct {
	CustomerID int64  `json:"customer_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`

	CEP          string `json:"cep,omitempty"`
	Street       string `json:"street,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	Region       string `json:"region,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`

	Choice      *Choice      `json:"choice,omitempty"`
	PackConfirm *PackConfirm `json:"pack_confirm,omitempty"`
	Tentative   *Tentative   `json:"tentative,omitempty"`

	// CommittedOrderID is set between commit and payment-method selection.
	CommittedOrderID int64 `json:"committed_order_id,omitempty"`
}

// Session is the in-memory dialogue state for one realtime session. It is
// owned by the session registry and mutated only under the per-session lock.
type Session struct {
	SessionID      string    `json:"session_id"`
	ConversationID int64     `json:"conversation_id"`
	State          State     `json:"state"`
	Data           Data      `json:"data"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewSession(sessionID string, conversationID int64, initial State, now time.Time) *Session {
	return &Session{
		SessionID:      sessionID,
		ConversationID: conversationID,
		State:          initial,
		UpdatedAt:      now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// Identified reports whether the session is bound to a known customer.
func (s *Session) Identified() bool {
	return s != nil && s.Data.CustomerID > 0
}

// Identify binds the session to a customer and clears stale registration
// scratch that belonged to whoever was typing before.
func (s *Session) Identify(c *storex.Customer) {
	if s == nil || c == nil {
		return
	}
	s.Data.CustomerID = c.ID
	s.Data.Name = c.Name
	s.Data.Phone = c.Phone
}

// SetTentative records a tentative order and moves to confirmation.
func (s *Session) SetTentative(items []storex.LineItem, total float64) {
	s.Data.Tentative = &Tentative{Items: items, Total: total}
	s.Data.Choice = nil
	s.Data.PackConfirm = nil
	s.State = StateAwaitingConfirmation
}

// ClearTentative drops the in-memory tentative order.
func (s *Session) ClearTentative() {
	s.Data.Tentative = nil
	s.Data.PackConfirm = nil
	s.Data.Choice = nil
}

// ResetRegistration wipes the data bag and restarts the collection flow.
func (s *Session) ResetRegistration() {
	s.Data = Data{}
	s.State = StateAwaitingPhone
}

func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if s.SessionID == "" {
		return ErrInvalidSession
	}
	switch s.State {
	case StateAwaitingChoice:
		if s.Data.Choice == nil || len(s.Data.Choice.Candidates) == 0 {
			return fmt.Errorf("state %s requires candidates", s.State)
		}
	case StateConfirmingProduct:
		if s.Data.PackConfirm == nil || len(s.Data.PackConfirm.Items) == 0 {
			return fmt.Errorf("state %s requires a held pack order", s.State)
		}
	}
	return nil
}
