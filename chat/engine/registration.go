package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"

	contractx "github.com/burgerhouse/orderchat/chat/contract"
	statex "github.com/burgerhouse/orderchat/chat/state"
	storex "github.com/burgerhouse/orderchat/store"
)

// Registration collects phone, name and address in a strict order, with a
// phone-first and a name-first variant. Every validation failure re-prompts
// without advancing.

func (e *Engine) handleAwaitingPhone(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	phone := onlyDigits(in.Text)

	if len(phone) < 10 {
		// A two-word answer with letters usually means the customer typed
		// their name first. Redirect instead of rejecting.
		if looksLikeName(in.Text) {
			s.Data.Name = titleCase(in.Text)
			s.State = statex.StateAwaitingPhoneAfterName
			return msgNicePrazer(s.Data.Name, "Agora me passa seu telefone com DDD?"), nil
		}
		return msgBadPhone, nil
	}
	if len(phone) > 11 {
		phone = phone[len(phone)-11:]
	}

	customer, err := e.customers.ByPhone(ctx, phone)
	if err == nil {
		if err := e.bindCustomer(ctx, in, customer); err != nil {
			return "", err
		}
		return fmt.Sprintf("Oi, %s! Que bom te ver!%s\n\nO que você precisa?",
			customer.FirstName(), e.lastOrderLine(ctx, customer.ID)), nil
	}
	if !errors.Is(err, contractx.ErrNotFound) {
		return "", err
	}

	s.Data.Phone = phone
	s.State = statex.StateAwaitingName
	return msgAskFullName, nil
}

func (e *Engine) handleAwaitingPhoneAfterName(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	phone := onlyDigits(in.Text)

	if len(phone) < 10 {
		return msgBadPhone, nil
	}
	if len(phone) > 11 {
		phone = phone[len(phone)-11:]
	}

	customer, err := e.customers.ByPhone(ctx, phone)
	if err == nil {
		if err := e.bindCustomer(ctx, in, customer); err != nil {
			return "", err
		}
		return fmt.Sprintf("Oi, %s! Você já estava cadastrado!%s\n\nO que você precisa?",
			customer.FirstName(), e.lastOrderLine(ctx, customer.ID)), nil
	}
	if !errors.Is(err, contractx.ErrNotFound) {
		return "", err
	}

	s.Data.Phone = phone
	s.State = statex.StateAwaitingCEP
	return msgAskCEP, nil
}

func (e *Engine) handleAwaitingName(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	if len(strings.Fields(in.Text)) < 2 {
		return msgNeedFullName, nil
	}

	s.Data.Name = titleCase(in.Text)
	if len(s.Data.Phone) >= 10 {
		s.State = statex.StateAwaitingCEP
		return msgNicePrazer(s.Data.Name, msgAskCEP), nil
	}
	s.State = statex.StateAwaitingPhoneAfterName
	return msgNicePrazer(s.Data.Name, "Agora me passa seu telefone com DDD?"), nil
}

func (e *Engine) handleAwaitingCEP(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	cep := onlyDigits(in.Text)
	if len(cep) != 8 {
		return msgBadCEP, nil
	}

	addr, err := e.addresses.Lookup(ctx, cep)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return msgCEPNotFound, nil
		}
		log.Warn().Err(err).Str("cep", cep).Msg("address lookup failed")
		return msgCEPLookupDown, nil
	}

	s.Data.CEP = cep
	s.Data.Street = addr.Street
	s.Data.Neighborhood = addr.District
	s.Data.City = addr.City
	s.Data.Region = addr.Region
	s.State = statex.StateAwaitingNumber
	return msgAddressFound(addr.Street, addr.District, addr.City, addr.Region), nil
}

func (e *Engine) handleAwaitingNumber(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	// Any non-empty answer counts; house numbers like "321a" are real.
	s.Data.Number = strings.TrimSpace(in.Text)
	s.State = statex.StateAwaitingComplement
	return msgAskComplement, nil
}

func (e *Engine) handleAwaitingComplement(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session

	complement := ""
	switch trimPunct(in.Lower) {
	case "não", "nao", "sem", "nenhum", "n":
	default:
		complement = titleCase(in.Text)
	}
	s.Data.Complement = complement

	// Address update for an already-known customer.
	if s.Data.CustomerID > 0 {
		if err := e.customers.UpdateAddress(ctx, s.Data.CustomerID, customerFromSession(s)); err != nil {
			log.Error().Err(err).Int64("customer_id", s.Data.CustomerID).Msg("address update failed")
			s.State = statex.StateRegistered
			return "Endereço atualizado! Me fala o que você precisa!", nil
		}
		s.State = statex.StateRegistered
		return fmt.Sprintf("Perfeito, %s! Endereço atualizado!\n\nMe fala o que você precisa!%s",
			firstNameOf(s), e.lastOrderLine(ctx, s.Data.CustomerID)), nil
	}

	if len(s.Data.Phone) < 10 {
		s.ResetRegistration()
		return msgRestartReg, nil
	}
	if s.Data.Name == "" {
		s.State = statex.StateAwaitingNameFinal
		return msgAskNameFinal, nil
	}

	return e.createCustomer(ctx, in)
}

func (e *Engine) handleAwaitingNameFinal(ctx context.Context, in *GraphState) (string, error) {
	if len(strings.Fields(in.Text)) < 2 {
		return "Preciso do nome completo, tipo: Maria Santos", nil
	}
	in.Session.Data.Name = titleCase(in.Text)
	return e.createCustomer(ctx, in)
}

// createCustomer finishes registration. A phone-uniqueness conflict resolves
// to the existing row, so the reply is the same either way.
func (e *Engine) createCustomer(ctx context.Context, in *GraphState) (string, error) {
	s := in.Session
	customer, err := e.customers.Create(ctx, customerFromSession(s))
	if err != nil {
		log.Error().Err(err).Str("session_id", s.SessionID).Msg("customer create failed")
		s.ResetRegistration()
		return "Deu um erro aqui. Vamos recomeçar?\n\nMe passa seu telefone com DDD?", nil
	}

	if err := e.bindCustomer(ctx, in, customer); err != nil {
		return "", err
	}
	return fmt.Sprintf("Pronto, %s! Cadastro completo!\n\nMe fala o que você precisa!", customer.FirstName()), nil
}

// bindCustomer moves the session to registered and pins the conversation to
// the customer.
func (e *Engine) bindCustomer(ctx context.Context, in *GraphState, customer *storex.Customer) error {
	s := in.Session
	s.Identify(customer)
	s.State = statex.StateRegistered
	return e.conversations.BindCustomer(ctx, s.ConversationID, customer.ID)
}

func customerFromSession(s *statex.Session) *storex.Customer {
	return &storex.Customer{
		Name:         s.Data.Name,
		Phone:        s.Data.Phone,
		CEP:          s.Data.CEP,
		Address:      s.Data.Street,
		Number:       s.Data.Number,
		Complement:   s.Data.Complement,
		Neighborhood: s.Data.Neighborhood,
		City:         s.Data.City,
		State:        s.Data.Region,
	}
}

func looksLikeName(text string) bool {
	if !strings.Contains(text, " ") {
		return false
	}
	hasLetter := false
	for _, r := range text {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	return hasLetter && len(strings.Fields(text)) >= 2
}

func titleCase(text string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
