package models

import (
	"github.com/google/uuid"
)

// MerchantData identifies the merchant presenting a transaction.
type MerchantData struct {
	Name      string `json:"name"`
	NetworkID string `json:"network_id"`
}

// Card carries the cardholder-provided details plus two fields derived during
// validation: Type (the matched vendor) and Valid. The derived fields are
// written once per validation pass and otherwise left untouched.
type Card struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	CardCode string  `json:"card_code"`
	Currency string  `json:"currency"`
	ExpMonth FlexInt `json:"exp_month"`
	ExpYear  FlexInt `json:"exp_year"`

	Type  string `json:"type,omitempty"`
	Valid *bool  `json:"valid,omitempty"`
}

// Transaction is a card transaction progressing through validation,
// authorization and settlement. Status fields use pointers or omitempty so
// that wire payloads only carry the outcomes that have been decided.
type Transaction struct {
	ID           string        `json:"id"`
	Card         Card          `json:"card"`
	MerchantData *MerchantData `json:"merchant_data,omitempty"`
	Amount       FlexInt       `json:"amount"`
	Currency     string        `json:"currency"`

	Approved       *bool  `json:"approved,omitempty"`
	FailureCode    int    `json:"failure_code,omitempty"`
	FailureMessage string `json:"failure_message,omitempty"`
	Authorized     *bool  `json:"authorized,omitempty"`
	ApprovalCode   string `json:"approval_code,omitempty"`
	SettlementID   string `json:"settlement_id,omitempty"`
}

// NewTransaction builds a transaction with a fresh identifier and the card
// details filled in. Amount and merchant data are set separately.
func NewTransaction(name, cardNumber, cardCode string, expMonth, expYear int, currency string) *Transaction {
	return &Transaction{
		ID:       "auth_" + uuid.New().String(),
		Currency: currency,
		Card: Card{
			ID:       cardNumber,
			Name:     name,
			CardCode: cardCode,
			Currency: currency,
			ExpMonth: FlexInt(expMonth),
			ExpYear:  FlexInt(expYear),
		},
	}
}

// SetAmount sets the transaction amount in minor currency units.
func (t *Transaction) SetAmount(amount int64, currency string) *Transaction {
	t.Amount = FlexInt(amount)
	t.Currency = currency
	return t
}

// SetMerchant sets the merchant descriptor.
func (t *Transaction) SetMerchant(name, networkID string) *Transaction {
	t.MerchantData = &MerchantData{Name: name, NetworkID: networkID}
	return t
}

// ReadyForRequest checks that the basic data needed for an approval decision
// is present: the cardholder and card fields, the merchant descriptor and a
// positive amount. It says nothing about the data's validity.
func (t *Transaction) ReadyForRequest() bool {
	hasCardInfo := t.Card.ID != "" && t.Card.Name != "" && t.Card.CardCode != "" &&
		t.Card.Currency != "" && t.Card.ExpMonth != 0 && t.Card.ExpYear != 0

	hasMerchantInfo := t.MerchantData != nil && t.MerchantData.Name != "" &&
		t.MerchantData.NetworkID != ""

	return t.ID != "" && hasCardInfo && hasMerchantInfo && t.Amount > 0
}
