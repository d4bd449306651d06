package models

// PendingSettlementID is the sentinel a settlement carries until its first
// transaction is accepted. A settlement still holding it has no identifier
// and is not valid for persistence.
const PendingSettlementID = "pending"

// Settlement is a batch of transactions committed together. Accepted
// transactions all carry SettlementID; rejected ones sit in Unsettled,
// untouched, in their input order.
type Settlement struct {
	SettlementID string         `json:"settlement_id"`
	Transactions []*Transaction `json:"transactions"`
	Unsettled    []*Transaction `json:"unsettled"`
}

// NewSettlement returns an empty settlement with the pending sentinel. The
// lists are non-nil so they serialize as empty arrays.
func NewSettlement() *Settlement {
	return &Settlement{
		SettlementID: PendingSettlementID,
		Transactions: []*Transaction{},
		Unsettled:    []*Transaction{},
	}
}

// Settled reports whether at least one transaction was accepted and the
// settlement identifier was minted.
func (s *Settlement) Settled() bool {
	return s.SettlementID != "" && s.SettlementID != PendingSettlementID
}
