package processor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"github.com/alovak/settlement-playground/processor/models"
)

// Settle builds a settlement from a batch of candidate transactions. The
// settlement identifier is minted lazily when the first transaction is
// accepted; every accepted transaction carries it and is removed from the
// pending pool. Everything else lands in the unsettled list. Input order is
// preserved within both output lists.
func (s *Service) Settle(transactions []*models.Transaction) *models.Settlement {
	result := models.NewSettlement()
	for _, tx := range transactions {
		s.settleOne(result, tx)
	}

	pendingTransactions.Set(float64(s.pending.Size()))
	return result
}

// SettlementFromJSON rebuilds a settlement from its wire form. Transactions
// claiming the payload's settlement identifier are re-accepted as they are;
// transactions claiming a different, non-empty identifier belong to another
// batch and are logged and kept out of the accepted list; transactions with
// no identifier run through the acceptance check as if freshly presented.
func (s *Service) SettlementFromJSON(data []byte) (*models.Settlement, error) {
	var decoded struct {
		SettlementID string                `json:"settlement_id"`
		Transactions []*models.Transaction `json:"transactions"`
		Unsettled    []*models.Transaction `json:"unsettled"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("parsing settlement: %w", err)
	}

	result := models.NewSettlement()
	if decoded.SettlementID != "" {
		result.SettlementID = decoded.SettlementID
	}

	for _, tx := range decoded.Transactions {
		s.settleOne(result, tx)
	}
	result.Unsettled = append(result.Unsettled, decoded.Unsettled...)

	return result, nil
}

func (s *Service) settleOne(result *models.Settlement, tx *models.Transaction) {
	if !s.checkSettlementFields(tx) {
		result.Unsettled = append(result.Unsettled, tx)
		return
	}
	if tx.Approved == nil || !*tx.Approved || tx.ApprovalCode == "" {
		result.Unsettled = append(result.Unsettled, tx)
		return
	}

	// A transaction that already carries a settlement identifier was
	// committed before. It may only rejoin the batch holding the same
	// identifier; its identifier is never overwritten.
	if tx.SettlementID != "" {
		switch {
		case !result.Settled():
			result.SettlementID = tx.SettlementID
			result.Transactions = append(result.Transactions, tx)
		case tx.SettlementID == result.SettlementID:
			result.Transactions = append(result.Transactions, tx)
		default:
			s.logger.Info("transaction already settled in a different batch",
				slog.String("transaction_id", tx.ID),
				slog.String("settlement_id", tx.SettlementID),
			)
			result.Unsettled = append(result.Unsettled, tx)
		}
		return
	}

	if !result.Settled() {
		result.SettlementID = "settle_" + uuid.New().String()
	}
	tx.SettlementID = result.SettlementID
	result.Transactions = append(result.Transactions, tx)
	transactionsSettled.Inc()

	// Best effort: the settlement stands even when the pending pool no
	// longer holds this code.
	if _, err := s.pending.Settle(tx.ApprovalCode); err != nil {
		s.logger.Info("settled transaction was not in the pending pool",
			slog.String("approval_code", tx.ApprovalCode),
		)
	}
}

// checkSettlementFields verifies a transaction carries everything settlement
// needs: the approval outcome and approval code, the vendor/valid fields
// derived during card validation, and the merchant identification. Missing
// pieces are logged and route the transaction to the unsettled list.
func (s *Service) checkSettlementFields(tx *models.Transaction) bool {
	var missing []string

	if tx.Approved == nil {
		missing = append(missing, "approved not found in transaction data")
	}
	if tx.ApprovalCode == "" {
		missing = append(missing, "approval_code not found in transaction data")
	}
	if tx.Card.Type == "" {
		missing = append(missing, "type not found in card data")
	}
	if tx.Card.Valid == nil {
		missing = append(missing, "valid not found in card data")
	}
	if tx.MerchantData == nil || tx.MerchantData.Name == "" {
		missing = append(missing, "name not found in merchant data")
	}
	if tx.MerchantData == nil || tx.MerchantData.NetworkID == "" {
		missing = append(missing, "network_id not found in merchant data")
	}

	if len(missing) > 0 {
		s.logger.Info("transaction not accepted for settlement",
			slog.String("transaction_id", tx.ID),
			slog.String("reasons", strings.Join(missing, ", ")),
		)
		return false
	}
	return true
}
