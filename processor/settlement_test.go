package processor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alovak/settlement-playground/processor/models"
)

func TestSettleBatch(t *testing.T) {
	service := newTestService(nil)

	first := service.Validate(validTransaction(1999))
	second := service.Validate(validTransaction(2999))
	require.Equal(t, 2, service.PendingCount())

	settlement := service.Settle([]*models.Transaction{first, second})

	require.True(t, settlement.Settled())
	require.Regexp(t, "^settle_", settlement.SettlementID)
	require.Len(t, settlement.Transactions, 2)
	require.Empty(t, settlement.Unsettled)

	for _, tx := range settlement.Transactions {
		require.Equal(t, settlement.SettlementID, tx.SettlementID)
	}
	require.Zero(t, service.PendingCount())
}

func TestSettleNothingAcceptedKeepsPendingSentinel(t *testing.T) {
	service := newTestService(nil)

	// never validated, so it carries no approval outcome
	settlement := service.Settle([]*models.Transaction{validTransaction(1999)})

	require.False(t, settlement.Settled())
	require.Equal(t, models.PendingSettlementID, settlement.SettlementID)
	require.Empty(t, settlement.Transactions)
	require.Len(t, settlement.Unsettled, 1)
}

func TestSettleRejectsDeclinedTransaction(t *testing.T) {
	service := newTestService(nil)

	declined := validTransaction(1999)
	declined.Card.ID = "1234567890123456"
	service.Validate(declined)

	settlement := service.Settle([]*models.Transaction{declined})
	require.Empty(t, settlement.Transactions)
	require.Len(t, settlement.Unsettled, 1)
}

func TestSettlePreservesInputOrder(t *testing.T) {
	service := newTestService(nil)

	bad1 := validTransaction(100)
	good := service.Validate(validTransaction(200))
	bad2 := validTransaction(300)

	settlement := service.Settle([]*models.Transaction{bad1, good, bad2})

	require.Len(t, settlement.Transactions, 1)
	require.Same(t, good, settlement.Transactions[0])
	require.Len(t, settlement.Unsettled, 2)
	require.Same(t, bad1, settlement.Unsettled[0])
	require.Same(t, bad2, settlement.Unsettled[1])
}

func TestSettleIsIdempotent(t *testing.T) {
	service := newTestService(nil)

	tx := service.Validate(validTransaction(1999))
	first := service.Settle([]*models.Transaction{tx})
	require.True(t, first.Settled())

	// re-presenting the settled batch re-accepts it under the same id
	second := service.Settle([]*models.Transaction{tx})
	require.Equal(t, first.SettlementID, second.SettlementID)
	require.Len(t, second.Transactions, 1)
	require.Empty(t, second.Unsettled)
}

func TestSettleRejectsForeignSettlementID(t *testing.T) {
	service := newTestService(nil)

	first := service.Validate(validTransaction(1999))
	second := service.Validate(validTransaction(2999))
	first.SettlementID = "settle_batch_a"
	second.SettlementID = "settle_batch_b"

	settlement := service.Settle([]*models.Transaction{first, second})

	// the first committed transaction fixes the batch identifier; the
	// second belongs elsewhere and stays unsettled
	require.Equal(t, "settle_batch_a", settlement.SettlementID)
	require.Len(t, settlement.Transactions, 1)
	require.Same(t, first, settlement.Transactions[0])
	require.Len(t, settlement.Unsettled, 1)
	require.Same(t, second, settlement.Unsettled[0])
	require.Equal(t, "settle_batch_b", second.SettlementID)
}

func TestSettlementFromJSON(t *testing.T) {
	service := newTestService(nil)

	good := service.Validate(validTransaction(1999))
	bad := validTransaction(2999)
	settlement := service.Settle([]*models.Transaction{good, bad})
	require.True(t, settlement.Settled())

	data, err := json.Marshal(settlement)
	require.NoError(t, err)

	rebuilt, err := service.SettlementFromJSON(data)
	require.NoError(t, err)
	require.Equal(t, settlement.SettlementID, rebuilt.SettlementID)
	require.Len(t, rebuilt.Transactions, 1)
	require.Equal(t, good.ID, rebuilt.Transactions[0].ID)
	require.Len(t, rebuilt.Unsettled, 1)
	require.Equal(t, bad.ID, rebuilt.Unsettled[0].ID)
}

func TestSettlementFromJSONMalformed(t *testing.T) {
	service := newTestService(nil)

	_, err := service.SettlementFromJSON([]byte("not json"))
	require.Error(t, err)
}
