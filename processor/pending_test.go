package processor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPendingStoreSettleRemovesExactlyOnce(t *testing.T) {
	pending := NewPendingStore()

	tx := validTransaction(1999)
	tx.ApprovalCode = "appr_test"
	require.True(t, pending.Store(tx))
	require.Equal(t, 1, pending.Size())

	settled, err := pending.Settle("appr_test")
	require.NoError(t, err)
	require.Same(t, tx, settled)
	require.Zero(t, pending.Size())

	_, err = pending.Settle("appr_test")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPendingStoreRefusesMissingApprovalCode(t *testing.T) {
	pending := NewPendingStore()

	require.False(t, pending.Store(nil))
	require.False(t, pending.Store(validTransaction(1999)))
	require.Zero(t, pending.Size())
}

func TestPendingStoreOverwritesSameCode(t *testing.T) {
	pending := NewPendingStore()

	first := validTransaction(100)
	first.ApprovalCode = "appr_dup"
	second := validTransaction(200)
	second.ApprovalCode = "appr_dup"

	pending.Store(first)
	pending.Store(second)
	require.Equal(t, 1, pending.Size())

	settled, err := pending.Settle("appr_dup")
	require.NoError(t, err)
	require.Same(t, second, settled)
}

func TestPendingStoreConcurrentSettle(t *testing.T) {
	pending := NewPendingStore()

	tx := validTransaction(1999)
	tx.ApprovalCode = "appr_race"
	pending.Store(tx)

	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := pending.Settle("appr_race"); err == nil {
				atomic.AddInt64(&wins, 1)
			} else if !errors.Is(err, ErrNotFound) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, wins)
	require.Zero(t, pending.Size())
}

func TestPendingStoreSnapshots(t *testing.T) {
	pending := NewPendingStore()

	first := validTransaction(100)
	first.ApprovalCode = "appr_1"
	second := validTransaction(200)
	second.ApprovalCode = "appr_2"
	pending.Store(first)
	pending.Store(second)

	require.ElementsMatch(t, []string{"appr_1", "appr_2"}, pending.Keys())
	require.Len(t, pending.Transactions(), 2)

	// snapshots are independent of the store
	keys := pending.Keys()
	pending.Settle("appr_1")
	require.Len(t, keys, 2)
	require.Equal(t, 1, pending.Size())
}
