package processor

import (
	"fmt"
	"sync"

	"github.com/alovak/settlement-playground/processor/models"
)

var ErrNotFound = fmt.Errorf("not found")

// PendingStore holds authorized transactions awaiting settlement, keyed by
// approval code. It is the only shared mutable state in the processor and is
// safe for concurrent use.
type PendingStore struct {
	mu           sync.RWMutex
	transactions map[string]*models.Transaction
}

func NewPendingStore() *PendingStore {
	return &PendingStore{
		transactions: make(map[string]*models.Transaction),
	}
}

// Store adds a transaction under its approval code, overwriting any previous
// entry with the same code. Transactions without an approval code are
// refused.
func (p *PendingStore) Store(tx *models.Transaction) bool {
	if tx == nil || tx.ApprovalCode == "" {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.transactions[tx.ApprovalCode] = tx

	return true
}

// Settle removes and returns the transaction stored under the approval code.
// Removal happens exactly once: of any number of concurrent calls for the
// same code, one gets the transaction and the rest get ErrNotFound.
func (p *PendingStore) Settle(approvalCode string) (*models.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tx, ok := p.transactions[approvalCode]
	if !ok {
		return nil, fmt.Errorf("unsettled transaction %q: %w", approvalCode, ErrNotFound)
	}
	delete(p.transactions, approvalCode)

	return tx, nil
}

// Size returns the number of transactions awaiting settlement.
func (p *PendingStore) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.transactions)
}

// Keys returns a snapshot of the approval codes awaiting settlement.
func (p *PendingStore) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	keys := make([]string, 0, len(p.transactions))
	for key := range p.transactions {
		keys = append(keys, key)
	}
	return keys
}

// Transactions returns a snapshot of the transactions awaiting settlement.
func (p *PendingStore) Transactions() []*models.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	transactions := make([]*models.Transaction, 0, len(p.transactions))
	for _, tx := range p.transactions {
		transactions = append(transactions, tx)
	}
	return transactions
}
