package memory

import (
	"context"
	"sync"

	"ledger/internal/core"
)

// Store keeps the ledger in process memory. Appends are serialized against
// readers so ids stay gapless and summaries see a consistent snapshot.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
	seen  map[string]struct{}
	cats  []string // first-appearance order
}

func New() *Store {
	return &Store{seen: make(map[string]struct{})}
}

// List returns a copy of all transactions in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), nil
}

// Append assigns the next id and stores the transaction at the end.
func (s *Store) Append(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := in.WithID(int64(len(s.items)) + 1)
	s.items = append(s.items, tx)
	if _, ok := s.seen[tx.Category]; !ok {
		s.seen[tx.Category] = struct{}{}
		s.cats = append(s.cats, tx.Category)
	}
	return tx, nil
}

// Categories returns the distinct categories used so far.
func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.cats...), nil
}
