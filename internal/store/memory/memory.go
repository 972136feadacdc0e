package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"finance/internal/core"
	"finance/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps transactions in an in-process slice. State is lost on restart.
type Store struct {
	mu    sync.RWMutex
	items []core.Transaction
}

// New returns a store holding a copy of seed, in order.
func New(seed ...core.Transaction) *Store {
	return &Store{items: append([]core.Transaction(nil), seed...)}
}

// NewFromFile seeds the store from a JSON array of transactions.
// An empty path yields an empty store.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(), nil
	}
	seed, err := readSeed(path)
	if err != nil {
		return nil, err
	}
	return New(seed...), nil
}

// List returns a copy of all transactions in insertion order.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Insert appends t.
func (s *Store) Insert(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(t.ID) >= 0 {
		return store.ErrDuplicateID
	}
	s.items = append(s.items, t)
	return nil
}

// Update mutates the matching record in place.
func (s *Store) Update(_ context.Context, id string, patch core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, &core.NotFoundError{ID: id}
	}
	patch.Apply(&s.items[i])
	return s.items[i], nil
}

// Delete removes the matching record, keeping the order of the rest.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return &core.NotFoundError{ID: id}
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func readSeed(path string) ([]core.Transaction, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed []core.Transaction
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	seen := make(map[string]struct{}, len(seed))
	for _, t := range seed {
		if t.ID == "" {
			return nil, fmt.Errorf("seed file %s: transaction without id", path)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("seed file %s: %w: %s", path, store.ErrDuplicateID, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return seed, nil
}
