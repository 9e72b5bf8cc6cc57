// Package inmemory provides map-backed stores for tests and for running the
// API without a database (DB_DRIVER=memory). Data is lost on restart.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"carteira/internal/domain/account"
)

// AccountStore is an in-memory implementation of account.Repository.
// It is safe for concurrent use.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account
}

// NewAccountStore creates an empty account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[string]*account.Account)}
}

func (s *AccountStore) Create(ctx context.Context, a *account.Account) error {
	if a.ID == "" {
		return fmt.Errorf("account ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return fmt.Errorf("account %s already exists", a.ID)
	}
	// Store a copy to avoid external modifications
	cp := *a
	s.accounts[a.ID] = &cp
	return nil
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *AccountStore) ListActiveByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*account.Account
	for _, a := range s.accounts {
		if a.UserID != userID || !a.Active {
			continue
		}
		cp := *a
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *AccountStore) Update(ctx context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.accounts[a.ID]
	if !ok {
		return account.ErrAccountNotFound
	}
	cur.Name = a.Name
	cur.InitialBalance = a.InitialBalance
	cur.CreditLimit = a.CreditLimit
	return nil
}

func (s *AccountStore) Disable(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	cur.Active = false
	return nil
}
