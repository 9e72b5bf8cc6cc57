package inmemory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"carteira/internal/domain/ledger"
)

// LedgerStore is an in-memory implementation of ledger.Repository.
// Purchase writes replace the whole purchase under one lock, which gives the
// same all-or-nothing behavior as the SQL stores' transactions.
type LedgerStore struct {
	mu        sync.RWMutex
	postings  map[string]*ledger.Posting
	purchases map[string]*ledger.CardPurchase
}

// NewLedgerStore creates an empty ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		postings:  make(map[string]*ledger.Posting),
		purchases: make(map[string]*ledger.CardPurchase),
	}
}

func (s *LedgerStore) ListPostings(ctx context.Context, filter ledger.PostingFilter) ([]*ledger.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ledger.Posting
	for _, p := range s.postings {
		if !matches(p, filter) {
			continue
		}
		cp := *p
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func matches(p *ledger.Posting, f ledger.PostingFilter) bool {
	if f.UserID != "" && p.UserID != f.UserID {
		return false
	}
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, p.Kind) {
		return false
	}
	if f.AccountID == "" {
		return true
	}

	origin := p.OriginAccountID != nil && *p.OriginAccountID == f.AccountID
	dest := p.DestinationAccountID != nil && *p.DestinationAccountID == f.AccountID
	switch f.Role {
	case ledger.RoleOrigin:
		return origin
	case ledger.RoleDestination:
		return dest
	default:
		return origin || dest
	}
}

func (s *LedgerStore) GetPosting(ctx context.Context, userID, id string) (*ledger.Posting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.postings[id]
	if !ok || p.UserID != userID {
		return nil, ledger.ErrPostingNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *LedgerStore) InsertPosting(ctx context.Context, p *ledger.Posting) error {
	if p.ID == "" {
		return fmt.Errorf("posting ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.postings[p.ID]; exists {
		return fmt.Errorf("posting %s already exists", p.ID)
	}
	cp := *p
	s.postings[p.ID] = &cp
	return nil
}

func (s *LedgerStore) UpdatePosting(ctx context.Context, p *ledger.Posting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.postings[p.ID]
	if !ok || cur.UserID != p.UserID {
		return ledger.ErrPostingNotFound
	}
	cp := *p
	cp.CreatedAt = cur.CreatedAt
	s.postings[p.ID] = &cp
	return nil
}

func (s *LedgerStore) DeletePosting(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.postings[id]
	if !ok || p.UserID != userID {
		return ledger.ErrPostingNotFound
	}
	delete(s.postings, id)
	return nil
}

func (s *LedgerStore) ListInstallmentsByAccount(ctx context.Context, userID, accountID string) ([]*ledger.Installment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*ledger.Installment
	for _, purchase := range s.purchases {
		if purchase.UserID != userID || purchase.AccountID != accountID {
			continue
		}
		for _, inst := range purchase.Installments {
			cp := inst
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.CompetenceMonth != b.CompetenceMonth {
			return a.CompetenceMonth.Before(b.CompetenceMonth)
		}
		if a.PurchaseID != b.PurchaseID {
			return a.PurchaseID < b.PurchaseID
		}
		return a.Number < b.Number
	})
	return result, nil
}

func (s *LedgerStore) GetPurchase(ctx context.Context, userID, id string) (*ledger.CardPurchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.purchases[id]
	if !ok || p.UserID != userID {
		return nil, ledger.ErrPurchaseNotFound
	}
	return clonePurchase(p), nil
}

func (s *LedgerStore) InsertPurchaseWithInstallments(ctx context.Context, p *ledger.CardPurchase) error {
	if p.ID == "" {
		return fmt.Errorf("purchase ID is required")
	}
	if err := checkOwnership(p.ID, p.Installments); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.purchases[p.ID]; exists {
		return fmt.Errorf("purchase %s already exists", p.ID)
	}
	s.purchases[p.ID] = clonePurchase(p)
	return nil
}

func (s *LedgerStore) UpdatePurchase(ctx context.Context, p *ledger.CardPurchase) error {
	if err := checkOwnership(p.ID, p.Installments); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.purchases[p.ID]
	if !ok || cur.UserID != p.UserID {
		return ledger.ErrPurchaseNotFound
	}
	next := clonePurchase(p)
	next.CreatedAt = cur.CreatedAt
	s.purchases[p.ID] = next
	return nil
}

func (s *LedgerStore) ReplaceInstallments(ctx context.Context, userID, purchaseID string, items []ledger.Installment) error {
	if err := checkOwnership(purchaseID, items); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.purchases[purchaseID]
	if !ok || cur.UserID != userID {
		return ledger.ErrPurchaseNotFound
	}
	cur.Installments = slices.Clone(items)
	return nil
}

func (s *LedgerStore) DeletePurchase(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.purchases[id]
	if !ok || p.UserID != userID {
		return ledger.ErrPurchaseNotFound
	}
	delete(s.purchases, id)
	return nil
}

func checkOwnership(purchaseID string, items []ledger.Installment) error {
	for _, inst := range items {
		if inst.PurchaseID != purchaseID {
			return fmt.Errorf("installment %s belongs to purchase %s, not %s", inst.ID, inst.PurchaseID, purchaseID)
		}
	}
	return nil
}

func clonePurchase(p *ledger.CardPurchase) *ledger.CardPurchase {
	cp := *p
	cp.Installments = slices.Clone(p.Installments)
	return &cp
}
