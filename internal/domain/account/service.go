package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carteira/internal/shared/normalize"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateAccount creates a new account with business validation
func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	params.Name = normalize.Text(params.Name)

	if err := params.Validate(); err != nil {
		return nil, err
	}

	acc := &Account{
		ID:        params.ID,
		UserID:    params.UserID,
		Name:      params.Name,
		Kind:      params.Kind,
		Active:    true,
		CreatedAt: s.now().UTC(),
	}
	if params.InitialBalance != nil {
		acc.InitialBalance = decimal.NewNullDecimal(*params.InitialBalance)
	}
	if params.CreditLimit != nil {
		acc.CreditLimit = decimal.NewNullDecimal(*params.CreditLimit)
	}

	if err := s.repo.Create(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// GetAccount retrieves an account by ID and verifies user ownership
func (s *Service) GetAccount(ctx context.Context, userID, accountID string) (*Account, error) {
	acc, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	// Business rule: verify ownership
	if acc.UserID != userID {
		return nil, ErrForbidden
	}

	return acc, nil
}

// GetActiveAccount is GetAccount that also rejects soft deleted accounts.
func (s *Service) GetActiveAccount(ctx context.Context, userID, accountID string) (*Account, error) {
	acc, err := s.GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	if !acc.Active {
		return nil, ErrInactive
	}
	return acc, nil
}

// ListAccounts retrieves the active accounts of a user
func (s *Service) ListAccounts(ctx context.Context, userID string) ([]*Account, error) {
	if userID == "" {
		return nil, errors.New("valid user ID is required")
	}

	return s.repo.ListActiveByUserID(ctx, userID)
}

// UpdateAccount applies params after verifying ownership
func (s *Service) UpdateAccount(ctx context.Context, userID, accountID string, params UpdateParams) (*Account, error) {
	acc, err := s.GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}

	if err := params.Apply(acc); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// DisableAccount soft deletes an account after verifying ownership.
// Its history stays in place.
func (s *Service) DisableAccount(ctx context.Context, userID, accountID string) error {
	if _, err := s.GetAccount(ctx, userID, accountID); err != nil {
		return err
	}

	return s.repo.Disable(ctx, accountID)
}
