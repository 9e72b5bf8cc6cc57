package account

import (
	"context"
	"errors"
	"testing"
)

// MockRepository is a mock implementation of Repository interface
type MockRepository struct {
	CreateFunc             func(ctx context.Context, a *Account) error
	GetByIDFunc            func(ctx context.Context, id string) (*Account, error)
	ListActiveByUserIDFunc func(ctx context.Context, userID string) ([]*Account, error)
	UpdateFunc             func(ctx context.Context, a *Account) error
	DisableFunc            func(ctx context.Context, id string) error
}

func (m *MockRepository) Create(ctx context.Context, a *Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, a)
	}
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrAccountNotFound
}

func (m *MockRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*Account, error) {
	if m.ListActiveByUserIDFunc != nil {
		return m.ListActiveByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockRepository) Update(ctx context.Context, a *Account) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, a)
	}
	return nil
}

func (m *MockRepository) Disable(ctx context.Context, id string) error {
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx, id)
	}
	return nil
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		params  CreateParams
		mock    func() *MockRepository
		wantErr bool
		errType error
	}{
		{
			name: "Success",
			params: CreateParams{
				UserID:         "user-1",
				Name:           "  Conta   Corrente ",
				Kind:           KindChecking,
				InitialBalance: dec("100.00"),
			},
			mock: func() *MockRepository {
				return &MockRepository{}
			},
		},
		{
			name: "Invalid Kind",
			params: CreateParams{
				UserID:         "user-1",
				Name:           "Poupança",
				Kind:           "SAVINGS",
				InitialBalance: dec("0"),
			},
			mock: func() *MockRepository {
				return &MockRepository{}
			},
			wantErr: true,
			errType: ErrInvalidKind,
		},
		{
			name: "Card Without Limit",
			params: CreateParams{
				UserID: "user-1",
				Name:   "Nubank",
				Kind:   KindCreditCard,
			},
			mock: func() *MockRepository {
				return &MockRepository{}
			},
			wantErr: true,
			errType: ErrInvalidInput,
		},
		{
			name: "Repository Error",
			params: CreateParams{
				UserID:         "user-1",
				Name:           "Carteira",
				Kind:           KindCash,
				InitialBalance: dec("0"),
			},
			mock: func() *MockRepository {
				return &MockRepository{
					CreateFunc: func(ctx context.Context, a *Account) error {
						return errors.New("db error")
					},
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(tt.mock())

			acc, err := service.CreateAccount(ctx, tt.params)

			if tt.wantErr {
				if err == nil {
					t.Errorf("CreateAccount() expected error, got nil")
				}
				if tt.errType != nil && !errors.Is(err, tt.errType) {
					t.Errorf("CreateAccount() expected error type %v, got %v", tt.errType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateAccount() unexpected error: %v", err)
			}
			if acc.ID == "" {
				t.Error("CreateAccount() expected a generated ID")
			}
			if !acc.Active {
				t.Error("CreateAccount() new accounts must be active")
			}
			if acc.Name != "Conta Corrente" {
				t.Errorf("CreateAccount() name = %q, want normalized", acc.Name)
			}
			if !acc.InitialBalance.Valid || acc.CreditLimit.Valid {
				t.Errorf("CreateAccount() balance/limit = %+v / %+v", acc.InitialBalance, acc.CreditLimit)
			}
		})
	}
}

func TestGetAccount(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		accountID string
		userID    string
		mock      func() *MockRepository
		wantErr   error
	}{
		{
			name:      "Success",
			accountID: "acc-123",
			userID:    "user-1",
			mock: func() *MockRepository {
				return &MockRepository{
					GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
						return &Account{ID: id, UserID: "user-1", Active: true}, nil
					},
				}
			},
		},
		{
			name:      "Not Found",
			accountID: "acc-999",
			userID:    "user-1",
			mock: func() *MockRepository {
				return &MockRepository{}
			},
			wantErr: ErrAccountNotFound,
		},
		{
			name:      "Forbidden",
			accountID: "acc-123",
			userID:    "user-2",
			mock: func() *MockRepository {
				return &MockRepository{
					GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
						return &Account{ID: id, UserID: "user-1"}, nil
					},
				}
			},
			wantErr: ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewService(tt.mock())
			acc, err := service.GetAccount(ctx, tt.userID, tt.accountID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetAccount() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetAccount() unexpected error: %v", err)
			}
			if acc.ID != tt.accountID {
				t.Errorf("GetAccount() ID = %s, want %s", acc.ID, tt.accountID)
			}
		})
	}
}

func TestGetActiveAccount(t *testing.T) {
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
			return &Account{ID: id, UserID: "user-1", Active: false}, nil
		},
	}
	_, err := NewService(repo).GetActiveAccount(context.Background(), "user-1", "acc-1")
	if !errors.Is(err, ErrInactive) {
		t.Errorf("GetActiveAccount() error = %v, want %v", err, ErrInactive)
	}
}

func TestUpdateAccount(t *testing.T) {
	var saved *Account
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
			return &Account{ID: id, UserID: "user-1", Kind: KindCash, Name: "Carteira", Active: true}, nil
		},
		UpdateFunc: func(ctx context.Context, a *Account) error {
			saved = a
			return nil
		},
	}
	service := NewService(repo)

	name := "Dinheiro"
	if _, err := service.UpdateAccount(context.Background(), "user-1", "acc-1", UpdateParams{Name: &name, InitialBalance: dec("20")}); err != nil {
		t.Fatalf("UpdateAccount() unexpected error: %v", err)
	}
	if saved == nil || saved.Name != "Dinheiro" || saved.InitialBalance.Decimal.String() != "20" {
		t.Errorf("UpdateAccount() saved = %+v", saved)
	}

	saved = nil
	_, err := service.UpdateAccount(context.Background(), "user-1", "acc-1", UpdateParams{CreditLimit: dec("100")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpdateAccount() error = %v, want %v", err, ErrInvalidInput)
	}
	if saved != nil {
		t.Error("UpdateAccount() must not persist rejected changes")
	}
}

func TestDisableAccount(t *testing.T) {
	disabled := ""
	repo := &MockRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*Account, error) {
			return &Account{ID: id, UserID: "user-1", Active: true}, nil
		},
		DisableFunc: func(ctx context.Context, id string) error {
			disabled = id
			return nil
		},
	}
	service := NewService(repo)

	if err := service.DisableAccount(context.Background(), "user-2", "acc-1"); !errors.Is(err, ErrForbidden) {
		t.Errorf("DisableAccount() other user error = %v", err)
	}
	if disabled != "" {
		t.Fatal("DisableAccount() disabled an account the user does not own")
	}
	if err := service.DisableAccount(context.Background(), "user-1", "acc-1"); err != nil {
		t.Fatalf("DisableAccount() unexpected error: %v", err)
	}
	if disabled != "acc-1" {
		t.Errorf("DisableAccount() disabled %q", disabled)
	}
}

func TestListAccountsRequiresUser(t *testing.T) {
	if _, err := NewService(&MockRepository{}).ListAccounts(context.Background(), ""); err == nil {
		t.Error("ListAccounts() expected error for empty user")
	}
}
