package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create stores a new account
	Create(ctx context.Context, a *Account) error

	// GetByID retrieves an account by its ID, active or not
	GetByID(ctx context.Context, id string) (*Account, error)

	// ListActiveByUserID retrieves the user's active accounts ordered by name
	ListActiveByUserID(ctx context.Context, userID string) ([]*Account, error)

	// Update rewrites name, initial balance and credit limit
	Update(ctx context.Context, a *Account) error

	// Disable soft deletes an account
	Disable(ctx context.Context, id string) error
}
