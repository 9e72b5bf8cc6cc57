package ledger

import "context"

// Repository defines the storage contract for postings and card purchases.
// Every read is scoped to the owning user.
type Repository interface {
	ListPostings(ctx context.Context, filter PostingFilter) ([]*Posting, error)
	GetPosting(ctx context.Context, userID, id string) (*Posting, error)
	InsertPosting(ctx context.Context, p *Posting) error
	UpdatePosting(ctx context.Context, p *Posting) error
	DeletePosting(ctx context.Context, userID, id string) error

	// ListInstallmentsByAccount returns every installment of every purchase
	// made on the card account.
	ListInstallmentsByAccount(ctx context.Context, userID, accountID string) ([]*Installment, error)

	// GetPurchase returns the purchase with its installments ordered by number.
	GetPurchase(ctx context.Context, userID, id string) (*CardPurchase, error)

	// InsertPurchaseWithInstallments writes the header and all installments
	// in one transaction. Nothing is stored if any row fails.
	InsertPurchaseWithInstallments(ctx context.Context, p *CardPurchase) error

	// UpdatePurchase rewrites the header and replaces the installment set
	// in one transaction.
	UpdatePurchase(ctx context.Context, p *CardPurchase) error

	// ReplaceInstallments deletes the purchase's installments and inserts
	// items in one transaction. A purchase userID does not own is
	// ErrPurchaseNotFound.
	ReplaceInstallments(ctx context.Context, userID, purchaseID string, items []Installment) error

	// DeletePurchase removes the purchase and, by cascade, its installments.
	DeletePurchase(ctx context.Context, userID, id string) error
}
