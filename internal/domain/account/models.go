package account

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"carteira/internal/shared/normalize"
)

type Kind string

const (
	KindCash       Kind = "CASH"
	KindChecking   Kind = "CHECKING"
	KindCreditCard Kind = "CREDIT_CARD"
)

// Valid reports whether k is one of the supported account kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindCash, KindChecking, KindCreditCard:
		return true
	}
	return false
}

// Domain errors
var (
	ErrInvalidKind     = errors.New("invalid account kind")
	ErrAccountNotFound = errors.New("account not found")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInactive        = errors.New("account is inactive")
)

const minNameLength = 2

// Account is a place money sits (cash, checking) or a credit line (card).
// Exactly one of InitialBalance and CreditLimit is set, matching Kind.
type Account struct {
	ID             string              `json:"id"`
	UserID         string              `json:"userId"`
	Name           string              `json:"name"`
	Kind           Kind                `json:"kind"`
	InitialBalance decimal.NullDecimal `json:"initialBalance"`
	CreditLimit    decimal.NullDecimal `json:"creditLimit"`
	Active         bool                `json:"active"` // false means soft deleted
	CreatedAt      time.Time           `json:"createdAt"`
}

func (a *Account) IsCard() bool {
	return a.Kind == KindCreditCard
}

// CreateParams contains parameters for creating a new account
type CreateParams struct {
	ID             string
	UserID         string
	Name           string
	Kind           Kind
	InitialBalance *decimal.Decimal
	CreditLimit    *decimal.Decimal
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("account ID is required")
	}
	if p.UserID == "" {
		return errors.New("valid user ID is required")
	}
	if utf8.RuneCountInString(normalize.Text(p.Name)) < minNameLength {
		return fmt.Errorf("%w: account name must have at least %d characters", ErrInvalidInput, minNameLength)
	}
	if !p.Kind.Valid() {
		return ErrInvalidKind
	}

	if p.Kind == KindCreditCard {
		if p.CreditLimit == nil || !p.CreditLimit.IsPositive() {
			return fmt.Errorf("%w: credit card requires a credit limit greater than zero", ErrInvalidInput)
		}
		if p.InitialBalance != nil {
			return fmt.Errorf("%w: credit card cannot have an initial balance", ErrInvalidInput)
		}
		return nil
	}

	if p.InitialBalance == nil || p.InitialBalance.IsNegative() {
		return fmt.Errorf("%w: initial balance must be zero or greater", ErrInvalidInput)
	}
	if p.CreditLimit != nil {
		return fmt.Errorf("%w: only credit cards have a credit limit", ErrInvalidInput)
	}
	return nil
}

// UpdateParams contains parameters for updating an account. Kind never changes.
type UpdateParams struct {
	Name           *string
	InitialBalance *decimal.Decimal
	CreditLimit    *decimal.Decimal
}

// Apply validates p against the account's kind and copies the set fields.
func (p UpdateParams) Apply(a *Account) error {
	if p.Name != nil {
		name := normalize.Text(*p.Name)
		if utf8.RuneCountInString(name) < minNameLength {
			return fmt.Errorf("%w: account name must have at least %d characters", ErrInvalidInput, minNameLength)
		}
		a.Name = name
	}

	if p.InitialBalance != nil {
		if a.IsCard() {
			return fmt.Errorf("%w: credit card cannot have an initial balance", ErrInvalidInput)
		}
		if p.InitialBalance.IsNegative() {
			return fmt.Errorf("%w: balance cannot be negative", ErrInvalidInput)
		}
		a.InitialBalance = decimal.NewNullDecimal(*p.InitialBalance)
	}

	if p.CreditLimit != nil {
		if !a.IsCard() {
			return fmt.Errorf("%w: only credit cards have a credit limit", ErrInvalidInput)
		}
		if !p.CreditLimit.IsPositive() {
			return fmt.Errorf("%w: credit limit must be greater than zero", ErrInvalidInput)
		}
		a.CreditLimit = decimal.NewNullDecimal(*p.CreditLimit)
	}
	return nil
}
