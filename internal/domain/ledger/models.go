// Package ledger holds the recorded money movements of a user: postings
// (income, expense, transfer) and credit card purchases with their
// installments. Balances are never stored, they are derived from here.
package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carteira/internal/domain/installment"
)

type PostingKind string

const (
	KindIncome   PostingKind = "INCOME"
	KindExpense  PostingKind = "EXPENSE"
	KindTransfer PostingKind = "TRANSFER"
)

func (k PostingKind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	}
	return false
}

// PaymentMethod mirrors the account kind an expense is paid from.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "CASH"
	MethodChecking   PaymentMethod = "CHECKING"
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodChecking, MethodCreditCard:
		return true
	}
	return false
}

// Domain errors
var (
	ErrPostingNotFound  = errors.New("posting not found")
	ErrPurchaseNotFound = errors.New("card purchase not found")
)

// Posting is a single income, expense or transfer.
// Income has only a destination, expense only an origin, transfer both.
type Posting struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"userId"`
	Kind                 PostingKind     `json:"kind"`
	Amount               decimal.Decimal `json:"amount"`
	Date                 time.Time       `json:"date"`
	OriginAccountID      *string         `json:"originAccountId,omitempty"`
	DestinationAccountID *string         `json:"destinationAccountId,omitempty"`
	PaymentMethod        *PaymentMethod  `json:"paymentMethod,omitempty"`
	CategoryID           *string         `json:"categoryId,omitempty"`
	SubcategoryID        *string         `json:"subcategoryId,omitempty"`
	Description          *string         `json:"description,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// CardPurchase is a credit card purchase. It owns its installments: they are
// written, replaced and deleted together with it.
type CardPurchase struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	AccountID        string          `json:"accountId"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PurchaseDate     time.Time       `json:"purchaseDate"`
	InstallmentCount int             `json:"installmentCount"`
	CategoryID       *string         `json:"categoryId,omitempty"`
	SubcategoryID    *string         `json:"subcategoryId,omitempty"`
	Description      *string         `json:"description,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	Installments     []Installment   `json:"installments"`
}

// Installment is the share of a purchase billed in one competence month.
type Installment struct {
	ID              string            `json:"id"`
	PurchaseID      string            `json:"purchaseId"`
	Number          int               `json:"number"` // 1-based
	CompetenceMonth installment.Month `json:"competenceMonth"`
	Amount          decimal.Decimal   `json:"amount"`
}

// NewInstallments turns a plan into rows owned by purchaseID, numbered from 1.
func NewInstallments(purchaseID string, entries []installment.Entry) []Installment {
	rows := make([]Installment, len(entries))
	for i, e := range entries {
		rows[i] = Installment{
			ID:              uuid.NewString(),
			PurchaseID:      purchaseID,
			Number:          i + 1,
			CompetenceMonth: e.Month,
			Amount:          e.Amount,
		}
	}
	return rows
}

// Entries converts stored installments back to a plan.
func (p *CardPurchase) Entries() []installment.Entry {
	entries := make([]installment.Entry, len(p.Installments))
	for i, inst := range p.Installments {
		entries[i] = installment.Entry{Month: inst.CompetenceMonth, Amount: inst.Amount}
	}
	return entries
}

// FirstMonth is the competence month of installment number 1.
func (p *CardPurchase) FirstMonth() installment.Month {
	var first installment.Month
	for i, inst := range p.Installments {
		if i == 0 || inst.CompetenceMonth.Before(first) {
			first = inst.CompetenceMonth
		}
	}
	return first
}

// Role selects which side of a posting an account filter matches.
type Role int

const (
	RoleAny Role = iota
	RoleOrigin
	RoleDestination
)

// PostingFilter narrows ListPostings. Zero values mean "no constraint".
type PostingFilter struct {
	UserID    string
	AccountID string
	Role      Role
	Kinds     []PostingKind
}
