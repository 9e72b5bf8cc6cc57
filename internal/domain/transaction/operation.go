package transaction

import (
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/domain/installment"
	"carteira/internal/domain/ledger"
)

// Operation is a validated transaction ready for the impact check. The only
// implementations are *SimplePosting, *TransferPosting and *CardPurchase,
// all built by Classify.
type Operation interface {
	Total() decimal.Decimal
	// debitAccount is the account the operation takes money from, if any.
	debitAccount() string
	kindLabel() string
}

// Details are the optional descriptive fields shared by every operation.
type Details struct {
	CategoryID    *string
	SubcategoryID *string
	Description   *string
}

// SimplePosting is an income into one account or an expense paid in cash or
// from a checking account.
type SimplePosting struct {
	Kind      ledger.PostingKind
	Amount    decimal.Decimal
	Date      time.Time
	AccountID string
	Method    ledger.PaymentMethod // expenses only
	Details
}

func (p *SimplePosting) Total() decimal.Decimal { return p.Amount }

func (p *SimplePosting) debitAccount() string {
	if p.Kind == ledger.KindExpense {
		return p.AccountID
	}
	return ""
}

func (p *SimplePosting) kindLabel() string { return string(p.Kind) }

func (p *SimplePosting) posting(id, userID string) *ledger.Posting {
	post := &ledger.Posting{
		ID:            id,
		UserID:        userID,
		Kind:          p.Kind,
		Amount:        p.Amount,
		Date:          p.Date,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		Description:   p.Description,
	}
	accountID := p.AccountID
	if p.Kind == ledger.KindIncome {
		post.DestinationAccountID = &accountID
	} else {
		method := p.Method
		post.OriginAccountID = &accountID
		post.PaymentMethod = &method
	}
	return post
}

// TransferPosting moves money between two of the user's accounts.
type TransferPosting struct {
	Amount               decimal.Decimal
	Date                 time.Time
	OriginAccountID      string
	DestinationAccountID string
	Details
}

func (p *TransferPosting) Total() decimal.Decimal { return p.Amount }
func (p *TransferPosting) debitAccount() string   { return p.OriginAccountID }
func (p *TransferPosting) kindLabel() string      { return string(ledger.KindTransfer) }

func (p *TransferPosting) posting(id, userID string) *ledger.Posting {
	origin, dest := p.OriginAccountID, p.DestinationAccountID
	return &ledger.Posting{
		ID:                   id,
		UserID:               userID,
		Kind:                 ledger.KindTransfer,
		Amount:               p.Amount,
		Date:                 p.Date,
		OriginAccountID:      &origin,
		DestinationAccountID: &dest,
		Description:          p.Description,
	}
}

// CardPurchase is an expense on a credit card, already split into its
// installment plan.
type CardPurchase struct {
	AccountID  string
	Amount     decimal.Decimal
	Date       time.Time
	Count      int
	FirstMonth installment.Month
	Entries    []installment.Entry
	Details
}

func (p *CardPurchase) Total() decimal.Decimal { return p.Amount }
func (p *CardPurchase) debitAccount() string   { return p.AccountID }
func (p *CardPurchase) kindLabel() string      { return "CARD_PURCHASE" }

func (p *CardPurchase) purchase(id, userID string) *ledger.CardPurchase {
	return &ledger.CardPurchase{
		ID:               id,
		UserID:           userID,
		AccountID:        p.AccountID,
		TotalAmount:      p.Amount,
		PurchaseDate:     p.Date,
		InstallmentCount: p.Count,
		CategoryID:       p.CategoryID,
		SubcategoryID:    p.SubcategoryID,
		Description:      p.Description,
		Installments:     ledger.NewInstallments(id, p.Entries),
	}
}
