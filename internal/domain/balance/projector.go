// Package balance derives account balances and card limit usage from the
// full ledger history. Nothing here is cached or written back.
package balance

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"carteira/internal/domain/account"
	"carteira/internal/domain/ledger"
)

var (
	ErrCardAccount    = errors.New("credit card accounts have no balance, use card usage")
	ErrNotCardAccount = errors.New("only credit card accounts have a limit usage")
)

// Exclusion leaves one record out of a projection, typically the one being
// edited so its old values are not counted twice.
type Exclusion struct {
	PostingID  string
	PurchaseID string
}

// Projector recomputes balances from postings and installments.
type Projector struct {
	ledger ledger.Repository
}

func NewProjector(repo ledger.Repository) *Projector {
	return &Projector{ledger: repo}
}

// Project returns the balance of a cash or checking account:
// initial + income in - expenses out - transfers out + transfers in.
func (p *Projector) Project(ctx context.Context, acc *account.Account, excl Exclusion) (decimal.Decimal, error) {
	if acc.IsCard() {
		return decimal.Zero, ErrCardAccount
	}

	postings, err := p.ledger.ListPostings(ctx, ledger.PostingFilter{
		UserID:    acc.UserID,
		AccountID: acc.ID,
		Role:      ledger.RoleAny,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("project balance of %s: %w", acc.ID, err)
	}

	total := acc.InitialBalance.Decimal
	for _, post := range postings {
		if excl.PostingID != "" && post.ID == excl.PostingID {
			continue
		}
		total = total.Add(Contribution(post, acc.ID))
	}
	return total, nil
}

// ProjectCardUsage returns the sum of all installments billed to a card.
func (p *Projector) ProjectCardUsage(ctx context.Context, acc *account.Account, excl Exclusion) (decimal.Decimal, error) {
	if !acc.IsCard() {
		return decimal.Zero, ErrNotCardAccount
	}

	items, err := p.ledger.ListInstallmentsByAccount(ctx, acc.UserID, acc.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("project card usage of %s: %w", acc.ID, err)
	}

	used := decimal.Zero
	for _, inst := range items {
		if excl.PurchaseID != "" && inst.PurchaseID == excl.PurchaseID {
			continue
		}
		used = used.Add(inst.Amount)
	}
	return used, nil
}

// Available is the spendable amount: the balance for cash and checking, the
// credit limit minus usage for cards.
func (p *Projector) Available(ctx context.Context, acc *account.Account, excl Exclusion) (decimal.Decimal, error) {
	if !acc.IsCard() {
		return p.Project(ctx, acc, excl)
	}
	used, err := p.ProjectCardUsage(ctx, acc, excl)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.CreditLimit.Decimal.Sub(used), nil
}

// Contribution is the signed effect of post on accountID.
func Contribution(post *ledger.Posting, accountID string) decimal.Decimal {
	origin := post.OriginAccountID != nil && *post.OriginAccountID == accountID
	dest := post.DestinationAccountID != nil && *post.DestinationAccountID == accountID

	switch post.Kind {
	case ledger.KindIncome:
		if dest {
			return post.Amount
		}
	case ledger.KindExpense:
		if origin {
			return post.Amount.Neg()
		}
	case ledger.KindTransfer:
		delta := decimal.Zero
		if origin {
			delta = delta.Sub(post.Amount)
		}
		if dest {
			delta = delta.Add(post.Amount)
		}
		return delta
	}
	return decimal.Zero
}
