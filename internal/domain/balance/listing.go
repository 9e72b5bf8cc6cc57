package balance

import (
	"context"

	"github.com/shopspring/decimal"

	"carteira/internal/domain/account"
)

// AccountBalance is an account with its derived figures. For cards Balance is
// the used limit and AvailableLimit is set.
type AccountBalance struct {
	Account        *account.Account
	Balance        decimal.Decimal
	AvailableLimit decimal.NullDecimal
}

// Balances projects every account in order.
func (p *Projector) Balances(ctx context.Context, accounts []*account.Account) ([]AccountBalance, error) {
	out := make([]AccountBalance, 0, len(accounts))
	for _, acc := range accounts {
		row, err := p.balanceOf(ctx, acc)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (p *Projector) balanceOf(ctx context.Context, acc *account.Account) (AccountBalance, error) {
	if !acc.IsCard() {
		bal, err := p.Project(ctx, acc, Exclusion{})
		if err != nil {
			return AccountBalance{}, err
		}
		return AccountBalance{Account: acc, Balance: bal}, nil
	}

	used, err := p.ProjectCardUsage(ctx, acc, Exclusion{})
	if err != nil {
		return AccountBalance{}, err
	}
	return AccountBalance{
		Account:        acc,
		Balance:        used,
		AvailableLimit: decimal.NewNullDecimal(acc.CreditLimit.Decimal.Sub(used)),
	}, nil
}
