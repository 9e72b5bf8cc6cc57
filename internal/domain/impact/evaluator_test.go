package impact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carteira/internal/domain/account"
	"carteira/internal/domain/balance"
	"carteira/internal/domain/installment"
	"carteira/internal/domain/ledger"
	"carteira/internal/infrastructure/inmemory"
	"carteira/internal/shared/money"
)

const userID = "0b6f1e2c-8c1a-4d0e-b7a2-4f5e6d7c8b9a"

func TestClassifyPolicyTable(t *testing.T) {
	tests := []struct {
		kind       account.Kind
		willExceed bool
		want       Severity
	}{
		{account.KindCash, false, SeverityProceed},
		{account.KindCash, true, SeverityHardBlock},
		{account.KindChecking, false, SeverityProceed},
		{account.KindChecking, true, SeveritySoftWarning},
		{account.KindCreditCard, false, SeverityProceed},
		{account.KindCreditCard, true, SeverityHardBlock},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.kind, tt.willExceed))
		})
	}
}

func TestResultErr(t *testing.T) {
	tests := []struct {
		kind     account.Kind
		severity Severity
		want     error
	}{
		{account.KindCash, SeverityHardBlock, ErrInsufficientFunds},
		{account.KindCreditCard, SeverityHardBlock, ErrInsufficientLimit},
		{account.KindChecking, SeveritySoftWarning, ErrNegativeBalanceWarning},
	}
	for _, tt := range tests {
		r := &Result{AccountID: "a", AccountKind: tt.kind, Severity: tt.severity, Available: money.MustParse("12.50")}
		err := r.Err()
		require.ErrorIs(t, err, tt.want)

		var impactErr *Error
		require.True(t, errors.As(err, &impactErr))
		assert.Equal(t, "12.50", money.Format(impactErr.Available))
		assert.Contains(t, err.Error(), "R$ 12,50")
	}

	assert.NoError(t, (&Result{Severity: SeverityProceed}).Err())
}

func setup(t *testing.T, accounts ...*account.Account) (*Evaluator, *inmemory.LedgerStore) {
	t.Helper()
	accStore := inmemory.NewAccountStore()
	for _, a := range accounts {
		require.NoError(t, accStore.Create(context.Background(), a))
	}
	ledgerStore := inmemory.NewLedgerStore()
	return NewEvaluator(account.NewService(accStore), balance.NewProjector(ledgerStore)), ledgerStore
}

func newAccount(id string, kind account.Kind, amount string) *account.Account {
	a := &account.Account{ID: id, UserID: userID, Name: id, Kind: kind, Active: true}
	if kind == account.KindCreditCard {
		a.CreditLimit = decimal.NewNullDecimal(money.MustParse(amount))
	} else {
		a.InitialBalance = decimal.NewNullDecimal(money.MustParse(amount))
	}
	return a
}

func TestEvaluateCheckingSoftWarning(t *testing.T) {
	ev, _ := setup(t, newAccount("chk", account.KindChecking, "50.00"))

	res, err := ev.Evaluate(context.Background(), userID, "chk", money.MustParse("80.00"), balance.Exclusion{})
	require.NoError(t, err)

	assert.Equal(t, "50.00", money.Format(res.Available))
	assert.True(t, res.WillExceed)
	assert.Equal(t, SeveritySoftWarning, res.Severity)
	assert.ErrorIs(t, res.Err(), ErrNegativeBalanceWarning)
}

func TestEvaluateCashExactBalanceProceeds(t *testing.T) {
	ev, _ := setup(t, newAccount("cash", account.KindCash, "20.00"))

	res, err := ev.Evaluate(context.Background(), userID, "cash", money.MustParse("20.00"), balance.Exclusion{})
	require.NoError(t, err)
	assert.False(t, res.WillExceed)
	assert.Equal(t, SeverityProceed, res.Severity)

	res, err = ev.Evaluate(context.Background(), userID, "cash", money.MustParse("20.01"), balance.Exclusion{})
	require.NoError(t, err)
	assert.Equal(t, SeverityHardBlock, res.Severity)
	assert.ErrorIs(t, res.Err(), ErrInsufficientFunds)
}

func TestEvaluateCardAgainstAvailableLimit(t *testing.T) {
	ev, store := setup(t, newAccount("visa", account.KindCreditCard, "1000.00"))

	entries, err := installment.Generate(money.MustParse("300.00"), 3, installment.Month{Year: 2024, Month: time.January})
	require.NoError(t, err)
	require.NoError(t, store.InsertPurchaseWithInstallments(context.Background(), &ledger.CardPurchase{
		ID: "buy-1", UserID: userID, AccountID: "visa", TotalAmount: money.MustParse("300.00"),
		InstallmentCount: 3, Installments: ledger.NewInstallments("buy-1", entries),
	}))

	res, err := ev.Evaluate(context.Background(), userID, "visa", money.MustParse("700.01"), balance.Exclusion{})
	require.NoError(t, err)
	assert.Equal(t, "700.00", money.Format(res.Available))
	assert.ErrorIs(t, res.Err(), ErrInsufficientLimit)

	// Editing buy-1 itself frees its share of the limit.
	res, err = ev.Evaluate(context.Background(), userID, "visa", money.MustParse("1000.00"), balance.Exclusion{PurchaseID: "buy-1"})
	require.NoError(t, err)
	assert.Equal(t, SeverityProceed, res.Severity)
}

func TestEvaluateUnknownAccount(t *testing.T) {
	ev, _ := setup(t)
	_, err := ev.Evaluate(context.Background(), userID, "missing", money.MustParse("1"), balance.Exclusion{})
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
}
