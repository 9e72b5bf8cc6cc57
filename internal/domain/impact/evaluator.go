// Package impact decides whether a new debit may be committed against an
// account, given what is available on it right now.
//
//	CASH         exceeding the balance is refused
//	CHECKING     exceeding the balance needs explicit confirmation
//	CREDIT_CARD  exceeding the available limit is refused
package impact

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"carteira/internal/domain/account"
	"carteira/internal/domain/balance"
	"carteira/internal/shared/money"
)

type Severity string

const (
	SeverityProceed     Severity = "PROCEED"
	SeveritySoftWarning Severity = "SOFT_WARNING"
	SeverityHardBlock   Severity = "HARD_BLOCK"
)

var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInsufficientLimit      = errors.New("insufficient credit limit")
	ErrNegativeBalanceWarning = errors.New("operation leaves the account with a negative balance")
)

var (
	impactMeter          = otel.Meter("carteira/impact")
	impactEvaluations, _ = impactMeter.Int64Counter("impact.evaluations",
		metric.WithDescription("Impact evaluations by account kind and severity"),
	)
)

// Result is computed per request and never stored.
type Result struct {
	AccountID   string
	AccountKind account.Kind
	Available   decimal.Decimal
	Candidate   decimal.Decimal
	WillExceed  bool
	Severity    Severity
}

// Err returns nil when the operation may proceed, an *Error otherwise.
func (r *Result) Err() error {
	var sentinel error
	switch r.Severity {
	case SeverityProceed:
		return nil
	case SeveritySoftWarning:
		sentinel = ErrNegativeBalanceWarning
	default:
		sentinel = ErrInsufficientFunds
		if r.AccountKind == account.KindCreditCard {
			sentinel = ErrInsufficientLimit
		}
	}
	return &Error{Sentinel: sentinel, AccountID: r.AccountID, Kind: r.AccountKind, Available: r.Available}
}

// Error reports a blocked or unconfirmed operation with the amount that was
// available. errors.Is matches its sentinel.
type Error struct {
	Sentinel  error
	AccountID string
	Kind      account.Kind
	Available decimal.Decimal
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: available %s", e.Sentinel, money.FormatBRL(e.Available))
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Classify maps an account kind and the exceed flag to a severity.
func Classify(kind account.Kind, willExceed bool) Severity {
	if !willExceed {
		return SeverityProceed
	}
	if kind == account.KindChecking {
		return SeveritySoftWarning
	}
	return SeverityHardBlock
}

// AccountSource resolves an account owned by the user.
type AccountSource interface {
	GetAccount(ctx context.Context, userID, accountID string) (*account.Account, error)
}

// Evaluator checks candidate debits against projected balances.
type Evaluator struct {
	accounts  AccountSource
	projector *balance.Projector
}

func NewEvaluator(accounts AccountSource, projector *balance.Projector) *Evaluator {
	return &Evaluator{accounts: accounts, projector: projector}
}

// Evaluate loads the account and evaluates candidate against it.
func (e *Evaluator) Evaluate(ctx context.Context, userID, accountID string, candidate decimal.Decimal, excl balance.Exclusion) (*Result, error) {
	acc, err := e.accounts.GetAccount(ctx, userID, accountID)
	if err != nil {
		return nil, err
	}
	return e.EvaluateAccount(ctx, acc, candidate, excl)
}

// EvaluateAccount evaluates candidate against an already loaded account.
// A candidate equal to what is available does not exceed it.
func (e *Evaluator) EvaluateAccount(ctx context.Context, acc *account.Account, candidate decimal.Decimal, excl balance.Exclusion) (*Result, error) {
	available, err := e.projector.Available(ctx, acc, excl)
	if err != nil {
		return nil, err
	}

	willExceed := candidate.GreaterThan(available)
	res := &Result{
		AccountID:   acc.ID,
		AccountKind: acc.Kind,
		Available:   available,
		Candidate:   candidate,
		WillExceed:  willExceed,
		Severity:    Classify(acc.Kind, willExceed),
	}

	impactEvaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("account.kind", string(acc.Kind)),
		attribute.String("impact.severity", string(res.Severity)),
	))
	return res, nil
}
