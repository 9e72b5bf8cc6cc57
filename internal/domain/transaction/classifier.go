package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/domain/installment"
	"carteira/internal/domain/ledger"
	"carteira/internal/shared/money"
	"carteira/internal/shared/normalize"
)

// ErrValidation matches every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError names the request field that is missing or contradictory.
type ValidationError struct {
	Field  string
	Reason string
	Err    error // optional cause, e.g. installment.ErrInconsistentInstallments
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Request is the raw create/edit payload. Amounts are decimal strings.
type Request struct {
	Kind                  ledger.PostingKind   `json:"kind"`
	Amount                string               `json:"amount"`
	Date                  string               `json:"date"` // YYYY-MM-DD
	OriginAccountID       string               `json:"originAccountId,omitempty"`
	DestinationAccountID  string               `json:"destinationAccountId,omitempty"`
	PaymentMethod         ledger.PaymentMethod `json:"paymentMethod,omitempty"`
	InstallmentCount      int                  `json:"installmentCount,omitempty"`
	FirstInstallmentMonth string               `json:"firstInstallmentMonth,omitempty"` // YYYY-MM
	InstallmentAmounts    []string             `json:"installmentAmounts,omitempty"`
	CategoryID            string               `json:"categoryId,omitempty"`
	SubcategoryID         string               `json:"subcategoryId,omitempty"`
	Description           string               `json:"description,omitempty"`
}

const dateLayout = "2006-01-02"

// Classify validates req and turns it into an Operation. It never touches
// storage; account existence and kinds are checked when committing.
func Classify(userID string, req Request) (Operation, error) {
	if userID == "" {
		return nil, invalid("userId", "is required")
	}
	if !req.Kind.Valid() {
		return nil, invalid("kind", "must be INCOME, EXPENSE or TRANSFER")
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	if req.Date == "" {
		return nil, invalid("date", "is required")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, invalid("date", "must be formatted as YYYY-MM-DD")
	}

	details := Details{
		CategoryID:    normalize.Optional(req.CategoryID),
		SubcategoryID: normalize.Optional(req.SubcategoryID),
		Description:   normalize.Optional(req.Description),
	}

	switch req.Kind {
	case ledger.KindIncome:
		return classifyIncome(req, amount, date, details)
	case ledger.KindExpense:
		return classifyExpense(req, amount, date, details)
	default:
		return classifyTransfer(req, amount, date, details)
	}
}

func classifyIncome(req Request, amount decimal.Decimal, date time.Time, details Details) (Operation, error) {
	if req.DestinationAccountID == "" {
		return nil, invalid("destinationAccountId", "is required for income")
	}
	if req.OriginAccountID != "" {
		return nil, invalid("originAccountId", "must be empty for income")
	}
	if err := noInstallments(req); err != nil {
		return nil, err
	}

	details.SubcategoryID = nil
	return &SimplePosting{
		Kind:      ledger.KindIncome,
		Amount:    amount,
		Date:      date,
		AccountID: req.DestinationAccountID,
		Details:   details,
	}, nil
}

func classifyExpense(req Request, amount decimal.Decimal, date time.Time, details Details) (Operation, error) {
	if req.OriginAccountID == "" {
		return nil, invalid("originAccountId", "is required for expenses")
	}
	if req.DestinationAccountID != "" {
		return nil, invalid("destinationAccountId", "must be empty for expenses")
	}
	if req.PaymentMethod == "" {
		return nil, invalid("paymentMethod", "is required for expenses")
	}
	if !req.PaymentMethod.Valid() {
		return nil, invalid("paymentMethod", "must be CASH, CHECKING or CREDIT_CARD")
	}

	if req.PaymentMethod == ledger.MethodCreditCard {
		return classifyCardPurchase(req, amount, date, details)
	}

	if err := noInstallments(req); err != nil {
		return nil, err
	}
	return &SimplePosting{
		Kind:      ledger.KindExpense,
		Amount:    amount,
		Date:      date,
		AccountID: req.OriginAccountID,
		Method:    req.PaymentMethod,
		Details:   details,
	}, nil
}

func classifyCardPurchase(req Request, amount decimal.Decimal, date time.Time, details Details) (Operation, error) {
	if req.InstallmentCount < 1 || req.InstallmentCount > installment.MaxCount {
		return nil, invalid("installmentCount", fmt.Sprintf("must be between 1 and %d", installment.MaxCount))
	}
	if len(req.InstallmentAmounts) > installment.MaxCount {
		return nil, invalid("installmentAmounts", fmt.Sprintf("must have at most %d entries", installment.MaxCount))
	}
	if req.FirstInstallmentMonth == "" {
		return nil, invalid("firstInstallmentMonth", "is required for credit card purchases")
	}
	first, err := installment.ParseMonth(req.FirstInstallmentMonth)
	if err != nil {
		return nil, invalid("firstInstallmentMonth", "must be formatted as YYYY-MM")
	}

	var entries []installment.Entry
	if len(req.InstallmentAmounts) == 0 {
		entries, err = installment.Generate(amount, req.InstallmentCount, first)
		if err != nil {
			return nil, &ValidationError{Field: "installmentCount", Reason: err.Error(), Err: err}
		}
	} else {
		values := make([]decimal.Decimal, len(req.InstallmentAmounts))
		for i, raw := range req.InstallmentAmounts {
			v, err := money.Parse(raw)
			if err != nil || v.IsNegative() {
				return nil, invalid(fmt.Sprintf("installmentAmounts[%d]", i), "must be a non-negative amount with at most 2 decimal places")
			}
			values[i] = v
		}
		entries, err = installment.FromAmounts(values, first)
		if err != nil {
			return nil, &ValidationError{Field: "installmentAmounts", Reason: err.Error(), Err: err}
		}
	}

	if err := installment.Validate(entries, amount, req.InstallmentCount); err != nil {
		return nil, &ValidationError{Field: "installmentAmounts", Reason: err.Error(), Err: err}
	}

	return &CardPurchase{
		AccountID:  req.OriginAccountID,
		Amount:     amount,
		Date:       date,
		Count:      req.InstallmentCount,
		FirstMonth: first,
		Entries:    entries,
		Details:    details,
	}, nil
}

func classifyTransfer(req Request, amount decimal.Decimal, date time.Time, details Details) (Operation, error) {
	if req.OriginAccountID == "" {
		return nil, invalid("originAccountId", "is required for transfers")
	}
	if req.DestinationAccountID == "" {
		return nil, invalid("destinationAccountId", "is required for transfers")
	}
	if req.OriginAccountID == req.DestinationAccountID {
		return nil, invalid("destinationAccountId", "must differ from the origin account")
	}
	if err := noInstallments(req); err != nil {
		return nil, err
	}

	return &TransferPosting{
		Amount:               amount,
		Date:                 date,
		OriginAccountID:      req.OriginAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Details:              Details{Description: details.Description},
	}, nil
}

func noInstallments(req Request) error {
	if req.InstallmentCount > 1 || len(req.InstallmentAmounts) > 0 {
		return invalid("installmentCount", "installments are only allowed for credit card expenses")
	}
	return nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, invalid(field, "is required")
	}
	v, err := money.Parse(raw)
	if err != nil {
		if errors.Is(err, money.ErrTooPrecise) {
			return decimal.Zero, invalid(field, "must have at most 2 decimal places")
		}
		return decimal.Zero, invalid(field, "must be a decimal number up to "+money.MaxAmount.StringFixed(2))
	}
	if !v.IsPositive() {
		return decimal.Zero, invalid(field, "must be greater than zero")
	}
	return v, nil
}
