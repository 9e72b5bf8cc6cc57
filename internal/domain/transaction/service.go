package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"carteira/internal/domain/account"
	"carteira/internal/domain/balance"
	"carteira/internal/domain/impact"
	"carteira/internal/domain/ledger"
	"carteira/internal/shared/logger"
)

// Domain errors
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrKindChange          = errors.New("a posting cannot become a card purchase or the other way around")
)

var (
	txMeter               = otel.Meter("carteira/transaction")
	transactionCommits, _ = txMeter.Int64Counter("transaction.commits",
		metric.WithDescription("Commit attempts by operation kind and resulting state"),
	)
)

// AccountSource resolves active accounts owned by the user.
type AccountSource interface {
	GetActiveAccount(ctx context.Context, userID, accountID string) (*account.Account, error)
}

type postingOperation interface {
	posting(id, userID string) *ledger.Posting
}

// Record is a stored transaction: exactly one of Posting and Purchase is set.
type Record struct {
	Posting  *ledger.Posting
	Purchase *ledger.CardPurchase
}

// Service runs classified operations through the impact check and persists them.
type Service struct {
	accounts  AccountSource
	ledger    ledger.Repository
	evaluator *impact.Evaluator
	now       func() time.Time
}

// NewService creates a new transaction service
func NewService(accounts AccountSource, repo ledger.Repository, evaluator *impact.Evaluator) *Service {
	return &Service{
		accounts:  accounts,
		ledger:    repo,
		evaluator: evaluator,
		now:       time.Now,
	}
}

// Commit stores a new operation.
//
// Cash and card overdrafts are refused. A checking overdraft returns the
// outcome in StatePendingConfirmation together with an error matching
// impact.ErrNegativeBalanceWarning; calling again with confirmed=true commits.
func (s *Service) Commit(ctx context.Context, userID string, op Operation, confirmed bool) (*Outcome, error) {
	return s.commit(ctx, userID, "", op, confirmed)
}

// Update replaces the stored transaction id with op. The record's own old
// values are left out of the impact check. Card purchases get their whole
// installment set replaced.
func (s *Service) Update(ctx context.Context, userID, id string, op Operation, confirmed bool) (*Outcome, error) {
	if err := s.checkSameShape(ctx, userID, id, op); err != nil {
		return nil, err
	}
	return s.commit(ctx, userID, id, op, confirmed)
}

func (s *Service) commit(ctx context.Context, userID, existingID string, op Operation, confirmed bool) (*Outcome, error) {
	if op == nil {
		return nil, invalid("kind", "no operation given")
	}
	log := logger.FromContext(ctx).With().
		Str("user_id", userID).
		Str("operation", op.kindLabel()).
		Logger()

	out := &Outcome{State: StateDraft}
	if err := out.advance(StateValidated); err != nil {
		return nil, err
	}

	debit, err := s.preflight(ctx, userID, op)
	if err != nil {
		return nil, err
	}

	if debit == nil {
		if err := out.advance(StateImpactChecked); err != nil {
			return nil, err
		}
	} else {
		res, err := s.evaluator.EvaluateAccount(ctx, debit, op.Total(), exclusionFor(op, existingID))
		if err != nil {
			return nil, err
		}
		out.Impact = res

		switch {
		case res.Severity == impact.SeverityHardBlock:
			if err := out.advance(StateDraft); err != nil {
				return nil, err
			}
			s.record(ctx, op, out.State)
			log.Warn().Str("account_id", debit.ID).Str("available", res.Available.StringFixed(2)).
				Msg("Operation blocked by impact check")
			return out, res.Err()

		case res.Severity == impact.SeveritySoftWarning && !confirmed:
			if err := out.advance(StatePendingConfirmation); err != nil {
				return nil, err
			}
			s.record(ctx, op, out.State)
			log.Info().Str("account_id", debit.ID).Msg("Operation awaiting overdraft confirmation")
			return out, res.Err()

		case res.Severity == impact.SeveritySoftWarning:
			if err := out.advance(StatePendingConfirmation, StateImpactChecked); err != nil {
				return nil, err
			}

		default:
			if err := out.advance(StateImpactChecked); err != nil {
				return nil, err
			}
		}
	}

	id, err := s.persist(ctx, userID, existingID, op)
	if err != nil {
		log.Error().Err(err).Msg("Failed to persist operation")
		return nil, err
	}
	out.ID = id
	if err := out.advance(StateCommitted); err != nil {
		return nil, err
	}

	s.record(ctx, op, out.State)
	log.Info().Str("id", id).Bool("edit", existingID != "").Msg("Operation committed")
	return out, nil
}

// preflight checks the accounts involved and returns the one being debited.
func (s *Service) preflight(ctx context.Context, userID string, op Operation) (*account.Account, error) {
	switch op := op.(type) {
	case *SimplePosting:
		field := "originAccountId"
		if op.Kind == ledger.KindIncome {
			field = "destinationAccountId"
		}
		acc, err := s.account(ctx, userID, op.AccountID, field)
		if err != nil {
			return nil, err
		}
		if acc.IsCard() {
			return nil, invalid(field, "credit card accounts only take card purchases")
		}
		if op.Kind == ledger.KindIncome {
			return nil, nil
		}
		if string(acc.Kind) != string(op.Method) {
			return nil, invalid("paymentMethod", "does not match the origin account kind")
		}
		return acc, nil

	case *TransferPosting:
		origin, err := s.account(ctx, userID, op.OriginAccountID, "originAccountId")
		if err != nil {
			return nil, err
		}
		dest, err := s.account(ctx, userID, op.DestinationAccountID, "destinationAccountId")
		if err != nil {
			return nil, err
		}
		if origin.IsCard() || dest.IsCard() {
			return nil, invalid("originAccountId", "transfers cannot involve credit card accounts")
		}
		return origin, nil

	case *CardPurchase:
		acc, err := s.account(ctx, userID, op.AccountID, "originAccountId")
		if err != nil {
			return nil, err
		}
		if !acc.IsCard() {
			return nil, invalid("originAccountId", "must be a credit card account")
		}
		return acc, nil
	}
	return nil, invalid("kind", "unsupported operation")
}

func (s *Service) account(ctx context.Context, userID, accountID, field string) (*account.Account, error) {
	acc, err := s.accounts.GetActiveAccount(ctx, userID, accountID)
	switch {
	case err == nil:
		return acc, nil
	case errors.Is(err, account.ErrAccountNotFound), errors.Is(err, account.ErrForbidden):
		return nil, &ValidationError{Field: field, Reason: "account not found", Err: account.ErrAccountNotFound}
	case errors.Is(err, account.ErrInactive):
		return nil, &ValidationError{Field: field, Reason: "account is inactive", Err: err}
	}
	return nil, err
}

func exclusionFor(op Operation, existingID string) balance.Exclusion {
	if existingID == "" {
		return balance.Exclusion{}
	}
	if _, ok := op.(*CardPurchase); ok {
		return balance.Exclusion{PurchaseID: existingID}
	}
	return balance.Exclusion{PostingID: existingID}
}

func (s *Service) persist(ctx context.Context, userID, existingID string, op Operation) (string, error) {
	id := existingID
	if id == "" {
		id = uuid.NewString()
	}

	switch op := op.(type) {
	case *CardPurchase:
		p := op.purchase(id, userID)
		if existingID != "" {
			return id, s.ledger.UpdatePurchase(ctx, p)
		}
		p.CreatedAt = s.now().UTC()
		return id, s.ledger.InsertPurchaseWithInstallments(ctx, p)

	case postingOperation:
		p := op.posting(id, userID)
		if existingID != "" {
			return id, s.ledger.UpdatePosting(ctx, p)
		}
		p.CreatedAt = s.now().UTC()
		return id, s.ledger.InsertPosting(ctx, p)
	}
	return "", invalid("kind", "unsupported operation")
}

func (s *Service) checkSameShape(ctx context.Context, userID, id string, op Operation) error {
	_, isCard := op.(*CardPurchase)

	_, err := s.ledger.GetPosting(ctx, userID, id)
	if err == nil {
		if isCard {
			return ErrKindChange
		}
		return nil
	}
	if !errors.Is(err, ledger.ErrPostingNotFound) {
		return err
	}

	_, err = s.ledger.GetPurchase(ctx, userID, id)
	if err == nil {
		if !isCard {
			return ErrKindChange
		}
		return nil
	}
	if errors.Is(err, ledger.ErrPurchaseNotFound) {
		return ErrTransactionNotFound
	}
	return err
}

// Get looks the id up among postings first, then card purchases.
func (s *Service) Get(ctx context.Context, userID, id string) (*Record, error) {
	post, err := s.ledger.GetPosting(ctx, userID, id)
	if err == nil {
		return &Record{Posting: post}, nil
	}
	if !errors.Is(err, ledger.ErrPostingNotFound) {
		return nil, err
	}

	purchase, err := s.ledger.GetPurchase(ctx, userID, id)
	if err == nil {
		return &Record{Purchase: purchase}, nil
	}
	if errors.Is(err, ledger.ErrPurchaseNotFound) {
		return nil, ErrTransactionNotFound
	}
	return nil, err
}

// Delete removes a posting or a card purchase with all its installments.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	log := logger.FromContext(ctx)

	err := s.ledger.DeletePosting(ctx, userID, id)
	if err == nil {
		log.Info().Str("id", id).Msg("Posting deleted")
		return nil
	}
	if !errors.Is(err, ledger.ErrPostingNotFound) {
		return err
	}

	err = s.ledger.DeletePurchase(ctx, userID, id)
	if err == nil {
		log.Info().Str("id", id).Msg("Card purchase deleted")
		return nil
	}
	if errors.Is(err, ledger.ErrPurchaseNotFound) {
		return ErrTransactionNotFound
	}
	return err
}

func (s *Service) record(ctx context.Context, op Operation, state State) {
	transactionCommits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation.kind", op.kindLabel()),
		attribute.String("outcome", string(state)),
	))
}
