package sqlite

import (
	"context"
	"database/sql"

	"carteira/internal/domain/account"
	"carteira/internal/domain/ledger"
)

// AccountStore implements account.Repository.
type AccountStore struct {
	db *DB
}

func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

const accountColumns = `id, user_id, name, kind, initial_balance, credit_limit, active, created_at`

func scanAccount(row rowScanner) (*account.Account, error) {
	var acc account.Account
	var createdAt string
	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.Name, &acc.Kind,
		&acc.InitialBalance, &acc.CreditLimit, &acc.Active, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if acc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (s *AccountStore) Create(ctx context.Context, a *account.Account) error {
	_, err := s.db.db.ExecContext(ctx, `
		INSERT INTO accounts (id, user_id, name, kind, initial_balance, credit_limit, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.UserID, a.Name, string(a.Kind), a.InitialBalance, a.CreditLimit, a.Active, formatTime(a.CreatedAt))
	return ledger.Wrap("create account", err)
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*account.Account, error) {
	acc, err := scanAccount(s.db.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, ledger.Wrap("get account", err)
	}
	return acc, nil
}

func (s *AccountStore) ListActiveByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE user_id = ? AND active = 1
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, ledger.Wrap("list accounts", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, ledger.Wrap("scan account", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Wrap("iterate accounts", err)
	}
	return accounts, nil
}

func (s *AccountStore) Update(ctx context.Context, a *account.Account) error {
	result, err := s.db.db.ExecContext(ctx, `
		UPDATE accounts SET name = ?, initial_balance = ?, credit_limit = ? WHERE id = ?
	`, a.Name, a.InitialBalance, a.CreditLimit, a.ID)
	if err != nil {
		return ledger.Wrap("update account", err)
	}
	return expectAffected(result, account.ErrAccountNotFound)
}

func (s *AccountStore) Disable(ctx context.Context, id string) error {
	result, err := s.db.db.ExecContext(ctx, `UPDATE accounts SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return ledger.Wrap("disable account", err)
	}
	return expectAffected(result, account.ErrAccountNotFound)
}

func expectAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return ledger.Wrap("get affected rows", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
