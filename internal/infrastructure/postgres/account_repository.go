package postgres

import (
	"context"
	"database/sql"

	"carteira/internal/domain/account"
	"carteira/internal/domain/ledger"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, name, kind, initial_balance, credit_limit, active, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID, &acc.UserID, &acc.Name, &acc.Kind,
		&acc.InitialBalance, &acc.CreditLimit, &acc.Active, &acc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, name, kind, initial_balance, credit_limit, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.Name, a.Kind, a.InitialBalance, a.CreditLimit, a.Active, a.CreatedAt,
	)
	return ledger.Wrap("create account", err)
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acc, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, ledger.Wrap("get account", err)
	}
	return acc, nil
}

// ListActiveByUserID retrieves the user's active accounts ordered by name
func (r *AccountRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1 AND active
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
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

	if err = rows.Err(); err != nil {
		return nil, ledger.Wrap("iterate accounts", err)
	}

	return accounts, nil
}

// Update rewrites the mutable fields. Kind never changes.
func (r *AccountRepository) Update(ctx context.Context, a *account.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, initial_balance = $2, credit_limit = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query, a.Name, a.InitialBalance, a.CreditLimit, a.ID)
	if err != nil {
		return ledger.Wrap("update account", err)
	}
	return expectAffected(result, account.ErrAccountNotFound)
}

// Disable soft deletes an account
func (r *AccountRepository) Disable(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE accounts SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return ledger.Wrap("disable account", err)
	}
	return expectAffected(result, account.ErrAccountNotFound)
}

// expectAffected returns notFound when the statement touched no row.
func expectAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return ledger.Wrap("get affected rows", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
