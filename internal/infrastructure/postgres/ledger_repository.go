package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"carteira/internal/domain/installment"
	"carteira/internal/domain/ledger"
)

// LedgerRepository implements the ledger.Repository interface for PostgreSQL
type LedgerRepository struct {
	db *DB
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(db *DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

const postingColumns = `id, user_id, kind, amount, date, origin_account_id, destination_account_id,
	payment_method, category_id, subcategory_id, description, created_at`

func scanPosting(row rowScanner) (*ledger.Posting, error) {
	var p ledger.Posting
	var origin, dest, method, category, subcategory, description sql.NullString

	err := row.Scan(
		&p.ID, &p.UserID, &p.Kind, &p.Amount, &p.Date, &origin, &dest,
		&method, &category, &subcategory, &description, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.OriginAccountID = stringPtr(origin)
	p.DestinationAccountID = stringPtr(dest)
	if method.Valid {
		m := ledger.PaymentMethod(method.String)
		p.PaymentMethod = &m
	}
	p.CategoryID = stringPtr(category)
	p.SubcategoryID = stringPtr(subcategory)
	p.Description = stringPtr(description)
	return &p, nil
}

// ListPostings returns the postings matching filter ordered by date.
func (r *LedgerRepository) ListPostings(ctx context.Context, filter ledger.PostingFilter) ([]*ledger.Posting, error) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		conds = append(conds, "user_id = "+arg(filter.UserID))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]string, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = string(k)
		}
		conds = append(conds, "kind = ANY("+arg(pq.Array(kinds))+")")
	}
	if filter.AccountID != "" {
		p := arg(filter.AccountID)
		switch filter.Role {
		case ledger.RoleOrigin:
			conds = append(conds, "origin_account_id = "+p)
		case ledger.RoleDestination:
			conds = append(conds, "destination_account_id = "+p)
		default:
			conds = append(conds, "(origin_account_id = "+p+" OR destination_account_id = "+p+")")
		}
	}

	query := `SELECT ` + postingColumns + ` FROM postings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, ledger.Wrap("list postings", err)
	}
	defer rows.Close()

	var postings []*ledger.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, ledger.Wrap("scan posting", err)
		}
		postings = append(postings, p)
	}
	if err = rows.Err(); err != nil {
		return nil, ledger.Wrap("iterate postings", err)
	}
	return postings, nil
}

func (r *LedgerRepository) GetPosting(ctx context.Context, userID, id string) (*ledger.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE id = $1 AND user_id = $2`

	p, err := scanPosting(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, ledger.ErrPostingNotFound
	}
	if err != nil {
		return nil, ledger.Wrap("get posting", err)
	}
	return p, nil
}

func (r *LedgerRepository) InsertPosting(ctx context.Context, p *ledger.Posting) error {
	query := `
		INSERT INTO postings (
			id, user_id, kind, amount, date, origin_account_id, destination_account_id,
			payment_method, category_id, subcategory_id, description, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.UserID, string(p.Kind), p.Amount, p.Date,
		p.OriginAccountID, p.DestinationAccountID, methodValue(p.PaymentMethod),
		p.CategoryID, p.SubcategoryID, p.Description, p.CreatedAt,
	)
	return ledger.Wrap("insert posting", err)
}

func (r *LedgerRepository) UpdatePosting(ctx context.Context, p *ledger.Posting) error {
	query := `
		UPDATE postings
		SET kind = $1, amount = $2, date = $3, origin_account_id = $4, destination_account_id = $5,
		    payment_method = $6, category_id = $7, subcategory_id = $8, description = $9
		WHERE id = $10 AND user_id = $11
	`

	result, err := r.db.ExecContext(ctx, query,
		string(p.Kind), p.Amount, p.Date, p.OriginAccountID, p.DestinationAccountID,
		methodValue(p.PaymentMethod), p.CategoryID, p.SubcategoryID, p.Description,
		p.ID, p.UserID,
	)
	if err != nil {
		return ledger.Wrap("update posting", err)
	}
	return expectAffected(result, ledger.ErrPostingNotFound)
}

func (r *LedgerRepository) DeletePosting(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM postings WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return ledger.Wrap("delete posting", err)
	}
	return expectAffected(result, ledger.ErrPostingNotFound)
}

func (r *LedgerRepository) ListInstallmentsByAccount(ctx context.Context, userID, accountID string) ([]*ledger.Installment, error) {
	query := `
		SELECT i.id, i.purchase_id, i.number, i.competence_month, i.amount
		FROM card_installments i
		JOIN card_purchases p ON p.id = i.purchase_id
		WHERE p.user_id = $1 AND p.account_id = $2
		ORDER BY i.competence_month, i.purchase_id, i.number
	`

	rows, err := r.db.QueryContext(ctx, query, userID, accountID)
	if err != nil {
		return nil, ledger.Wrap("list installments", err)
	}
	defer rows.Close()

	items, err := scanInstallments(rows)
	if err != nil {
		return nil, err
	}
	result := make([]*ledger.Installment, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}

func scanInstallments(rows *sql.Rows) ([]ledger.Installment, error) {
	var items []ledger.Installment
	for rows.Next() {
		var inst ledger.Installment
		var month time.Time
		if err := rows.Scan(&inst.ID, &inst.PurchaseID, &inst.Number, &month, &inst.Amount); err != nil {
			return nil, ledger.Wrap("scan installment", err)
		}
		inst.CompetenceMonth = installment.MonthOf(month)
		items = append(items, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Wrap("iterate installments", err)
	}
	return items, nil
}

func (r *LedgerRepository) GetPurchase(ctx context.Context, userID, id string) (*ledger.CardPurchase, error) {
	query := `
		SELECT id, user_id, account_id, total_amount, purchase_date, installment_count,
		       category_id, subcategory_id, description, created_at
		FROM card_purchases
		WHERE id = $1 AND user_id = $2
	`

	var p ledger.CardPurchase
	var category, subcategory, description sql.NullString

	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&p.ID, &p.UserID, &p.AccountID, &p.TotalAmount, &p.PurchaseDate, &p.InstallmentCount,
		&category, &subcategory, &description, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, ledger.Wrap("get card purchase", err)
	}
	p.CategoryID = stringPtr(category)
	p.SubcategoryID = stringPtr(subcategory)
	p.Description = stringPtr(description)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, purchase_id, number, competence_month, amount
		FROM card_installments
		WHERE purchase_id = $1
		ORDER BY number
	`, id)
	if err != nil {
		return nil, ledger.Wrap("list installments", err)
	}
	defer rows.Close()

	p.Installments, err = scanInstallments(rows)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *LedgerRepository) InsertPurchaseWithInstallments(ctx context.Context, p *ledger.CardPurchase) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Wrap("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO card_purchases (
			id, user_id, account_id, total_amount, purchase_date, installment_count,
			category_id, subcategory_id, description, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, query,
		p.ID, p.UserID, p.AccountID, p.TotalAmount, p.PurchaseDate, p.InstallmentCount,
		p.CategoryID, p.SubcategoryID, p.Description, p.CreatedAt,
	)
	if err != nil {
		return ledger.Wrap("insert card purchase", err)
	}

	if err := insertInstallments(ctx, tx, p.ID, p.Installments); err != nil {
		return err
	}

	return ledger.Wrap("commit transaction", tx.Commit())
}

func (r *LedgerRepository) UpdatePurchase(ctx context.Context, p *ledger.CardPurchase) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Wrap("begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE card_purchases
		SET account_id = $1, total_amount = $2, purchase_date = $3, installment_count = $4,
		    category_id = $5, subcategory_id = $6, description = $7
		WHERE id = $8 AND user_id = $9
	`
	result, err := tx.ExecContext(ctx, query,
		p.AccountID, p.TotalAmount, p.PurchaseDate, p.InstallmentCount,
		p.CategoryID, p.SubcategoryID, p.Description, p.ID, p.UserID,
	)
	if err != nil {
		return ledger.Wrap("update card purchase", err)
	}
	if err := expectAffected(result, ledger.ErrPurchaseNotFound); err != nil {
		return err
	}

	if err := replaceInstallments(ctx, tx, p.ID, p.Installments); err != nil {
		return err
	}

	return ledger.Wrap("commit transaction", tx.Commit())
}

func (r *LedgerRepository) ReplaceInstallments(ctx context.Context, userID, purchaseID string, items []ledger.Installment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Wrap("begin transaction", err)
	}
	defer tx.Rollback()

	// Lock the header so a concurrent delete cannot orphan the new rows.
	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM card_purchases WHERE id = $1 AND user_id = $2 FOR UPDATE`, purchaseID, userID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return ledger.ErrPurchaseNotFound
	}
	if err != nil {
		return ledger.Wrap("lock card purchase", err)
	}

	if err := replaceInstallments(ctx, tx, purchaseID, items); err != nil {
		return err
	}

	return ledger.Wrap("commit transaction", tx.Commit())
}

func (r *LedgerRepository) DeletePurchase(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM card_purchases WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return ledger.Wrap("delete card purchase", err)
	}
	return expectAffected(result, ledger.ErrPurchaseNotFound)
}

func replaceInstallments(ctx context.Context, tx *Tx, purchaseID string, items []ledger.Installment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM card_installments WHERE purchase_id = $1`, purchaseID); err != nil {
		return ledger.Wrap("delete installments", err)
	}
	return insertInstallments(ctx, tx, purchaseID, items)
}

func insertInstallments(ctx context.Context, tx *Tx, purchaseID string, items []ledger.Installment) error {
	if len(items) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(items))
	valueArgs := make([]any, 0, len(items)*5)

	for i, inst := range items {
		if inst.PurchaseID != purchaseID {
			return fmt.Errorf("installment %s belongs to purchase %s, not %s", inst.ID, inst.PurchaseID, purchaseID)
		}
		n := i * 5
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5))
		valueArgs = append(valueArgs, inst.ID, purchaseID, inst.Number, inst.CompetenceMonth.FirstDay(), inst.Amount)
	}

	query := fmt.Sprintf(
		`INSERT INTO card_installments (id, purchase_id, number, competence_month, amount) VALUES %s`,
		strings.Join(valueStrings, ", "),
	)

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return ledger.Wrap("insert installments", err)
	}
	return nil
}

// Helper functions

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func methodValue(m *ledger.PaymentMethod) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*m), Valid: true}
}
