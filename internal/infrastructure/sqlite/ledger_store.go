package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"carteira/internal/domain/installment"
	"carteira/internal/domain/ledger"
)

// LedgerStore implements ledger.Repository.
type LedgerStore struct {
	db *DB
}

func NewLedgerStore(db *DB) *LedgerStore {
	return &LedgerStore{db: db}
}

const postingColumns = `id, user_id, kind, amount, date, origin_account_id, destination_account_id,
	payment_method, category_id, subcategory_id, description, created_at`

func scanPosting(row rowScanner) (*ledger.Posting, error) {
	var p ledger.Posting
	var date, createdAt string
	var origin, dest, method, category, subcategory, description sql.NullString

	err := row.Scan(
		&p.ID, &p.UserID, &p.Kind, &p.Amount, &date, &origin, &dest,
		&method, &category, &subcategory, &description, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
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

func (s *LedgerStore) ListPostings(ctx context.Context, filter ledger.PostingFilter) ([]*ledger.Posting, error) {
	var conds []string
	var args []any

	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if len(filter.Kinds) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Kinds)), ", ")
		conds = append(conds, "kind IN ("+marks+")")
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}
	if filter.AccountID != "" {
		switch filter.Role {
		case ledger.RoleOrigin:
			conds = append(conds, "origin_account_id = ?")
			args = append(args, filter.AccountID)
		case ledger.RoleDestination:
			conds = append(conds, "destination_account_id = ?")
			args = append(args, filter.AccountID)
		default:
			conds = append(conds, "(origin_account_id = ? OR destination_account_id = ?)")
			args = append(args, filter.AccountID, filter.AccountID)
		}
	}

	query := `SELECT ` + postingColumns + ` FROM postings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date, created_at`

	rows, err := s.db.db.QueryContext(ctx, query, args...)
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
	if err := rows.Err(); err != nil {
		return nil, ledger.Wrap("iterate postings", err)
	}
	return postings, nil
}

func (s *LedgerStore) GetPosting(ctx context.Context, userID, id string) (*ledger.Posting, error) {
	p, err := scanPosting(s.db.db.QueryRowContext(ctx,
		`SELECT `+postingColumns+` FROM postings WHERE id = ? AND user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, ledger.ErrPostingNotFound
	}
	if err != nil {
		return nil, ledger.Wrap("get posting", err)
	}
	return p, nil
}

func (s *LedgerStore) InsertPosting(ctx context.Context, p *ledger.Posting) error {
	_, err := s.db.db.ExecContext(ctx, `
		INSERT INTO postings (
			id, user_id, kind, amount, date, origin_account_id, destination_account_id,
			payment_method, category_id, subcategory_id, description, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.UserID, string(p.Kind), p.Amount, formatDate(p.Date),
		p.OriginAccountID, p.DestinationAccountID, methodValue(p.PaymentMethod),
		p.CategoryID, p.SubcategoryID, p.Description, formatTime(p.CreatedAt),
	)
	return ledger.Wrap("insert posting", err)
}

func (s *LedgerStore) UpdatePosting(ctx context.Context, p *ledger.Posting) error {
	result, err := s.db.db.ExecContext(ctx, `
		UPDATE postings
		SET kind = ?, amount = ?, date = ?, origin_account_id = ?, destination_account_id = ?,
		    payment_method = ?, category_id = ?, subcategory_id = ?, description = ?
		WHERE id = ? AND user_id = ?
	`,
		string(p.Kind), p.Amount, formatDate(p.Date), p.OriginAccountID, p.DestinationAccountID,
		methodValue(p.PaymentMethod), p.CategoryID, p.SubcategoryID, p.Description,
		p.ID, p.UserID,
	)
	if err != nil {
		return ledger.Wrap("update posting", err)
	}
	return expectAffected(result, ledger.ErrPostingNotFound)
}

func (s *LedgerStore) DeletePosting(ctx context.Context, userID, id string) error {
	result, err := s.db.db.ExecContext(ctx, `DELETE FROM postings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return ledger.Wrap("delete posting", err)
	}
	return expectAffected(result, ledger.ErrPostingNotFound)
}

func (s *LedgerStore) ListInstallmentsByAccount(ctx context.Context, userID, accountID string) ([]*ledger.Installment, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT i.id, i.purchase_id, i.number, i.competence_month, i.amount
		FROM card_installments i
		JOIN card_purchases p ON p.id = i.purchase_id
		WHERE p.user_id = ? AND p.account_id = ?
		ORDER BY i.competence_month, i.purchase_id, i.number
	`, userID, accountID)
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
		var month string
		if err := rows.Scan(&inst.ID, &inst.PurchaseID, &inst.Number, &month, &inst.Amount); err != nil {
			return nil, ledger.Wrap("scan installment", err)
		}
		m, err := installment.ParseMonth(month)
		if err != nil {
			return nil, ledger.Wrap("scan installment", err)
		}
		inst.CompetenceMonth = m
		items = append(items, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, ledger.Wrap("iterate installments", err)
	}
	return items, nil
}

func (s *LedgerStore) GetPurchase(ctx context.Context, userID, id string) (*ledger.CardPurchase, error) {
	var p ledger.CardPurchase
	var purchaseDate, createdAt string
	var category, subcategory, description sql.NullString

	err := s.db.db.QueryRowContext(ctx, `
		SELECT id, user_id, account_id, total_amount, purchase_date, installment_count,
		       category_id, subcategory_id, description, created_at
		FROM card_purchases
		WHERE id = ? AND user_id = ?
	`, id, userID).Scan(
		&p.ID, &p.UserID, &p.AccountID, &p.TotalAmount, &purchaseDate, &p.InstallmentCount,
		&category, &subcategory, &description, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrPurchaseNotFound
	}
	if err != nil {
		return nil, ledger.Wrap("get card purchase", err)
	}
	if p.PurchaseDate, err = parseDate(purchaseDate); err != nil {
		return nil, ledger.Wrap("get card purchase", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, ledger.Wrap("get card purchase", err)
	}
	p.CategoryID = stringPtr(category)
	p.SubcategoryID = stringPtr(subcategory)
	p.Description = stringPtr(description)

	rows, err := s.db.db.QueryContext(ctx, `
		SELECT id, purchase_id, number, competence_month, amount
		FROM card_installments
		WHERE purchase_id = ?
		ORDER BY number
	`, id)
	if err != nil {
		return nil, ledger.Wrap("list installments", err)
	}
	defer rows.Close()

	if p.Installments, err = scanInstallments(rows); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *LedgerStore) InsertPurchaseWithInstallments(ctx context.Context, p *ledger.CardPurchase) error {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Wrap("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO card_purchases (
			id, user_id, account_id, total_amount, purchase_date, installment_count,
			category_id, subcategory_id, description, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID, p.UserID, p.AccountID, p.TotalAmount, formatDate(p.PurchaseDate), p.InstallmentCount,
		p.CategoryID, p.SubcategoryID, p.Description, formatTime(p.CreatedAt),
	)
	if err != nil {
		return ledger.Wrap("insert card purchase", err)
	}

	if err := insertInstallments(ctx, tx, p.ID, p.Installments); err != nil {
		return err
	}
	return ledger.Wrap("commit transaction", tx.Commit())
}

func (s *LedgerStore) UpdatePurchase(ctx context.Context, p *ledger.CardPurchase) error {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Wrap("begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE card_purchases
		SET account_id = ?, total_amount = ?, purchase_date = ?, installment_count = ?,
		    category_id = ?, subcategory_id = ?, description = ?
		WHERE id = ? AND user_id = ?
	`,
		p.AccountID, p.TotalAmount, formatDate(p.PurchaseDate), p.InstallmentCount,
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

func (s *LedgerStore) ReplaceInstallments(ctx context.Context, userID, purchaseID string, items []ledger.Installment) error {
	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return ledger.Wrap("begin transaction", err)
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM card_purchases WHERE id = ? AND user_id = ?`, purchaseID, userID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return ledger.ErrPurchaseNotFound
	}
	if err != nil {
		return ledger.Wrap("read card purchase", err)
	}

	if err := replaceInstallments(ctx, tx, purchaseID, items); err != nil {
		return err
	}
	return ledger.Wrap("commit transaction", tx.Commit())
}

func (s *LedgerStore) DeletePurchase(ctx context.Context, userID, id string) error {
	result, err := s.db.db.ExecContext(ctx, `DELETE FROM card_purchases WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return ledger.Wrap("delete card purchase", err)
	}
	return expectAffected(result, ledger.ErrPurchaseNotFound)
}

func replaceInstallments(ctx context.Context, tx *sql.Tx, purchaseID string, items []ledger.Installment) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM card_installments WHERE purchase_id = ?`, purchaseID); err != nil {
		return ledger.Wrap("delete installments", err)
	}
	return insertInstallments(ctx, tx, purchaseID, items)
}

func insertInstallments(ctx context.Context, tx *sql.Tx, purchaseID string, items []ledger.Installment) error {
	if len(items) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(items))
	valueArgs := make([]any, 0, len(items)*5)
	for _, inst := range items {
		if inst.PurchaseID != purchaseID {
			return fmt.Errorf("installment %s belongs to purchase %s, not %s", inst.ID, inst.PurchaseID, purchaseID)
		}
		valueStrings = append(valueStrings, "(?, ?, ?, ?, ?)")
		valueArgs = append(valueArgs, inst.ID, purchaseID, inst.Number, formatDate(inst.CompetenceMonth.FirstDay()), inst.Amount)
	}

	query := `INSERT INTO card_installments (id, purchase_id, number, competence_month, amount) VALUES ` +
		strings.Join(valueStrings, ", ")
	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return ledger.Wrap("insert installments", err)
	}
	return nil
}

func methodValue(m *ledger.PaymentMethod) sql.NullString {
	if m == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*m), Valid: true}
}
