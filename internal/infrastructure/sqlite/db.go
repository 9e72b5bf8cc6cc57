// Package sqlite is the embedded store behind the command line tool and
// DB_DRIVER=sqlite. It implements the same repositories as the postgres
// package on a single database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// DB wraps the sqlite connection.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the database file at path and applies
// the schema.
func Open(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; also keeps a :memory: database on a single connection.
	conn.SetMaxOpenConns(1)

	db := &DB{db: conn}
	if err := db.Migrate(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

// Migrate applies every statement of Migrations in order.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range Migrations() {
		if _, err := db.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// Migrations returns the schema statements.
// Each string is a single SQL statement (SQLite executes one at a time).
// Amounts are stored as decimal text so they round-trip without floats.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id              TEXT PRIMARY KEY,
			user_id         TEXT NOT NULL,
			name            TEXT NOT NULL,
			kind            TEXT NOT NULL CHECK (kind IN ('CASH', 'CHECKING', 'CREDIT_CARD')),
			initial_balance TEXT,
			credit_limit    TEXT,
			active          INTEGER NOT NULL DEFAULT 1,
			created_at      TEXT NOT NULL,
			CHECK ((kind = 'CREDIT_CARD') = (credit_limit IS NOT NULL AND initial_balance IS NULL))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id, active)`,

		`CREATE TABLE IF NOT EXISTS postings (
			id                     TEXT PRIMARY KEY,
			user_id                TEXT NOT NULL,
			kind                   TEXT NOT NULL CHECK (kind IN ('INCOME', 'EXPENSE', 'TRANSFER')),
			amount                 TEXT NOT NULL,
			date                   TEXT NOT NULL,
			origin_account_id      TEXT REFERENCES accounts(id),
			destination_account_id TEXT REFERENCES accounts(id),
			payment_method         TEXT,
			category_id            TEXT,
			subcategory_id         TEXT,
			description            TEXT,
			created_at             TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_origin ON postings(user_id, origin_account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_destination ON postings(user_id, destination_account_id)`,

		`CREATE TABLE IF NOT EXISTS card_purchases (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL,
			account_id        TEXT NOT NULL REFERENCES accounts(id),
			total_amount      TEXT NOT NULL,
			purchase_date     TEXT NOT NULL,
			installment_count INTEGER NOT NULL CHECK (installment_count BETWEEN 1 AND 120),
			category_id       TEXT,
			subcategory_id    TEXT,
			description       TEXT,
			created_at        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_card_purchases_account ON card_purchases(user_id, account_id)`,

		`CREATE TABLE IF NOT EXISTS card_installments (
			id               TEXT PRIMARY KEY,
			purchase_id      TEXT NOT NULL REFERENCES card_purchases(id) ON DELETE CASCADE,
			number           INTEGER NOT NULL CHECK (number BETWEEN 1 AND 120),
			competence_month TEXT NOT NULL CHECK (substr(competence_month, 9, 2) = '01'),
			amount           TEXT NOT NULL,
			UNIQUE(purchase_id, number)
		)`,
	}
}

// Helper functions

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timestampLayout, s)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
