package postgres

// Migrations returns the schema statements in apply order.
// Amounts are NUMERIC(14,2) so sums stay exact in the database too.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id              UUID PRIMARY KEY,
			user_id         UUID NOT NULL,
			name            TEXT NOT NULL CHECK (char_length(name) >= 2),
			kind            TEXT NOT NULL CHECK (kind IN ('CASH', 'CHECKING', 'CREDIT_CARD')),
			initial_balance NUMERIC(14,2),
			credit_limit    NUMERIC(14,2),
			active          BOOLEAN NOT NULL DEFAULT TRUE,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (
				(kind = 'CREDIT_CARD' AND credit_limit > 0 AND initial_balance IS NULL) OR
				(kind <> 'CREDIT_CARD' AND initial_balance >= 0 AND credit_limit IS NULL)
			)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_user_active ON accounts (user_id, active)`,

		`CREATE TABLE IF NOT EXISTS postings (
			id                     UUID PRIMARY KEY,
			user_id                UUID NOT NULL,
			kind                   TEXT NOT NULL CHECK (kind IN ('INCOME', 'EXPENSE', 'TRANSFER')),
			amount                 NUMERIC(14,2) NOT NULL CHECK (amount > 0),
			date                   DATE NOT NULL,
			origin_account_id      UUID REFERENCES accounts (id),
			destination_account_id UUID REFERENCES accounts (id),
			payment_method         TEXT CHECK (payment_method IN ('CASH', 'CHECKING')),
			category_id            TEXT,
			subcategory_id         TEXT,
			description            TEXT,
			created_at             TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (
				(kind = 'INCOME' AND destination_account_id IS NOT NULL AND origin_account_id IS NULL) OR
				(kind = 'EXPENSE' AND origin_account_id IS NOT NULL AND destination_account_id IS NULL
					AND payment_method IS NOT NULL) OR
				(kind = 'TRANSFER' AND origin_account_id IS NOT NULL AND destination_account_id IS NOT NULL
					AND origin_account_id <> destination_account_id)
			)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_origin ON postings (user_id, origin_account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_destination ON postings (user_id, destination_account_id)`,

		`CREATE TABLE IF NOT EXISTS card_purchases (
			id                UUID PRIMARY KEY,
			user_id           UUID NOT NULL,
			account_id        UUID NOT NULL REFERENCES accounts (id),
			total_amount      NUMERIC(14,2) NOT NULL CHECK (total_amount > 0),
			purchase_date     DATE NOT NULL,
			installment_count INTEGER NOT NULL CHECK (installment_count BETWEEN 1 AND 120),
			category_id       TEXT,
			subcategory_id    TEXT,
			description       TEXT,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_card_purchases_account ON card_purchases (user_id, account_id)`,

		`CREATE TABLE IF NOT EXISTS card_installments (
			id               UUID PRIMARY KEY,
			purchase_id      UUID NOT NULL REFERENCES card_purchases (id) ON DELETE CASCADE,
			number           INTEGER NOT NULL CHECK (number BETWEEN 1 AND 120),
			competence_month DATE NOT NULL CHECK (EXTRACT(DAY FROM competence_month) = 1),
			amount           NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
			UNIQUE (purchase_id, number)
		)`,
	}
}
