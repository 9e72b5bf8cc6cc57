package postgres

import (
	"strings"
	"testing"
)

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "placeholders kept",
			query: "SELECT id FROM postings WHERE id = $1 AND user_id = $12",
			want:  "SELECT id FROM postings WHERE id = $1 AND user_id = $12",
		},
		{
			name:  "string literal replaced",
			query: "SELECT 1 FROM accounts WHERE name = 'Nubank'",
			want:  "SELECT ? FROM accounts WHERE name = '?'",
		},
		{
			name:  "escaped quote swallowed",
			query: "UPDATE postings SET description = 'Joana''s gift'",
			want:  "UPDATE postings SET description = '?'",
		},
		{
			name:  "decimal literal replaced",
			query: "SELECT * FROM postings WHERE amount > 150.75",
			want:  "SELECT * FROM postings WHERE amount > ?",
		},
		{
			name:  "identifiers with digits kept",
			query: "SELECT col1 FROM t2",
			want:  "SELECT col1 FROM t2",
		},
		{
			name:  "whitespace collapsed",
			query: "\n\t\tSELECT id\n\t\tFROM accounts\n\t",
			want:  "SELECT id FROM accounts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeQuery(tt.query); got != tt.want {
				t.Errorf("sanitizeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeQueryTruncates(t *testing.T) {
	q := "SELECT " + strings.Repeat("a, ", 200) + "b FROM t"
	got := sanitizeQuery(q)
	if len(got) != 259 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated statement of 259 bytes, got %d: %q", len(got), got)
	}
}

func TestExtractSQLVerb(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"select 1", "SELECT"},
		{"\n\t\tINSERT INTO postings", "INSERT"},
		{"DELETE\tFROM card_installments", "DELETE"},
		{"BEGIN", "BEGIN"},
	}

	for _, tt := range tests {
		if got := extractSQLVerb(tt.query); got != tt.want {
			t.Errorf("extractSQLVerb(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	for i, stmt := range Migrations() {
		s := strings.TrimSpace(stmt)
		if !strings.Contains(s, "IF NOT EXISTS") {
			t.Errorf("migration %d is not idempotent: %.60s", i, s)
		}
	}
}
