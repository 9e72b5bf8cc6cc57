package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/domain/account"
	"carteira/internal/domain/balance"
	"carteira/internal/domain/impact"
	"carteira/internal/domain/ledger"
	"carteira/internal/domain/transaction"
	"carteira/internal/infrastructure/inmemory"
)

type fixture struct {
	accounts *inmemory.AccountStore
	ledger   *inmemory.LedgerStore
	tx       *TransactionHandler
	impact   *ImpactHandler
}

// newFixture seeds a checking account with 50.00, a cash account with 20.00
// and a card with a 1000.00 limit.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	accounts := inmemory.NewAccountStore()
	ledgerStore := inmemory.NewLedgerStore()
	accountService := account.NewService(accounts)
	evaluator := impact.NewEvaluator(accountService, balance.NewProjector(ledgerStore))

	seed := []*account.Account{
		checkingAccount("chk", testUser, "50.00"),
		{
			ID: "cash", UserID: testUser, Name: "Carteira", Kind: account.KindCash,
			InitialBalance: decimal.NewNullDecimal(decimal.RequireFromString("20.00")), Active: true,
		},
		{
			ID: "card", UserID: testUser, Name: "Cartão", Kind: account.KindCreditCard,
			CreditLimit: decimal.NewNullDecimal(decimal.RequireFromString("1000.00")), Active: true,
		},
	}
	for _, acc := range seed {
		if err := accounts.Create(context.Background(), acc); err != nil {
			t.Fatal(err)
		}
	}

	return &fixture{
		accounts: accounts,
		ledger:   ledgerStore,
		tx:       NewTransactionHandler(transaction.NewService(accountService, ledgerStore, evaluator)),
		impact:   NewImpactHandler(evaluator),
	}
}

func (f *fixture) do(t *testing.T, method, id string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		buf = jsonBody(t, b)
	}

	req := withUser(httptest.NewRequest(method, "/api/transactions/"+id, buf), testUser)
	if id != "" {
		req.SetPathValue("id", id)
	}
	rr := httptest.NewRecorder()

	switch {
	case method == http.MethodPost:
		f.tx.HandleCreateTransaction(rr, req)
	case method == http.MethodPut:
		f.tx.HandleUpdateTransaction(rr, req)
	case method == http.MethodGet:
		f.tx.HandleGetTransaction(rr, req)
	case method == http.MethodDelete:
		f.tx.HandleDeleteTransaction(rr, req)
	}
	return rr
}

func expense(accountID string, method ledger.PaymentMethod, amount string) CommitTransactionRequest {
	return CommitTransactionRequest{Request: transaction.Request{
		Kind:            ledger.KindExpense,
		Amount:          amount,
		Date:            "2024-03-10",
		OriginAccountID: accountID,
		PaymentMethod:   method,
	}}
}

func cardPurchase(amount string, count int, first string) CommitTransactionRequest {
	req := expense("card", ledger.MethodCreditCard, amount)
	req.InstallmentCount = count
	req.FirstInstallmentMonth = first
	return req
}

func TestHandleCreateTransaction(t *testing.T) {
	confirmed := expense("chk", ledger.MethodChecking, "80.00")
	confirmed.Confirmed = true

	tests := []struct {
		name                 string
		body                 any
		expectedStatus       int
		expectedField        string
		requiresConfirmation bool
		available            string
		stored               int
	}{
		{
			name: "Income",
			body: CommitTransactionRequest{Request: transaction.Request{
				Kind: ledger.KindIncome, Amount: "1500", Date: "2024-03-01", DestinationAccountID: "chk",
			}},
			expectedStatus: http.StatusCreated,
			stored:         1,
		},
		{
			name:           "Checking Expense Within Balance",
			body:           expense("chk", ledger.MethodChecking, "50.00"),
			expectedStatus: http.StatusCreated,
			stored:         1,
		},
		{
			name:                 "Checking Overdraft Needs Confirmation",
			body:                 expense("chk", ledger.MethodChecking, "80.00"),
			expectedStatus:       http.StatusConflict,
			requiresConfirmation: true,
			available:            "50.00",
		},
		{
			name:           "Checking Overdraft Confirmed",
			body:           confirmed,
			expectedStatus: http.StatusCreated,
			stored:         1,
		},
		{
			name:           "Cash Overdraft Blocked",
			body:           expense("cash", ledger.MethodCash, "20.01"),
			expectedStatus: http.StatusConflict,
			available:      "20.00",
		},
		{
			name:           "Card Purchase",
			body:           cardPurchase("300.00", 3, "2024-01"),
			expectedStatus: http.StatusCreated,
			stored:         1,
		},
		{
			name:           "Card Limit Exceeded",
			body:           cardPurchase("1000.01", 10, "2024-01"),
			expectedStatus: http.StatusConflict,
			available:      "1000.00",
		},
		{
			name:           "Payment Method Mismatch",
			body:           expense("cash", ledger.MethodChecking, "1.00"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedField:  "paymentMethod",
		},
		{
			name:           "Missing Amount",
			body:           expense("chk", ledger.MethodChecking, ""),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedField:  "amount",
		},
		{
			name:           "Unknown Account",
			body:           expense("nope", ledger.MethodChecking, "1.00"),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedField:  "originAccountId",
		},
		{
			name:           "Malformed JSON",
			body:           `{"kind":"EXPENSE",`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rr := f.do(t, http.MethodPost, "", tt.body)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}

			if rr.Code == http.StatusCreated {
				var got CommitResponse
				json.NewDecoder(rr.Body).Decode(&got)
				if got.State != transaction.StateCommitted || got.ID == "" {
					t.Errorf("unexpected commit response %+v", got)
				}
			} else {
				var errResp ErrorResponse
				json.NewDecoder(rr.Body).Decode(&errResp)
				if errResp.Field != tt.expectedField {
					t.Errorf("field = %q, want %q", errResp.Field, tt.expectedField)
				}
				if errResp.RequiresConfirmation != tt.requiresConfirmation {
					t.Errorf("requiresConfirmation = %v, want %v", errResp.RequiresConfirmation, tt.requiresConfirmation)
				}
				if tt.available != "" && (errResp.Available == nil || *errResp.Available != tt.available) {
					t.Errorf("available = %v, want %s", errResp.Available, tt.available)
				}
			}

			postings, _ := f.ledger.ListPostings(context.Background(), ledger.PostingFilter{UserID: testUser})
			purchases, _ := f.ledger.ListInstallmentsByAccount(context.Background(), testUser, "card")
			stored := len(postings)
			if len(purchases) > 0 {
				stored++
			}
			if stored != tt.stored {
				t.Errorf("stored %d records, want %d", stored, tt.stored)
			}
		})
	}
}

func TestTransactionLifecycle_CardPurchase(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "", cardPurchase("100.00", 3, "2024-11"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %v (%s)", rr.Code, rr.Body.String())
	}
	var created CommitResponse
	json.NewDecoder(rr.Body).Decode(&created)
	if created.Impact == nil || created.Impact.Available != "1000.00" || created.Impact.Severity != impact.SeverityProceed {
		t.Errorf("unexpected impact %+v", created.Impact)
	}

	rr = f.do(t, http.MethodGet, created.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got %v", rr.Code)
	}
	var got TransactionResponse
	json.NewDecoder(rr.Body).Decode(&got)

	want := []InstallmentResponse{
		{Number: 1, CompetenceMonth: "2024-11", Amount: "33.34"},
		{Number: 2, CompetenceMonth: "2024-12", Amount: "33.33"},
		{Number: 3, CompetenceMonth: "2025-01", Amount: "33.33"},
	}
	if len(got.Installments) != len(want) {
		t.Fatalf("got %d installments, want %d", len(got.Installments), len(want))
	}
	for i := range want {
		if got.Installments[i] != want[i] {
			t.Errorf("installment %d = %+v, want %+v", i, got.Installments[i], want[i])
		}
	}
	if got.FirstInstallmentMonth != "2024-11" || got.Amount != "100.00" || got.Kind != ledger.KindExpense {
		t.Errorf("unexpected purchase %+v", got)
	}

	// Editing to 2 installments replaces the whole set.
	rr = f.do(t, http.MethodPut, created.ID, cardPurchase("100.00", 2, "2024-11"))
	if rr.Code != http.StatusOK {
		t.Fatalf("update: got %v (%s)", rr.Code, rr.Body.String())
	}
	items, _ := f.ledger.ListInstallmentsByAccount(context.Background(), testUser, "card")
	if len(items) != 2 {
		t.Fatalf("got %d installments after edit, want 2", len(items))
	}

	rr = f.do(t, http.MethodPut, created.ID, expense("chk", ledger.MethodChecking, "10.00"))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("kind change: got %v want 422", rr.Code)
	}

	rr = f.do(t, http.MethodDelete, created.ID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got %v", rr.Code)
	}
	items, _ = f.ledger.ListInstallmentsByAccount(context.Background(), testUser, "card")
	if len(items) != 0 {
		t.Errorf("installments left after delete: %d", len(items))
	}

	rr = f.do(t, http.MethodGet, created.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %v want 404", rr.Code)
	}
	rr = f.do(t, http.MethodDelete, created.ID, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete: got %v want 404", rr.Code)
	}
}

func TestHandleUpdateTransaction_ExcludesItself(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodPost, "", expense("chk", ledger.MethodChecking, "50.00"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got %v (%s)", rr.Code, rr.Body.String())
	}
	var created CommitResponse
	json.NewDecoder(rr.Body).Decode(&created)

	// The stored 50.00 is left out, so the whole 50.00 is available again.
	rr = f.do(t, http.MethodPut, created.ID, expense("chk", ledger.MethodChecking, "50.00"))
	if rr.Code != http.StatusOK {
		t.Fatalf("same amount: got %v (%s)", rr.Code, rr.Body.String())
	}

	rr = f.do(t, http.MethodPut, created.ID, expense("chk", ledger.MethodChecking, "60.00"))
	if rr.Code != http.StatusConflict {
		t.Fatalf("overdraft edit: got %v want 409", rr.Code)
	}

	rr = f.do(t, http.MethodGet, created.ID, nil)
	var got TransactionResponse
	json.NewDecoder(rr.Body).Decode(&got)
	if got.Amount != "50.00" {
		t.Errorf("unconfirmed edit was stored: amount %s", got.Amount)
	}
	if got.Date != time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC).Format(time.DateOnly) {
		t.Errorf("date = %s", got.Date)
	}

	rr = f.do(t, http.MethodPut, "missing", expense("chk", ledger.MethodChecking, "1.00"))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %v want 404", rr.Code)
	}
}
