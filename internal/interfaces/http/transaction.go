package http

import (
	"net/http"
	"time"

	"carteira/internal/domain/impact"
	"carteira/internal/domain/ledger"
	"carteira/internal/domain/transaction"
	"carteira/internal/shared/money"
)

type TransactionHandler struct {
	service *transaction.Service
}

func NewTransactionHandler(service *transaction.Service) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// CommitTransactionRequest is a create or edit payload. Confirmed acknowledges
// a checking overdraft reported by a previous attempt.
type CommitTransactionRequest struct {
	transaction.Request
	Confirmed bool `json:"confirmed,omitempty"`
}

type ImpactResponse struct {
	AccountID   string          `json:"accountId"`
	AccountKind string          `json:"accountKind"`
	Available   string          `json:"available"`
	Candidate   string          `json:"candidate"`
	WillExceed  bool            `json:"willExceed"`
	Severity    impact.Severity `json:"severity"`
}

type CommitResponse struct {
	ID     string            `json:"id"`
	State  transaction.State `json:"state"`
	Impact *ImpactResponse   `json:"impact,omitempty"`
}

type InstallmentResponse struct {
	Number          int    `json:"number"`
	CompetenceMonth string `json:"competenceMonth"`
	Amount          string `json:"amount"`
}

// TransactionResponse is either a posting or a card purchase. Purchase-only
// fields are empty for postings.
type TransactionResponse struct {
	ID                    string                `json:"id"`
	Kind                  ledger.PostingKind    `json:"kind"`
	Amount                string                `json:"amount"`
	Date                  string                `json:"date"`
	OriginAccountID       *string               `json:"originAccountId,omitempty"`
	DestinationAccountID  *string               `json:"destinationAccountId,omitempty"`
	PaymentMethod         *ledger.PaymentMethod `json:"paymentMethod,omitempty"`
	CategoryID            *string               `json:"categoryId,omitempty"`
	SubcategoryID         *string               `json:"subcategoryId,omitempty"`
	Description           *string               `json:"description,omitempty"`
	InstallmentCount      int                   `json:"installmentCount,omitempty"`
	FirstInstallmentMonth string                `json:"firstInstallmentMonth,omitempty"`
	Installments          []InstallmentResponse `json:"installments,omitempty"`
	CreatedAt             string                `json:"createdAt"`
}

// HandleCreateTransaction classifies the payload, runs the impact check and
// stores it. Blocked or unconfirmed operations answer 409.
func (h *TransactionHandler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	h.commit(w, r, "")
}

// HandleUpdateTransaction replaces a stored transaction
func (h *TransactionHandler) HandleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	h.commit(w, r, r.PathValue("id"))
}

func (h *TransactionHandler) commit(w http.ResponseWriter, r *http.Request, id string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CommitTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	op, err := transaction.Classify(userID, req.Request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var out *transaction.Outcome
	if id == "" {
		out, err = h.service.Commit(r.Context(), userID, op, req.Confirmed)
	} else {
		out, err = h.service.Update(r.Context(), userID, id, op, req.Confirmed)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, CommitResponse{ID: out.ID, State: out.State, Impact: toImpactResponse(out.Impact)})
}

// HandleGetTransaction returns a posting or a card purchase with its installments
func (h *TransactionHandler) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(rec))
}

// HandleDeleteTransaction removes a posting, or a purchase with all its installments
func (h *TransactionHandler) HandleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toImpactResponse(res *impact.Result) *ImpactResponse {
	if res == nil {
		return nil
	}
	return &ImpactResponse{
		AccountID:   res.AccountID,
		AccountKind: string(res.AccountKind),
		Available:   money.Format(res.Available),
		Candidate:   money.Format(res.Candidate),
		WillExceed:  res.WillExceed,
		Severity:    res.Severity,
	}
}

func toTransactionResponse(rec *transaction.Record) TransactionResponse {
	if p := rec.Posting; p != nil {
		return TransactionResponse{
			ID:                   p.ID,
			Kind:                 p.Kind,
			Amount:               money.Format(p.Amount),
			Date:                 p.Date.Format(time.DateOnly),
			OriginAccountID:      p.OriginAccountID,
			DestinationAccountID: p.DestinationAccountID,
			PaymentMethod:        p.PaymentMethod,
			CategoryID:           p.CategoryID,
			SubcategoryID:        p.SubcategoryID,
			Description:          p.Description,
			CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		}
	}

	p := rec.Purchase
	method := ledger.MethodCreditCard
	origin := p.AccountID
	installments := make([]InstallmentResponse, len(p.Installments))
	for i, inst := range p.Installments {
		installments[i] = InstallmentResponse{
			Number:          inst.Number,
			CompetenceMonth: inst.CompetenceMonth.String(),
			Amount:          money.Format(inst.Amount),
		}
	}
	return TransactionResponse{
		ID:                    p.ID,
		Kind:                  ledger.KindExpense,
		Amount:                money.Format(p.TotalAmount),
		Date:                  p.PurchaseDate.Format(time.DateOnly),
		OriginAccountID:       &origin,
		PaymentMethod:         &method,
		CategoryID:            p.CategoryID,
		SubcategoryID:         p.SubcategoryID,
		Description:           p.Description,
		InstallmentCount:      p.InstallmentCount,
		FirstInstallmentMonth: p.FirstMonth().String(),
		Installments:          installments,
		CreatedAt:             p.CreatedAt.Format(time.RFC3339),
	}
}
