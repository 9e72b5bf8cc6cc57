package http

import (
	"net/http"

	"carteira/internal/domain/balance"
	"carteira/internal/domain/impact"
	"carteira/internal/shared/money"
)

type ImpactHandler struct {
	evaluator *impact.Evaluator
}

func NewImpactHandler(evaluator *impact.Evaluator) *ImpactHandler {
	return &ImpactHandler{evaluator: evaluator}
}

// ImpactRequest asks what debiting Amount from AccountID would do.
// ExcludeTransactionID leaves a stored record out, as when editing it.
type ImpactRequest struct {
	AccountID            string `json:"accountId"`
	Amount               string `json:"amount"`
	ExcludeTransactionID string `json:"excludeTransactionId,omitempty"`
}

type ImpactCheckResponse struct {
	ImpactResponse
	Message string `json:"message,omitempty"`
}

// HandleEvaluate runs the impact check without committing anything
func (h *ImpactHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ImpactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AccountID == "" {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "accountId is required", Field: "accountId"})
		return
	}
	amount, err := money.Parse(req.Amount)
	if err != nil || !amount.IsPositive() {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: "amount must be a positive amount with at most 2 decimal places",
			Field: "amount",
		})
		return
	}

	// Ids are unique across postings and purchases, so both can be set.
	excl := balance.Exclusion{PostingID: req.ExcludeTransactionID, PurchaseID: req.ExcludeTransactionID}

	res, err := h.evaluator.Evaluate(r.Context(), userID, req.AccountID, amount, excl)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ImpactCheckResponse{ImpactResponse: *toImpactResponse(res)}
	if err := res.Err(); err != nil {
		resp.Message = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
