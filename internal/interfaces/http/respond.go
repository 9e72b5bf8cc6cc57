package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"carteira/internal/domain/account"
	"carteira/internal/domain/impact"
	"carteira/internal/domain/installment"
	"carteira/internal/domain/ledger"
	"carteira/internal/domain/transaction"
	"carteira/internal/shared/logger"
	"carteira/internal/shared/middleware"
	"carteira/internal/shared/money"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error                string  `json:"error"`
	Field                string  `json:"field,omitempty"`
	Available            *string `json:"available,omitempty"`
	RequiresConfirmation bool    `json:"requiresConfirmation,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 without its details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr  *transaction.ValidationError
		imerr *impact.Error
	)

	switch {
	case errors.As(err, &imerr):
		available := money.Format(imerr.Available)
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:                err.Error(),
			Available:            &available,
			RequiresConfirmation: errors.Is(err, impact.ErrNegativeBalanceWarning),
		})

	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Field: verr.Field})

	case errors.Is(err, account.ErrAccountNotFound),
		errors.Is(err, account.ErrForbidden),
		errors.Is(err, transaction.ErrTransactionNotFound),
		errors.Is(err, ledger.ErrPostingNotFound),
		errors.Is(err, ledger.ErrPurchaseNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})

	case errors.Is(err, account.ErrInvalidInput),
		errors.Is(err, account.ErrInvalidKind),
		errors.Is(err, account.ErrInactive),
		errors.Is(err, transaction.ErrKindChange),
		errors.Is(err, installment.ErrInvalidCount),
		errors.Is(err, installment.ErrInvalidAmount),
		errors.Is(err, installment.ErrIndexOutOfRange),
		errors.Is(err, installment.ErrInconsistentInstallments):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})

	default:
		log := logger.FromContext(r.Context())
		var serr *ledger.StorageError
		if errors.As(err, &serr) {
			log = log.With().Str("op", serr.Op).Logger()
		}
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// decodeJSON writes a 400 and returns false for malformed bodies or unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	}
	return userID, ok
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
