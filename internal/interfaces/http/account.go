package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"carteira/internal/domain/account"
	"carteira/internal/domain/balance"
	"carteira/internal/shared/logger"
	"carteira/internal/shared/money"
)

type AccountHandler struct {
	accountService *account.Service
	projector      *balance.Projector
}

func NewAccountHandler(accountService *account.Service, projector *balance.Projector) *AccountHandler {
	return &AccountHandler{accountService: accountService, projector: projector}
}

// HTTP request/response types (transport layer concerns)
type CreateAccountRequest struct {
	Name           string       `json:"name"`
	Kind           account.Kind `json:"kind"`
	InitialBalance *string      `json:"initialBalance,omitempty"`
	CreditLimit    *string      `json:"creditLimit,omitempty"`
}

type UpdateAccountRequest struct {
	Name           *string `json:"name,omitempty"`
	InitialBalance *string `json:"initialBalance,omitempty"`
	CreditLimit    *string `json:"creditLimit,omitempty"`
}

// AccountResponse carries the derived figures next to the stored ones. For
// credit cards Balance is the used limit.
type AccountResponse struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Kind           account.Kind `json:"kind"`
	InitialBalance *string      `json:"initialBalance"`
	CreditLimit    *string      `json:"creditLimit"`
	Balance        string       `json:"balance"`
	AvailableLimit *string      `json:"availableLimit"`
	Active         bool         `json:"active"`
	CreatedAt      string       `json:"createdAt"`
}

// HandleListAccounts returns the user's active accounts with their balances
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := h.projector.Balances(r.Context(), accounts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]AccountResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, toAccountResponse(row))
	}
	writeJSON(w, http.StatusOK, response)
}

// HandleCreateAccount creates a cash, checking or credit card account
func (h *AccountHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := account.CreateParams{UserID: userID, Name: req.Name, Kind: req.Kind}
	var err error
	if params.InitialBalance, err = parseOptionalAmount(req.InitialBalance); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Field: "initialBalance"})
		return
	}
	if params.CreditLimit, err = parseOptionalAmount(req.CreditLimit); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Field: "creditLimit"})
		return
	}

	acc, err := h.accountService.CreateAccount(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().
		Str("account_id", acc.ID).
		Str("kind", string(acc.Kind)).
		Msg("Account created")

	h.writeAccount(w, r, http.StatusCreated, acc)
}

// HandleGetAccount returns one account with its balance
func (h *AccountHandler) HandleGetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccount(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeAccount(w, r, http.StatusOK, acc)
}

// HandleUpdateAccount changes name, initial balance or credit limit
func (h *AccountHandler) HandleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := account.UpdateParams{Name: req.Name}
	var err error
	if params.InitialBalance, err = parseOptionalAmount(req.InitialBalance); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Field: "initialBalance"})
		return
	}
	if params.CreditLimit, err = parseOptionalAmount(req.CreditLimit); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Field: "creditLimit"})
		return
	}

	acc, err := h.accountService.UpdateAccount(r.Context(), userID, r.PathValue("id"), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.writeAccount(w, r, http.StatusOK, acc)
}

// HandleDisableAccount soft deletes an account; its history is kept
func (h *AccountHandler) HandleDisableAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	accountID := r.PathValue("id")
	if err := h.accountService.DisableAccount(r.Context(), userID, accountID); err != nil {
		writeError(w, r, err)
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().Str("account_id", accountID).Msg("Account disabled")
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) writeAccount(w http.ResponseWriter, r *http.Request, status int, acc *account.Account) {
	rows, err := h.projector.Balances(r.Context(), []*account.Account{acc})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, status, toAccountResponse(rows[0]))
}

func toAccountResponse(row balance.AccountBalance) AccountResponse {
	acc := row.Account
	return AccountResponse{
		ID:             acc.ID,
		Name:           acc.Name,
		Kind:           acc.Kind,
		InitialBalance: formatNull(acc.InitialBalance),
		CreditLimit:    formatNull(acc.CreditLimit),
		Balance:        money.Format(row.Balance),
		AvailableLimit: formatNull(row.AvailableLimit),
		Active:         acc.Active,
		CreatedAt:      acc.CreatedAt.Format(time.RFC3339),
	}
}

func formatNull(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := money.Format(d.Decimal)
	return &s
}

func parseOptionalAmount(raw *string) (*decimal.Decimal, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := money.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
