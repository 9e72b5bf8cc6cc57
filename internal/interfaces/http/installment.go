package http

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"carteira/internal/domain/installment"
	"carteira/internal/shared/money"
)

// InstallmentHandler previews installment plans without storing anything.
type InstallmentHandler struct{}

func NewInstallmentHandler() *InstallmentHandler {
	return &InstallmentHandler{}
}

type PlanEntry struct {
	Amount     string `json:"amount"`
	Overridden bool   `json:"overridden,omitempty"`
}

// PreviewRequest describes the plan being edited. Current, when given, is the
// plan shown before this change; its overridden amounts are kept by position.
type PreviewRequest struct {
	TotalAmount           string      `json:"totalAmount"`
	InstallmentCount      int         `json:"installmentCount"`
	FirstInstallmentMonth string      `json:"firstInstallmentMonth"`
	Current               []PlanEntry `json:"current,omitempty"`
}

type PreviewEntry struct {
	Number          int    `json:"number"`
	CompetenceMonth string `json:"competenceMonth"`
	Amount          string `json:"amount"`
	Overridden      bool   `json:"overridden"`
}

// PreviewResponse is the regenerated plan. Error is set when the edited
// amounts no longer add up to the total.
type PreviewResponse struct {
	TotalAmount  string         `json:"totalAmount"`
	PlanTotal    string         `json:"planTotal"`
	Installments []PreviewEntry `json:"installments"`
	Consistent   bool           `json:"consistent"`
	Error        string         `json:"error,omitempty"`
}

// HandlePreview splits a total into installments, keeping edited amounts
func (h *InstallmentHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req PreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	total, err := money.Parse(req.TotalAmount)
	if err != nil || !total.IsPositive() {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: "totalAmount must be a positive amount with at most 2 decimal places",
			Field: "totalAmount",
		})
		return
	}
	first, err := installment.ParseMonth(req.FirstInstallmentMonth)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: "firstInstallmentMonth must be formatted as YYYY-MM",
			Field: "firstInstallmentMonth",
		})
		return
	}

	schedule, err := buildSchedule(req, total, first)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries := schedule.Entries()
	resp := PreviewResponse{
		TotalAmount:  money.Format(total),
		PlanTotal:    money.Format(schedule.Total()),
		Installments: make([]PreviewEntry, len(entries)),
		Consistent:   true,
	}
	for i, e := range entries {
		resp.Installments[i] = PreviewEntry{
			Number:          i + 1,
			CompetenceMonth: e.Month.String(),
			Amount:          money.Format(e.Amount),
			Overridden:      e.Overridden,
		}
	}
	if err := installment.Validate(entries, total, req.InstallmentCount); err != nil {
		resp.Consistent = false
		resp.Error = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func buildSchedule(req PreviewRequest, total decimal.Decimal, first installment.Month) (*installment.Schedule, error) {
	if len(req.Current) == 0 {
		return installment.NewSchedule(total, req.InstallmentCount, first)
	}
	if len(req.Current) > installment.MaxCount {
		return nil, fmt.Errorf("%w: current has %d entries", installment.ErrInvalidCount, len(req.Current))
	}

	current := make([]installment.Entry, len(req.Current))
	for i, e := range req.Current {
		amount, err := money.Parse(e.Amount)
		if err != nil || amount.IsNegative() {
			return nil, fmt.Errorf("%w: current[%d]", installment.ErrInvalidAmount, i)
		}
		current[i] = installment.Entry{Month: first.Add(i), Amount: amount, Overridden: e.Overridden}
	}

	schedule := installment.ScheduleFrom(current)
	if err := schedule.Regenerate(total, req.InstallmentCount, first); err != nil {
		return nil, err
	}
	return schedule, nil
}
