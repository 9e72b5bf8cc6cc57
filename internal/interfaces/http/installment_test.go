package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"carteira/internal/domain/installment"
)

func TestHandlePreview(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		amounts        []string
		months         []string
		consistent     bool
	}{
		{
			name:           "Even Split With Remainder First",
			body:           `{"totalAmount":"100.00","installmentCount":3,"firstInstallmentMonth":"2024-11"}`,
			expectedStatus: http.StatusOK,
			amounts:        []string{"33.34", "33.33", "33.33"},
			months:         []string{"2024-11", "2024-12", "2025-01"},
			consistent:     true,
		},
		{
			name: "Override Kept By Position",
			body: `{"totalAmount":"100.00","installmentCount":4,"firstInstallmentMonth":"2024-11",
				"current":[{"amount":"40.00","overridden":true},{"amount":"30.00"},{"amount":"30.00"}]}`,
			expectedStatus: http.StatusOK,
			amounts:        []string{"40.00", "20.00", "20.00", "20.00"},
			months:         []string{"2024-11", "2024-12", "2025-01", "2025-02"},
			consistent:     true,
		},
		{
			name: "Every Entry Overridden",
			body: `{"totalAmount":"100.00","installmentCount":2,"firstInstallmentMonth":"2024-01",
				"current":[{"amount":"40.00","overridden":true},{"amount":"40.00","overridden":true}]}`,
			expectedStatus: http.StatusOK,
			amounts:        []string{"40.00", "40.00"},
			months:         []string{"2024-01", "2024-02"},
			consistent:     false,
		},
		{
			name: "Overrides Above Total",
			body: `{"totalAmount":"50.00","installmentCount":3,"firstInstallmentMonth":"2024-01",
				"current":[{"amount":"60.00","overridden":true}]}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Zero Count",
			body:           `{"totalAmount":"10.00","installmentCount":0,"firstInstallmentMonth":"2024-01"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Count Above Maximum",
			body:           `{"totalAmount":"10.00","installmentCount":121,"firstInstallmentMonth":"2024-01"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Huge Count",
			body:           `{"totalAmount":"10.00","installmentCount":1000000000,"firstInstallmentMonth":"2024-01"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "Huge Count With Current",
			body: `{"totalAmount":"10.00","installmentCount":1000000000,"firstInstallmentMonth":"2024-01",
				"current":[{"amount":"5.00","overridden":true}]}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Exponent Total",
			body:           `{"totalAmount":"1e20","installmentCount":2,"firstInstallmentMonth":"2024-01"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Bad Month",
			body:           `{"totalAmount":"10.00","installmentCount":2,"firstInstallmentMonth":"2024-13"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "Too Precise",
			body:           `{"totalAmount":"10.001","installmentCount":2,"firstInstallmentMonth":"2024-01"}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInstallmentHandler()

			req := withUser(httptest.NewRequest(http.MethodPost, "/api/installments/preview", bytes.NewBufferString(tt.body)), testUser)
			rr := httptest.NewRecorder()
			handler.HandlePreview(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("handler returned wrong status code: got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
			if rr.Code != http.StatusOK {
				return
			}

			var got PreviewResponse
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatal(err)
			}
			if got.Consistent != tt.consistent {
				t.Errorf("Consistent = %v, want %v (%s)", got.Consistent, tt.consistent, got.Error)
			}
			if len(got.Installments) != len(tt.amounts) {
				t.Fatalf("got %d installments, want %d", len(got.Installments), len(tt.amounts))
			}
			for i, inst := range got.Installments {
				if inst.Amount != tt.amounts[i] || inst.CompetenceMonth != tt.months[i] || inst.Number != i+1 {
					t.Errorf("installment %d = %+v, want %s in %s", i, inst, tt.amounts[i], tt.months[i])
				}
			}
		})
	}
}

func TestHandlePreview_TooManyCurrentEntries(t *testing.T) {
	current := make([]PlanEntry, installment.MaxCount+1)
	for i := range current {
		current[i] = PlanEntry{Amount: "0.10"}
	}
	body := PreviewRequest{
		TotalAmount:           "12.10",
		InstallmentCount:      2,
		FirstInstallmentMonth: "2024-01",
		Current:               current,
	}

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/installments/preview", jsonBody(t, body)), testUser)
	rr := httptest.NewRecorder()
	NewInstallmentHandler().HandlePreview(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, http.StatusUnprocessableEntity)
	}
}
