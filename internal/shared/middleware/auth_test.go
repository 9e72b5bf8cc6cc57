package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carteira/internal/shared/auth"
)

const testUserID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func TestAuth(t *testing.T) {
	// Setup JWT
	secret := "test-secret"
	jwt := auth.NewJWT(secret)
	validToken, _ := jwt.Generate(testUserID, "test@example.com", time.Hour)
	otherToken, _ := auth.NewJWT("other-secret").Generate(testUserID, "", time.Hour)

	tests := []struct {
		name           string
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedUser   bool
	}{
		{
			name: "Valid Token in Cookie",
			setupRequest: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: "access_token", Value: validToken})
			},
			expectedStatus: http.StatusOK,
			expectedUser:   true,
		},
		{
			name: "Valid Token in Header",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+validToken)
			},
			expectedStatus: http.StatusOK,
			expectedUser:   true,
		},
		{
			name:           "No Token",
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Invalid Token",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer invalid")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Wrong Scheme",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Basic "+validToken)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Token From Another Issuer",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+otherToken)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				userID, ok := UserID(r.Context())
				if !ok && tt.expectedUser {
					t.Error("Expected user ID in context, got none")
				}
				if ok && !tt.expectedUser {
					t.Error("Unexpected user ID in context")
				}
				if ok && userID != testUserID {
					t.Errorf("Expected user ID %s, got %s", testUserID, userID)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Auth(jwt)(nextHandler)

			req := httptest.NewRequest("GET", "/", nil)
			tt.setupRequest(req)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestUserID_Missing(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if _, ok := UserID(req.Context()); ok {
		t.Error("UserID() reported a user on an unauthenticated request")
	}
}
