package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_DisabledWithoutKeys(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{})
	srv := mw(okHandler())

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_APIKey(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{APIKeys: []string{"secret"}})
	srv := mw(okHandler())

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"valid key", "X-API-Key", "secret", http.StatusOK},
		{"valid bearer", "Authorization", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/ledger", nil)
			if tt.header != "" {
				r.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, r)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_TokenEndpointOpen(t *testing.T) {
	mw := NewAuthMiddleware(AuthConfig{APIKeys: []string{"secret"}})
	srv := mw(okHandler())

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
