package middleware

import (
	"context"
	"net/http"
	"strings"

	"trade-toolkit-api/pkg/apierror"
)

// TokenValidator validates session tokens. Satisfied by service.TokenService.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	// Tokens validates X-Token session tokens; may be nil.
	Tokens TokenValidator

	// APIKeys are the accepted long-lived keys. Empty disables auth
	// entirely: the toolkit normally runs as a local single-user service.
	APIKeys []string
}

// NewAuthMiddleware creates the authentication middleware. Dependencies are
// carried in the closure; there is no global state.
func NewAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(cfg.APIKeys) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			// Token generation authenticates with the API key in the
			// request body, not a header.
			if r.URL.Path == "/api/v1/auth/token" && r.Method == http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			// Session token first.
			if token := r.Header.Get("X-Token"); token != "" && cfg.Tokens != nil {
				if err := cfg.Tokens.ValidateToken(r.Context(), token); err != nil {
					writeError(w, apierror.Unauthorized("Invalid or expired token"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			// Fall back to X-API-Key / bearer.
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					apiKey = strings.TrimPrefix(auth, "Bearer ")
				}
			}

			if apiKey == "" {
				writeError(w, apierror.Unauthorized("Authentication required. Use X-Token or X-API-Key header."))
				return
			}
			if !isValidKey(apiKey, cfg.APIKeys) {
				writeError(w, apierror.Unauthorized("Invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}

// isValidKey checks if the provided key is in the valid keys list.
func isValidKey(key string, validKeys []string) bool {
	for _, valid := range validKeys {
		if key == valid {
			return true
		}
	}
	return false
}
