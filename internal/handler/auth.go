package handler

import (
	"encoding/json"
	"net/http"

	"trade-toolkit-api/internal/service"
	"trade-toolkit-api/pkg/apierror"
	"trade-toolkit-api/pkg/response"
)

// AuthHandler exchanges API keys for revocable session tokens.
type AuthHandler struct {
	tokens  *service.TokenService
	apiKeys []string
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(tokens *service.TokenService, apiKeys []string) *AuthHandler {
	return &AuthHandler{
		tokens:  tokens,
		apiKeys: apiKeys,
	}
}

// TokenRequest is the body for token generation.
type TokenRequest struct {
	Key string `json:"key"`
}

// TokenResponse is the body returned on successful token generation.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// GenerateToken handles POST /api/v1/auth/token
func (h *AuthHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Key == "" {
		response.Error(w, apierror.BadRequest("key is required"))
		return
	}

	valid := false
	for _, k := range h.apiKeys {
		if req.Key == k {
			valid = true
			break
		}
	}
	if !valid {
		response.Error(w, apierror.Unauthorized("Invalid API key"))
		return
	}

	token, err := h.tokens.GenerateToken(r.Context())
	if err != nil {
		response.Error(w, apierror.InternalError("failed to generate token"))
		return
	}

	response.OK(w, TokenResponse{
		Token:     token,
		ExpiresIn: int(h.tokens.TTL().Seconds()),
	})
}

// RevokeRequest is the body for token revocation.
type RevokeRequest struct {
	Token string `json:"token"`
}

// RevokeToken handles POST /api/v1/auth/revoke
func (h *AuthHandler) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var req RevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Token == "" {
		response.Error(w, apierror.BadRequest("token is required"))
		return
	}

	if err := h.tokens.RevokeToken(r.Context(), req.Token); err != nil {
		response.Error(w, apierror.InternalError("failed to revoke token"))
		return
	}
	response.OK(w, map[string]string{"status": "revoked"})
}
