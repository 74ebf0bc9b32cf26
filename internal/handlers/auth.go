package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/request"
	"github.com/benvon/smart-connections/internal/services/oidc"
)

// OIDCProvider resolves stored provider configuration and issuer metadata
type OIDCProvider interface {
	GetConfig(ctx context.Context, providerName string) (*models.OIDCConfig, error)
	GetLoginConfig(ctx context.Context, providerName string) (*oidc.LoginConfig, error)
	Discover(ctx context.Context, issuer string) (*oidc.Discovery, error)
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	oidcProvider OIDCProvider
	providerName string
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthHandler creates a new auth handler for the named provider
func NewAuthHandler(oidcProvider OIDCProvider, providerName string, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{oidcProvider: oidcProvider, providerName: providerName, logger: logger, now: time.Now}
}

// RegisterRoutes registers the public auth routes.
// The router should already have the /api/v1/auth prefix.
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/oidc/login", h.GetOIDCLogin).Methods("GET")
	r.HandleFunc("/oidc/token", h.ExchangeToken).Methods("POST")
}

// RegisterProtectedRoutes registers auth routes that need an authenticated user
func (h *AuthHandler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// TokenExchangeRequest carries an authorization code returned by the provider
type TokenExchangeRequest struct {
	Code string `json:"code" validate:"required,max=2048"`
}

// TokenExchangeResponse is the token set returned to the client
type TokenExchangeResponse struct {
	IDToken   string `json:"id_token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
}

// GetOIDCLogin returns OIDC configuration for frontend
func (h *AuthHandler) GetOIDCLogin(w http.ResponseWriter, r *http.Request) {
	loginConfig, err := h.oidcProvider.GetLoginConfig(r.Context(), h.providerName)
	if err != nil {
		h.logger.Error("oidc_login_config_failed", zap.String("provider", h.providerName), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get OIDC configuration")
		return
	}

	respondJSON(w, http.StatusOK, loginConfig)
}

// ExchangeToken trades an authorization code for the provider's ID token
func (h *AuthHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req TokenExchangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	config, err := h.oidcProvider.GetConfig(ctx, h.providerName)
	if err != nil {
		h.logger.Error("oidc_config_failed", zap.String("provider", h.providerName), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to get OIDC configuration")
		return
	}
	discovery, err := h.oidcProvider.Discover(ctx, config.Issuer)
	if err != nil {
		h.logger.Debug("oidc_discovery_failed", zap.String("issuer", config.Issuer), zap.Error(err))
		discovery = nil
	}

	token, err := oidc.NewClient(config, discovery).ExchangeCode(ctx, req.Code)
	if err != nil {
		h.logger.Warn("oidc_code_exchange_failed", zap.String("provider", h.providerName), zap.Error(err))
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Authorization code exchange failed")
		return
	}
	idToken, ok := oidc.IDToken(token)
	if !ok {
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Provider response did not include an ID token")
		return
	}

	resp := TokenExchangeResponse{IDToken: idToken, TokenType: "Bearer"}
	if !token.Expiry.IsZero() {
		resp.ExpiresIn = int64(token.Expiry.Sub(h.now()).Seconds())
	}
	respondJSON(w, http.StatusOK, resp)
}

// MeResponse is the authenticated user's profile
type MeResponse struct {
	*models.User
	DisplayName      string `json:"display_name"`
	SessionExpiresIn int64  `json:"session_expires_in,omitempty"`
}

// GetMe returns current user information
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	resp := MeResponse{User: user, DisplayName: user.DisplayName()}
	if claims := request.ClaimsFromContext(r); claims != nil {
		resp.SessionExpiresIn = int64(claims.ExpiresIn(h.now()).Seconds())
	}
	respondJSON(w, http.StatusOK, resp)
}
