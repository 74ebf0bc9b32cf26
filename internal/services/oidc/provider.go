package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/smart-connections/internal/models"
)

// ConfigStore loads provider configuration
type ConfigStore interface {
	GetByProvider(ctx context.Context, provider string) (*models.OIDCConfig, error)
}

// Provider resolves provider configuration and discovery metadata
type Provider struct {
	store      ConfigStore
	httpClient *http.Client
}

// NewProvider creates a new OIDC provider manager
func NewProvider(store ConfigStore) *Provider {
	return &Provider{
		store:      store,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// Discovery is the subset of the OpenID discovery document the API uses
type Discovery struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	JWKSURI               string `json:"jwks_uri"`
}

// LoginConfig contains OIDC login configuration for the frontend
type LoginConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
}

// GetConfig retrieves OIDC configuration for a provider
func (p *Provider) GetConfig(ctx context.Context, providerName string) (*models.OIDCConfig, error) {
	config, err := p.store.GetByProvider(ctx, providerName)
	if err != nil {
		return nil, fmt.Errorf("failed to get OIDC config: %w", err)
	}
	return config, nil
}

// Discover fetches the issuer's discovery document
func (p *Provider) Discover(ctx context.Context, issuer string) (*Discovery, error) {
	discoveryURL := strings.TrimSuffix(issuer, "/") + "/.well-known/openid-configuration"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discovery document: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}

	var d Discovery
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to decode discovery document: %w", err)
	}
	return &d, nil
}

// GetLoginConfig returns the configuration needed for frontend OIDC login.
// A failed discovery falls back to endpoints derived from the issuer.
func (p *Provider) GetLoginConfig(ctx context.Context, providerName string) (*LoginConfig, error) {
	config, err := p.GetConfig(ctx, providerName)
	if err != nil {
		return nil, err
	}

	discovery, err := p.Discover(ctx, config.Issuer)
	if err != nil {
		discovery = nil
	}
	authEndpoint, tokenEndpoint := resolveEndpoints(config, discovery)

	return &LoginConfig{
		AuthorizationEndpoint: authEndpoint,
		TokenEndpoint:         tokenEndpoint,
		ClientID:              config.ClientID,
		RedirectURI:           config.RedirectURI,
		Scope:                 "openid email profile",
	}, nil
}

// resolveEndpoints picks the OAuth2 endpoints. Cognito needs its hosted domain rather than the issuer.
func resolveEndpoints(config *models.OIDCConfig, discovery *Discovery) (authEndpoint, tokenEndpoint string) {
	if config.Domain != nil && *config.Domain != "" && strings.Contains(config.Issuer, "cognito-idp.") {
		base := *config.Domain
		if !strings.HasPrefix(base, "https://") {
			base = "https://" + base
		}
		base = strings.TrimSuffix(base, "/")
		return base + "/oauth2/authorize", base + "/oauth2/token"
	}

	issuer := strings.TrimSuffix(config.Issuer, "/")
	authEndpoint = issuer + "/oauth2/authorize"
	tokenEndpoint = issuer + "/oauth2/token"
	if discovery != nil {
		if discovery.AuthorizationEndpoint != "" {
			authEndpoint = discovery.AuthorizationEndpoint
		}
		if discovery.TokenEndpoint != "" {
			tokenEndpoint = discovery.TokenEndpoint
		}
	}
	return authEndpoint, tokenEndpoint
}
