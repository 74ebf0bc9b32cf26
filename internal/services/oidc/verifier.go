package oidc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/benvon/smart-connections/internal/models"
)

const clockSkew = 30 * time.Second

// Verifier verifies ID and access tokens against an issuer's keys
type Verifier struct {
	jwksManager *JWKSManager
	issuer      string
}

// NewVerifier creates a new JWT verifier
func NewVerifier(jwksManager *JWKSManager, issuer string) *Verifier {
	return &Verifier{
		jwksManager: jwksManager,
		issuer:      issuer,
	}
}

// Verify checks the token signature, expiry and issuer and returns its claims
func (v *Verifier) Verify(ctx context.Context, tokenString string, jwksURL string) (*models.JWTClaims, error) {
	keys, err := v.jwksManager.GetJWKS(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	token, err := jwt.Parse([]byte(tokenString),
		jwt.WithKeySet(keys),
		jwt.WithValidate(true),
		jwt.WithIssuer(v.issuer),
		jwt.WithAcceptableSkew(clockSkew),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	return claimsFromToken(token)
}

func claimsFromToken(token jwt.Token) (*models.JWTClaims, error) {
	if token.Subject() == "" {
		return nil, errors.New("token missing subject claim")
	}

	claims := &models.JWTClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
	}
	if aud := token.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}

	private := token.PrivateClaims()
	if email, ok := private["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := private["name"].(string); ok {
		claims.Name = name
	}
	// some providers send email_verified as a string
	switch v := private["email_verified"].(type) {
	case bool:
		claims.EmailVerified = v
	case string:
		claims.EmailVerified = v == "true"
	}

	return claims, nil
}

// Authenticator verifies bearer tokens for one configured provider
type Authenticator struct {
	provider     *Provider
	jwks         *JWKSManager
	providerName string
}

// NewAuthenticator creates an authenticator for providerName (e.g. "cognito")
func NewAuthenticator(provider *Provider, jwks *JWKSManager, providerName string) *Authenticator {
	return &Authenticator{provider: provider, jwks: jwks, providerName: providerName}
}

// ProviderName returns the provider whose tokens are accepted
func (a *Authenticator) ProviderName() string {
	return a.providerName
}

// Authenticate verifies a raw bearer token
func (a *Authenticator) Authenticate(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	config, err := a.provider.GetConfig(ctx, a.providerName)
	if err != nil {
		return nil, err
	}
	if config.JWKSUrl == nil || *config.JWKSUrl == "" {
		return nil, fmt.Errorf("JWKS URL not configured for provider %s", a.providerName)
	}
	return NewVerifier(a.jwks, config.Issuer).Verify(ctx, tokenString, *config.JWKSUrl)
}
