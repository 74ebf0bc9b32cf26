package oidc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/benvon/smart-connections/internal/models"
)

type testIssuer struct {
	server  *httptest.Server
	signKey jwk.Key
	fetches atomic.Int32
}

func newTestIssuer(t *testing.T) *testIssuer {
	t.Helper()

	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	signKey, err := jwk.FromRaw(raw)
	if err != nil {
		t.Fatalf("FromRaw() error = %v", err)
	}
	_ = signKey.Set(jwk.KeyIDKey, "test-key")
	_ = signKey.Set(jwk.AlgorithmKey, jwa.RS256)

	pub, err := signKey.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		t.Fatalf("AddKey() error = %v", err)
	}

	ti := &testIssuer{signKey: signKey}
	ti.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		ti.fetches.Add(1)
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(ti.server.Close)
	return ti
}

func (ti *testIssuer) sign(t *testing.T, issuer string, exp time.Time) string {
	t.Helper()

	tok, err := jwt.NewBuilder().
		Issuer(issuer).
		Subject("user-123").
		Audience([]string{"client-abc"}).
		IssuedAt(exp.Add(-time.Hour)).
		Expiration(exp).
		Claim("email", "pat@example.com").
		Claim("name", "Pat").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, ti.signKey))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return string(signed)
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	const issuer = "https://issuer.example.com"
	jwksURL := ti.server.URL

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr bool
	}{
		{name: "valid", token: func(t *testing.T) string { return ti.sign(t, issuer, time.Now().Add(time.Hour)) }},
		{name: "expired", token: func(t *testing.T) string { return ti.sign(t, issuer, time.Now().Add(-time.Hour)) }, wantErr: true},
		{name: "wrong issuer", token: func(t *testing.T) string { return ti.sign(t, "https://evil.example.com", time.Now().Add(time.Hour)) }, wantErr: true},
		{name: "garbage", token: func(*testing.T) string { return "not.a.jwt" }, wantErr: true},
	}

	verifier := NewVerifier(NewJWKSManager(), issuer)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.Verify(context.Background(), tt.token(t), jwksURL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if claims.Sub != "user-123" || claims.Email != "pat@example.com" || claims.Name != "Pat" {
				t.Errorf("claims = %+v", claims)
			}
			if claims.Iss != issuer || claims.Aud != "client-abc" {
				t.Errorf("claims iss/aud = %s/%s", claims.Iss, claims.Aud)
			}
		})
	}
}

func TestClaimsFromToken_EmailVerified(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{name: "absent"},
		{name: "bool true", value: true, want: true},
		{name: "bool false", value: false},
		{name: "string true", value: "true", want: true},
		{name: "string false", value: "false"},
		{name: "unexpected type", value: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := jwt.NewBuilder().Subject("user-123")
			if tt.value != nil {
				b = b.Claim("email_verified", tt.value)
			}
			tok, err := b.Build()
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			claims, err := claimsFromToken(tok)
			if err != nil {
				t.Fatalf("claimsFromToken() error = %v", err)
			}
			if claims.EmailVerified != tt.want {
				t.Errorf("EmailVerified = %v, want %v", claims.EmailVerified, tt.want)
			}
		})
	}

	if _, err := claimsFromToken(jwt.New()); err == nil {
		t.Error("expected error for token without subject")
	}
}

func TestJWKSManager_Caches(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	m := NewJWKSManager()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := m.GetJWKS(context.Background(), ti.server.URL); err != nil {
			t.Fatalf("GetJWKS() error = %v", err)
		}
	}
	if got := ti.fetches.Load(); got != 1 {
		t.Errorf("fetches = %d, want 1 while cached", got)
	}

	now = now.Add(2 * time.Hour)
	if _, err := m.GetJWKS(context.Background(), ti.server.URL); err != nil {
		t.Fatalf("GetJWKS() error = %v", err)
	}
	m.Invalidate(ti.server.URL)
	if _, err := m.GetJWKS(context.Background(), ti.server.URL); err != nil {
		t.Fatalf("GetJWKS() error = %v", err)
	}
	if got := ti.fetches.Load(); got != 3 {
		t.Errorf("fetches = %d, want 3 after expiry and invalidation", got)
	}
}

func TestAuthenticator(t *testing.T) {
	t.Parallel()

	ti := newTestIssuer(t)
	const issuer = "https://issuer.example.com"
	jwksURL := ti.server.URL
	store := &mockConfigStore{configs: map[string]*models.OIDCConfig{
		"cognito": {Provider: "cognito", Issuer: issuer, JWKSUrl: &jwksURL},
		"nokeys":  {Provider: "nokeys", Issuer: issuer},
	}}

	auth := NewAuthenticator(NewProvider(store), NewJWKSManager(), "cognito")
	claims, err := auth.Authenticate(context.Background(), ti.sign(t, issuer, time.Now().Add(time.Hour)))
	if err != nil || claims.Sub != "user-123" {
		t.Fatalf("Authenticate() = %+v, %v", claims, err)
	}

	noKeys := NewAuthenticator(NewProvider(store), NewJWKSManager(), "nokeys")
	if _, err := noKeys.Authenticate(context.Background(), "x"); err == nil {
		t.Error("Authenticate() without JWKS URL error = nil")
	}
}
