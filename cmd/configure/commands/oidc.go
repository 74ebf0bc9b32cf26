package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benvon/smart-connections/internal/config"
	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/models"
	"github.com/benvon/smart-connections/internal/services/oidc"
)

// NewOIDCCmd creates the OIDC configuration command
func NewOIDCCmd() *cobra.Command {
	var issuer, domain, clientID, clientSecret, redirectURI, jwksURL string
	var skipDiscovery bool

	cmd := &cobra.Command{
		Use:   "oidc <provider-name>",
		Short: "Configure OIDC provider",
		Long:  "Configure an OIDC provider for authentication. Provider name can be any identifier (e.g., 'cognito', 'okta', 'auth0')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := strings.TrimSpace(args[0])
			if provider == "" {
				return fmt.Errorf("provider name cannot be empty")
			}
			if issuer == "" || clientID == "" || redirectURI == "" {
				return fmt.Errorf("required flags: --issuer, --client-id, --redirect-uri (--client-secret is optional for public clients)")
			}
			issuer = strings.TrimRight(issuer, "/")

			return withDB(func(ctx context.Context, _ *config.Config, db *database.DB) error {
				if jwksURL == "" {
					jwksURL = discoverJWKS(ctx, issuer, skipDiscovery)
				}

				oidcRepo := database.NewOIDCConfigRepository(db)
				existing, err := oidcRepo.GetByProvider(ctx, provider)
				if err != nil && !errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("failed to look up OIDC config: %w", err)
				}

				c := existing
				if c == nil {
					c = &models.OIDCConfig{ID: uuid.New(), Provider: provider}
				}
				c.Issuer = issuer
				c.ClientID = clientID
				c.RedirectURI = redirectURI
				c.JWKSUrl = &jwksURL
				c.ClientSecret = optional(clientSecret)
				if domain != "" {
					c.Domain = &domain
				}

				if existing != nil {
					if err := oidcRepo.Update(ctx, c); err != nil {
						return fmt.Errorf("failed to update OIDC config: %w", err)
					}
					fmt.Printf("Updated OIDC configuration for provider: %s\n", provider)
				} else {
					if err := oidcRepo.Create(ctx, c); err != nil {
						return fmt.Errorf("failed to create OIDC config: %w", err)
					}
					fmt.Printf("Created OIDC configuration for provider: %s\n", provider)
				}
				fmt.Printf("JWKS URL: %s\n", jwksURL)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&issuer, "issuer", "", "OIDC issuer URL (required)")
	cmd.Flags().StringVar(&domain, "domain", "", "OAuth2 domain (optional, e.g. a Cognito custom domain)")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (required)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (optional for public clients)")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "OAuth2 redirect URI (required)")
	cmd.Flags().StringVar(&jwksURL, "jwks-url", "", "JWKS URL (default: from discovery, else issuer/.well-known/jwks.json)")
	cmd.Flags().BoolVar(&skipDiscovery, "skip-discovery", false, "Do not query the issuer's discovery document")

	return cmd
}

// discoverJWKS reads jwks_uri from the issuer's discovery document, falling back to the conventional path
func discoverJWKS(ctx context.Context, issuer string, skip bool) string {
	fallback := issuer + "/.well-known/jwks.json"
	if skip {
		return fallback
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	discovery, err := oidc.NewProvider(nil).Discover(ctx, issuer)
	if err != nil || discovery.JWKSURI == "" {
		fmt.Printf("Discovery unavailable (%v); using %s\n", err, fallback)
		return fallback
	}
	return discovery.JWKSURI
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
