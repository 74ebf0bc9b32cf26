package commands

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/benvon/smart-connections/internal/config"
	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/services/oidc"
)

// NewTestCmd creates the test command
func NewTestCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test OIDC configuration",
		Long:  "Test OIDC provider configuration by validating discovery, JWKS and the login URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, db *database.DB) error {
				if provider == "" {
					provider = cfg.OIDCProvider
				}
				oidcProvider := oidc.NewProvider(database.NewOIDCConfigRepository(db))

				c, err := oidcProvider.GetConfig(ctx, provider)
				if err != nil {
					return err
				}

				fmt.Printf("Testing OIDC configuration for provider: %s\n", provider)
				fmt.Printf("Issuer: %s\n", c.Issuer)

				ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
				defer cancel()

				fmt.Printf("\nTesting discovery endpoint: %s/.well-known/openid-configuration\n", c.Issuer)
				discovery, err := oidcProvider.Discover(ctx, c.Issuer)
				if err != nil {
					return err
				}
				fmt.Println("✓ Discovery endpoint is accessible")
				if discovery.Issuer != "" && discovery.Issuer != c.Issuer {
					fmt.Printf("! Discovery issuer %q differs from configured issuer\n", discovery.Issuer)
				}

				jwksURL := discovery.JWKSURI
				if c.JWKSUrl != nil {
					jwksURL = *c.JWKSUrl
				}
				if jwksURL != "" {
					fmt.Printf("\nTesting JWKS endpoint: %s\n", jwksURL)
					if err := checkReachable(ctx, jwksURL); err != nil {
						return fmt.Errorf("JWKS endpoint: %w", err)
					}
					fmt.Println("✓ JWKS endpoint is accessible")
				}

				loginURL := oidc.NewClient(c, discovery).AuthCodeURL(uuid.NewString())
				fmt.Printf("\nLogin URL: %s\n", loginURL)

				fmt.Println("\n✓ OIDC configuration test passed")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider name to test (default: OIDC_PROVIDER)")

	return cmd
}

func checkReachable(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("returned status: %d", resp.StatusCode)
	}
	return nil
}
