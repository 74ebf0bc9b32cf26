package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benvon/smart-connections/internal/config"
	"github.com/benvon/smart-connections/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured OIDC providers",
		Long:  "List all configured OIDC providers and mark the one the API server authenticates against",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, cfg *config.Config, db *database.DB) error {
				configs, err := database.NewOIDCConfigRepository(db).GetAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to list OIDC configs: %w", err)
				}

				if len(configs) == 0 {
					fmt.Println("No OIDC providers configured")
					return nil
				}

				fmt.Println("Configured OIDC providers:")
				for _, c := range configs {
					active := ""
					if c.Provider == cfg.OIDCProvider {
						active = " (active)"
					}
					fmt.Printf("  - Provider: %s%s\n", c.Provider, active)
					fmt.Printf("    Issuer: %s\n", c.Issuer)
					fmt.Printf("    Client ID: %s\n", c.ClientID)
					fmt.Printf("    Redirect URI: %s\n", c.RedirectURI)
					if c.JWKSUrl != nil {
						fmt.Printf("    JWKS URL: %s\n", *c.JWKSUrl)
					}
					fmt.Println()
				}
				return nil
			})
		},
	}
}
