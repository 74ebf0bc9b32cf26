package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/benvon/smart-connections/internal/config"
	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/relationship"
)

// NewInsightsCmd prints relationship health, suggestions and insights for one user
func NewInsightsCmd() *cobra.Command {
	var userRef string

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show relationship analytics for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userRef == "" {
				return fmt.Errorf("--user is required (ID or email)")
			}
			return withDB(func(ctx context.Context, _ *config.Config, db *database.DB) error {
				user, err := resolveUser(ctx, database.NewUserRepository(db), userRef)
				if err != nil {
					return err
				}
				people, err := database.NewPersonRepository(db).ListByUser(ctx, user.ID)
				if err != nil {
					return fmt.Errorf("failed to load people: %w", err)
				}
				interactions, err := database.NewInteractionRepository(db).ListByUser(ctx, user.ID, nil)
				if err != nil {
					return fmt.Errorf("failed to load interactions: %w", err)
				}

				now := time.Now()
				annotated := relationship.Annotate(people, interactions, now)
				analytics := relationship.Analyze(people, interactions, now)

				fmt.Printf("Connections for %s (%d people)\n\n", user.DisplayName(), len(people))
				tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(tw, "NAME\tCIRCLE\tHEALTH\tLAST CONTACT")
				for _, p := range annotated {
					last := "never"
					if t, ok := relationship.LastContact(p.ID, interactions); ok {
						last = humanize.RelTime(t, now, "ago", "from now")
					}
					_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", p.Name, p.Closeness, p.Health, last)
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				fmt.Printf("\nSuggestions (%d: %d promotions, %d demotions)\n",
					analytics.TotalSuggestions, analytics.Promotions, analytics.Demotions)
				for _, s := range analytics.Suggestions {
					fmt.Printf("  [%s] %s: %d -> %d  %s\n", s.Confidence, s.PersonName, s.CurrentCloseness, s.SuggestedCloseness, s.Reason)
				}

				fmt.Println("\nMost active")
				for _, c := range analytics.Insights.MostActiveConnections {
					fmt.Printf("  %s (%s interactions)\n", c.PersonName, humanize.Comma(int64(c.InteractionCount)))
				}
				fmt.Println("Neglected")
				for _, c := range analytics.Insights.NeglectedConnections {
					fmt.Printf("  %s (%s)\n", c.PersonName, relationship.FormatDaysSince(c.DaysSinceLastContact))
				}
				fmt.Println("Rising")
				for _, c := range analytics.Insights.RisingConnections {
					fmt.Printf("  %s (+%d this month)\n", c.PersonName, c.Trend)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userRef, "user", "", "User ID or email (required)")
	return cmd
}
