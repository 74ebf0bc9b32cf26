package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benvon/smart-connections/internal/config"
	"github.com/benvon/smart-connections/internal/database"
	"github.com/benvon/smart-connections/internal/logger"
	"github.com/benvon/smart-connections/internal/notify"
)

// NewRemindersCmd creates the reminders command
func NewRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Manage contact reminders",
	}
	cmd.AddCommand(newRemindersRunCmd())
	return cmd
}

func newRemindersRunCmd() *cobra.Command {
	var userRef string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate contact reminders for a user now",
		Long:  "Run the reminder sweep for one user immediately, outside the worker's schedule. Paused users are included.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userRef == "" {
				return fmt.Errorf("--user is required (ID or email)")
			}
			log := zap.NewNop()
			if verbose {
				l, err := logger.NewDevelopmentLogger(true)
				if err != nil {
					return err
				}
				log = l
			}
			return withDB(func(ctx context.Context, _ *config.Config, db *database.DB) error {
				user, err := resolveUser(ctx, database.NewUserRepository(db), userRef)
				if err != nil {
					return err
				}
				notifications := database.NewNotificationRepository(db)
				generator := notify.NewReminderGenerator(
					database.NewPersonRepository(db),
					database.NewInteractionRepository(db),
					notifications,
					database.NewNotificationPreferencesRepository(db),
					log,
				)
				created, err := generator.Generate(ctx, user.ID, time.Now())
				fmt.Printf("Created %d reminder(s)\n", created)
				if err != nil {
					return fmt.Errorf("reminder generation incomplete: %w", err)
				}
				unread, err := notifications.UnreadCount(ctx, user.ID)
				if err == nil {
					fmt.Printf("Unread notifications: %d\n", unread)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userRef, "user", "", "User ID or email (required)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log each reminder decision")
	return cmd
}
