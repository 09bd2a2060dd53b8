package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"video-backend/internal/credits"
	"video-backend/internal/shared/config"
	"video-backend/internal/shared/storage/db"
	"video-backend/internal/users"
)

// admin is the set of services the commands operate on.
type admin struct {
	users  *users.Service
	ledger *credits.Ledger
	close  func() error
}

type wireFunc func(ctx context.Context, databaseURL string) (*admin, error)

func connectAdmin(ctx context.Context, databaseURL string) (*admin, error) {
	if strings.TrimSpace(databaseURL) == "" {
		databaseURL = config.Load().DatabaseURL
	}
	sqlDB, err := db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return nil, err
	}
	return newAdmin(&users.PGRepo{DB: sqlDB}, sqlDB), nil
}

func newAdmin(repo users.Repo, sqlDB *sql.DB) *admin {
	a := &admin{
		users:  users.NewService(repo),
		ledger: credits.NewLedger(repo),
		close:  func() error { return nil },
	}
	if sqlDB != nil {
		a.close = sqlDB.Close
	}
	return a
}

// resolveUser accepts either the internal uuid or the commerce-host id.
func (a *admin) resolveUser(ctx context.Context, ref string) (users.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return users.User{}, errors.New("--user is required")
	}
	if _, err := uuid.Parse(ref); err == nil {
		u, err := a.users.GetByID(ctx, ref)
		if err == nil || !errors.Is(err, users.ErrNotFound) {
			return u, err
		}
	}
	u, err := a.users.Repo.GetByWhopID(ctx, ref)
	if errors.Is(err, users.ErrNotFound) {
		return users.User{}, fmt.Errorf("user %q not found", ref)
	}
	return u, err
}

func newRootCmd(wire wireFunc) *cobra.Command {
	var databaseURL string
	var app *admin

	rootCmd := &cobra.Command{
		Use:           "creditctl",
		Short:         "Manage user credits and subscription tiers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wire(cmd.Context(), databaseURL)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			app = a
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if app == nil {
				return nil
			}
			return app.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres URL (defaults to DATABASE_URL)")

	current := func() *admin { return app }
	rootCmd.AddCommand(
		newBalanceCmd(current),
		newGrantCmd(current),
		newTierCmd(current),
	)
	return rootCmd
}
