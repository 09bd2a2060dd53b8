package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"video-backend/internal/credits"
)

func newTierCmd(app func() *admin) *cobra.Command {
	var userRef string
	var tierName string
	var grant bool

	cmd := &cobra.Command{
		Use:   "tier",
		Short: "Change a user's subscription tier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := app()
			u, err := a.resolveUser(cmd.Context(), userRef)
			if err != nil {
				return err
			}
			if err := a.users.UpdateTier(cmd.Context(), u.ID, tierName); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "%s is now on %s\n", u.ID, tierName); err != nil {
				return err
			}
			if !grant {
				return nil
			}
			tier, _ := credits.LookupTier(tierName)
			balance, err := a.ledger.Add(cmd.Context(), u.ID, tier.CreditsPerMonth)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "granted %d credits; balance %d\n", tier.CreditsPerMonth, balance)
			return err
		},
	}
	cmd.Flags().StringVar(&userRef, "user", "", "user id or whop user id")
	cmd.Flags().StringVar(&tierName, "tier", "", "starter, pro or max")
	cmd.Flags().BoolVar(&grant, "grant", false, "also grant the tier's monthly credits")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("tier")
	return cmd
}
