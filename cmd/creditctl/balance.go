package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newBalanceCmd(app func() *admin) *cobra.Command {
	var userRef string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show a user's credit balance and tier",
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := app().resolveUser(cmd.Context(), userRef)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(u)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "user: %s (%s)\ntier: %s\ncredits: %d\npurchased: %d\n",
				u.ID, u.WhopUserID, u.SubscriptionTier, u.CreditsRemaining, u.TotalCreditsPurchased)
			return err
		},
	}
	cmd.Flags().StringVar(&userRef, "user", "", "user id or whop user id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the user record as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
