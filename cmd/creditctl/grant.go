package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newGrantCmd(app func() *admin) *cobra.Command {
	var userRef string
	var amount int

	cmd := &cobra.Command{
		Use:   "grant",
		Short: "Add purchased credits to a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if amount <= 0 {
				return errors.New("--amount must be positive")
			}
			a := app()
			u, err := a.resolveUser(cmd.Context(), userRef)
			if err != nil {
				return err
			}
			balance, err := a.ledger.Add(cmd.Context(), u.ID, amount)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "granted %d credits to %s; balance %d\n", amount, u.ID, balance)
			return err
		},
	}
	cmd.Flags().StringVar(&userRef, "user", "", "user id or whop user id")
	cmd.Flags().IntVar(&amount, "amount", 0, "credits to add")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
