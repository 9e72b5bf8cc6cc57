package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"carteira/internal/domain/account"
	"carteira/internal/shared/money"
)

// ─── account ────────────────────────────────────────────────────────────────

func newAccountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage cash, checking and credit card accounts",
	}
	cmd.AddCommand(newAccountAddCmd(a), newAccountListCmd(a), newAccountDisableCmd(a))
	return cmd
}

func newAccountAddCmd(a *app) *cobra.Command {
	var kind, initial, limit string

	cmd := &cobra.Command{
		Use:     "add NAME",
		Short:   "Create an account",
		Example: "  carteira account add Nubank --kind CHECKING --balance 1200\n  carteira account add Visa --kind CREDIT_CARD --limit 5000",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}

			params := account.CreateParams{
				UserID: a.cfg.UserID,
				Name:   args[0],
				Kind:   account.Kind(kind),
			}
			var err error
			if params.InitialBalance, err = optionalAmount(cmd, "balance", initial); err != nil {
				return err
			}
			if params.CreditLimit, err = optionalAmount(cmd, "limit", limit); err != nil {
				return err
			}
			if params.Kind != account.KindCreditCard && params.InitialBalance == nil {
				zero := decimal.Zero
				params.InitialBalance = &zero
			}

			acc, err := a.accounts.CreateAccount(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %q created: %s\n", acc.Name, acc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(account.KindChecking), "CASH, CHECKING or CREDIT_CARD")
	cmd.Flags().StringVar(&initial, "balance", "", "initial balance (cash and checking)")
	cmd.Flags().StringVar(&limit, "limit", "", "credit limit (credit cards)")
	return cmd
}

func newAccountListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active accounts with their current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}

			accounts, err := a.accounts.ListAccounts(cmd.Context(), a.cfg.UserID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(accounts) == 0 {
				fmt.Fprintln(out, "No accounts yet.")
				fmt.Fprintln(out, "Use 'carteira account add NAME --kind KIND' to create one.")
				return nil
			}

			rows, err := a.projector.Balances(cmd.Context(), accounts)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-36s  %-20s  %-11s  %16s  %16s\n", "ID", "NAME", "KIND", "BALANCE", "AVAILABLE")
			for _, row := range rows {
				available := ""
				if row.AvailableLimit.Valid {
					available = money.FormatBRL(row.AvailableLimit.Decimal)
				}
				fmt.Fprintf(out, "%-36s  %-20s  %-11s  %16s  %16s\n",
					row.Account.ID, row.Account.Name, row.Account.Kind, money.FormatBRL(row.Balance), available)
			}
			return nil
		},
	}
}

func newAccountDisableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disable ID",
		Short: "Hide an account; its history is kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.accounts.DisableAccount(cmd.Context(), a.cfg.UserID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s disabled.\n", args[0])
			return nil
		},
	}
}

// optionalAmount parses a flag value only when the flag was given.
func optionalAmount(cmd *cobra.Command, flag, raw string) (*decimal.Decimal, error) {
	if !cmd.Flags().Changed(flag) {
		return nil, nil
	}
	d, err := money.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &d, nil
}
