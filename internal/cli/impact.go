package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"carteira/internal/domain/balance"
	"carteira/internal/shared/money"
)

// ─── impact ─────────────────────────────────────────────────────────────────

func newImpactCmd(a *app) *cobra.Command {
	var exclude string

	cmd := &cobra.Command{
		Use:   "impact ACCOUNT_ID AMOUNT",
		Short: "Check what debiting AMOUNT from an account would do",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			amount, err := money.Parse(args[1])
			if err != nil {
				return err
			}

			excl := balance.Exclusion{PostingID: exclude, PurchaseID: exclude}
			res, err := a.evaluator.Evaluate(cmd.Context(), a.cfg.UserID, args[0], amount, excl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account:   %s (%s)\n", res.AccountID, res.AccountKind)
			fmt.Fprintf(out, "Available: %s\n", money.FormatBRL(res.Available))
			fmt.Fprintf(out, "Amount:    %s\n", money.FormatBRL(res.Candidate))
			fmt.Fprintf(out, "Result:    %s\n", res.Severity)
			if err := res.Err(); err != nil {
				fmt.Fprintf(out, "           %s\n", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&exclude, "exclude", "", "leave a stored transaction out, as when editing it")
	return cmd
}
