package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"carteira/internal/domain/impact"
	"carteira/internal/domain/ledger"
	"carteira/internal/domain/transaction"
	"carteira/internal/shared/money"
)

// ─── tx ─────────────────────────────────────────────────────────────────────

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record, inspect and remove transactions",
	}
	cmd.AddCommand(newTxAddCmd(a), newTxShowCmd(a), newTxRemoveCmd(a))
	return cmd
}

func newTxAddCmd(a *app) *cobra.Command {
	var (
		req     transaction.Request
		kind    string
		method  string
		amounts []string
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income, expense, transfer or card purchase",
		Example: `  carteira tx add --kind INCOME --amount 3000 --to CHK_ID
  carteira tx add --kind EXPENSE --amount 80 --from CHK_ID --method CHECKING
  carteira tx add --kind EXPENSE --amount 100 --from CARD_ID --method CREDIT_CARD --installments 3 --first-month 2024-11`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}

			req.Kind = ledger.PostingKind(strings.ToUpper(kind))
			req.PaymentMethod = ledger.PaymentMethod(strings.ToUpper(method))
			req.InstallmentAmounts = amounts
			if req.Date == "" {
				req.Date = time.Now().Format(time.DateOnly)
			}

			op, err := transaction.Classify(a.cfg.UserID, req)
			if err != nil {
				return err
			}

			out, err := a.tx.Commit(cmd.Context(), a.cfg.UserID, op, yes)
			if errors.Is(err, impact.ErrNegativeBalanceWarning) {
				return fmt.Errorf("%w\nre-run with --yes to record it anyway", err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s\n", out.ID)
			if out.Impact != nil {
				remaining := out.Impact.Available.Sub(out.Impact.Candidate)
				fmt.Fprintf(cmd.OutOrStdout(), "Available on %s: %s\n", out.Impact.AccountID, money.FormatBRL(remaining))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&kind, "kind", "", "INCOME, EXPENSE or TRANSFER")
	f.StringVar(&req.Amount, "amount", "", "amount, e.g. 123.45")
	f.StringVar(&req.Date, "date", "", "date as YYYY-MM-DD (default today)")
	f.StringVar(&req.OriginAccountID, "from", "", "origin account (expenses, transfers)")
	f.StringVar(&req.DestinationAccountID, "to", "", "destination account (income, transfers)")
	f.StringVar(&method, "method", "", "CASH, CHECKING or CREDIT_CARD (expenses)")
	f.IntVar(&req.InstallmentCount, "installments", 1, "number of installments (card purchases)")
	f.StringVar(&req.FirstInstallmentMonth, "first-month", "", "first installment month as YYYY-MM (card purchases)")
	f.StringSliceVar(&amounts, "amounts", nil, "explicit installment amounts, comma separated")
	f.StringVar(&req.CategoryID, "category", "", "category id")
	f.StringVar(&req.SubcategoryID, "subcategory", "", "subcategory id")
	f.StringVar(&req.Description, "description", "", "free text")
	f.BoolVarP(&yes, "yes", "y", false, "confirm a checking overdraft")
	return cmd
}

func newTxShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a transaction, with installments for card purchases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			rec, err := a.tx.Get(cmd.Context(), a.cfg.UserID, args[0])
			if err != nil {
				return err
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}
}

func newTxRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Delete a transaction; card purchases lose all their installments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if err := a.tx.Delete(cmd.Context(), a.cfg.UserID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction %s removed.\n", args[0])
			return nil
		},
	}
}

func printRecord(out io.Writer, rec *transaction.Record) {
	if p := rec.Posting; p != nil {
		fmt.Fprintf(out, "%s  %s  %s  %s\n", p.ID, p.Kind, p.Date.Format(time.DateOnly), money.FormatBRL(p.Amount))
		if p.OriginAccountID != nil {
			fmt.Fprintf(out, "  from: %s\n", *p.OriginAccountID)
		}
		if p.DestinationAccountID != nil {
			fmt.Fprintf(out, "  to:   %s\n", *p.DestinationAccountID)
		}
		if p.Description != nil {
			fmt.Fprintf(out, "  %s\n", *p.Description)
		}
		return
	}

	p := rec.Purchase
	fmt.Fprintf(out, "%s  CARD_PURCHASE  %s  %s in %dx\n",
		p.ID, p.PurchaseDate.Format(time.DateOnly), money.FormatBRL(p.TotalAmount), p.InstallmentCount)
	fmt.Fprintf(out, "  card: %s\n", p.AccountID)
	if p.Description != nil {
		fmt.Fprintf(out, "  %s\n", *p.Description)
	}
	printSchedule(out, p.Entries())
}
