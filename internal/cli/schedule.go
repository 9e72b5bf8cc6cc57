package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"carteira/internal/domain/installment"
	"carteira/internal/shared/money"
)

// ─── schedule ───────────────────────────────────────────────────────────────

func newScheduleCmd() *cobra.Command {
	var overrides []string

	cmd := &cobra.Command{
		Use:   "schedule TOTAL COUNT FIRST_MONTH",
		Short: "Preview how a card purchase splits into installments",
		Long: `Split TOTAL into COUNT monthly installments starting at FIRST_MONTH (YYYY-MM).
The remainder in cents goes to the first installment. Use --set N=AMOUNT to
edit installment N by hand; the purchase total follows the edit.`,
		Example: "  carteira schedule 100.00 3 2024-11\n  carteira schedule 100.00 3 2024-11 --set 1=40.00",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := money.Parse(args[0])
			if err != nil {
				return err
			}
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid COUNT %q", args[1])
			}
			first, err := installment.ParseMonth(args[2])
			if err != nil {
				return err
			}

			schedule, err := installment.NewSchedule(total, count, first)
			if err != nil {
				return err
			}
			for _, raw := range overrides {
				if err := applyOverride(schedule, raw); err != nil {
					return err
				}
			}

			printSchedule(cmd.OutOrStdout(), schedule.Entries())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "override installment N (1-based) as N=AMOUNT")
	return cmd
}

func applyOverride(s *installment.Schedule, raw string) error {
	idx, value, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("invalid --set %q, expected N=AMOUNT", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return fmt.Errorf("invalid installment number in %q", raw)
	}
	amount, err := money.Parse(value)
	if err != nil {
		return err
	}
	_, err = s.SetAmount(n-1, amount)
	return err
}

func printSchedule(out io.Writer, entries []installment.Entry) {
	fmt.Fprintf(out, "%-4s %-8s %12s\n", "#", "MONTH", "AMOUNT")
	for i, e := range entries {
		mark := ""
		if e.Overridden {
			mark = " *"
		}
		fmt.Fprintf(out, "%-4d %-8s %12s%s\n", i+1, e.Month, money.Format(e.Amount), mark)
	}
	fmt.Fprintf(out, "%-13s %12s\n", "TOTAL", money.Format(installment.Sum(entries)))
}
