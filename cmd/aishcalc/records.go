package main

import (
	"github.com/rgehrsitz/aishcalc/internal/calculation"
	"github.com/rgehrsitz/aishcalc/internal/domain"
	"github.com/rgehrsitz/aishcalc/internal/output"
	"github.com/rgehrsitz/aishcalc/internal/tracker"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func paydayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payday",
		Short: "Manage recorded paydays",
	}

	add := &cobra.Command{
		Use:   "add DATE AMOUNT",
		Short: "Record a payday, replacing any payday on the same date",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			date, amount, err := dateAndAmount(args)
			if err != nil {
				return err
			}
			note, _ := cmd.Flags().GetString("note")
			if err := s.svc.AddPayday(cmd.Context(), date, amount, note); err != nil {
				return err
			}
			return render(cmd, output.NoticeReport("Payday %s recorded: %s.", date, output.FormatCurrency(amount)))
		}),
	}
	add.Flags().String("note", "", "Optional note")

	update := &cobra.Command{
		Use:   "update DATE AMOUNT",
		Short: "Change the amount and note of an existing payday",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			date, amount, err := dateAndAmount(args)
			if err != nil {
				return err
			}
			note, _ := cmd.Flags().GetString("note")
			if err := s.svc.UpdatePayday(cmd.Context(), date, amount, note); err != nil {
				return err
			}
			return render(cmd, output.NoticeReport("Payday %s updated: %s.", date, output.FormatCurrency(amount)))
		}),
	}
	update.Flags().String("note", "", "Optional note")

	remove := &cobra.Command{
		Use:   "remove DATE",
		Short: "Delete the payday on DATE",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			date, err := domain.ParseDate(args[0])
			if err != nil {
				return err
			}
			if err := s.svc.RemovePayday(cmd.Context(), date); err != nil {
				return err
			}
			return render(cmd, output.NoticeReport("Payday %s removed.", date))
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List paydays, oldest first",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			return render(cmd, output.PaydaysReport(s.svc.Paydays()))
		}),
	}

	clearAll := &cobra.Command{
		Use:   "clear",
		Short: "Delete every payday",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.svc.ClearPaydays(cmd.Context()); err != nil {
				return err
			}
			return render(cmd, output.NoticeReport("All paydays cleared."))
		}),
	}

	cmd.AddCommand(add, update, remove, list, clearAll)
	return cmd
}

func paymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Manage received AISH payments",
	}

	add := &cobra.Command{
		Use:   "add DATE AMOUNT",
		Short: "Record a received payment and relearn the adjustment factor",
		Args:  cobra.ExactArgs(2),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			date, amount, err := dateAndAmount(args)
			if err != nil {
				return err
			}
			outcome, err := s.svc.RecordPayment(cmd.Context(), date, amount)
			if err != nil {
				return err
			}
			report := output.AdjustmentReport(outcomeSummary(s.svc.Status(), outcome))
			report.Notice = "Payment " + date.String() + " recorded: " + output.FormatCurrency(amount) + "."
			return render(cmd, report)
		}),
	}

	remove := &cobra.Command{
		Use:   "remove DATE",
		Short: "Delete the payment on DATE and relearn the adjustment factor",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			date, err := domain.ParseDate(args[0])
			if err != nil {
				return err
			}
			outcome, err := s.svc.RemovePayment(cmd.Context(), date)
			if err != nil {
				return err
			}
			report := output.AdjustmentReport(outcomeSummary(s.svc.Status(), outcome))
			report.Notice = "Payment " + date.String() + " removed."
			return render(cmd, report)
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List payments with their expected amounts, oldest first",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			return render(cmd, output.PaymentsReport(s.svc.Payments()))
		}),
	}

	clearAll := &cobra.Command{
		Use:   "clear",
		Short: "Delete every payment and reset the adjustment factor",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.svc.ClearPayments(cmd.Context()); err != nil {
				return err
			}
			return render(cmd, output.NoticeReport("All payments cleared; adjustment reset to $0.00."))
		}),
	}

	cmd.AddCommand(add, remove, list, clearAll)
	return cmd
}

func adjustmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adjustment",
		Short: "Inspect or override the adjustment factor",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the factor, its confidence and learning status",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			return render(cmd, output.AdjustmentReport(statusSummary(s.svc.Status())))
		}),
	}

	set := &cobra.Command{
		Use:   "set VALUE",
		Short: "Override the factor until the next payment or recompute",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			value, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			if _, err := s.svc.SetManualFactor(cmd.Context(), value); err != nil {
				return err
			}
			return render(cmd, output.AdjustmentReport(statusSummary(s.svc.Status())))
		}),
	}

	recompute := &cobra.Command{
		Use:   "recompute",
		Short: "Relearn the factor from the recorded payments",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			outcome, err := s.svc.Recompute(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, output.AdjustmentReport(outcomeSummary(s.svc.Status(), outcome)))
		}),
	}

	history := &cobra.Command{
		Use:   "history",
		Short: "List the payments behind the factor, most recent first",
		Args:  cobra.NoArgs,
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			return render(cmd, output.HistoryReport(s.svc.History()))
		}),
	}

	cmd.AddCommand(show, set, recompute, history)
	return cmd
}

func dateAndAmount(args []string) (domain.Date, decimal.Decimal, error) {
	date, err := domain.ParseDate(args[0])
	if err != nil {
		return domain.Date{}, decimal.Zero, err
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return domain.Date{}, decimal.Zero, err
	}
	return date, amount, nil
}

func statusSummary(st tracker.Status) output.AdjustmentSummary {
	return output.AdjustmentSummary{
		Adjustment: st.Adjustment,
		Count:      st.Count,
		Confidence: st.Confidence,
		Message:    st.Message,
	}
}

func outcomeSummary(st tracker.Status, outcome calculation.Outcome) output.AdjustmentSummary {
	summary := statusSummary(st)
	summary.Excluded = outcome.Excluded
	summary.Repaired = outcome.Repaired
	return summary
}
