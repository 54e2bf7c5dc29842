package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rgehrsitz/aishcalc/internal/output"
	"github.com/rgehrsitz/aishcalc/internal/tracker"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write all data to an export file (\"-\" for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			data, err := s.svc.Export()
			if err != nil {
				return err
			}

			path := tracker.ExportFileName(time.Now())
			if len(args) == 1 {
				path = args[0]
			}
			if path == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("failed to write export file %s: %w", path, err)
			}
			return render(cmd, output.NoticeReport("Data exported to %s.", path))
		}),
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all data with the contents of an export file",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file %s: %w", args[0], err)
			}
			summary, err := s.svc.Import(cmd.Context(), data)
			if err != nil {
				return err
			}

			format := "Imported %d paydays and %d payments."
			if summary.Legacy {
				format = "Imported %d paydays and %d payments from a legacy export."
			}
			return render(cmd, output.NoticeReport(format, summary.Paydays, summary.Payments))
		}),
	}
}

var errNotConfirmed = errors.New("refusing to delete all data without --yes")

func clearAllCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear-all",
		Short: "Delete all paydays, payments, saved inputs and the adjustment factor",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errNotConfirmed
			}
			return nil
		},
		RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
			if err := s.svc.ClearAll(cmd.Context()); err != nil {
				return err
			}
			return render(cmd, output.NoticeReport("All data cleared."))
		}),
	}
	cmd.Flags().Bool("yes", false, "Confirm deleting everything")
	return cmd
}
