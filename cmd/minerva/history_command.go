package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"minerva/internal/runlog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var unitFlag string
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline action runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := ctx.loadPlan()
			if err != nil {
				return err
			}

			path := filepath.Join(stateDirFor(plan), "history.db")
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No run history recorded yet")
				return nil
			}

			store, err := runlog.Open(path)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), unitFlag, limitFlag)
			if err != nil {
				return fmt.Errorf("read run history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No run history recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				detail := entry.Detail
				if len(detail) > 60 {
					detail = detail[:57] + "..."
				}
				rows = append(rows, []string{
					entry.StartedAt.Local().Format("2006-01-02 15:04:05"),
					entry.Unit,
					entry.Mode,
					entry.Action,
					entry.Outcome,
					detail,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRows(out,
				[]string{"Started", "Unit", "Mode", "Action", "Outcome", "Detail"},
				rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&unitFlag, "unit", "", "Only show runs for the named unit")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum rows to show (default 50)")

	return cmd
}
