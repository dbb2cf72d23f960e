package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minerva/internal/cronrender"
)

func newListUnitsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list-units",
		Short: "Print every unit in the run plan as tab-separated values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := ctx.loadPlan()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "name\tschedule\tenabled\tmode")
			for _, unit := range plan.Units {
				mode := unit.Mode
				if mode == "" {
					mode = plan.Global.Mode
				}
				if mode == "" {
					mode = unit.Name
				}
				fmt.Fprintf(out, "%s\t%s\t%t\t%s\n", unit.Name, unit.Schedule, unit.Enabled, mode)
			}
			return nil
		},
	}
}

func newValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the run plan for structural and schedule errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.loadPlan(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Run plan is valid")
			return nil
		},
	}
}

func newRenderCronCommand(ctx *commandContext) *cobra.Command {
	var systemCron bool

	cmd := &cobra.Command{
		Use:   "render-cron",
		Short: "Render the enabled units as a crontab fragment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := ctx.loadPlan()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cronrender.Render(plan, systemCron))
			return nil
		},
	}

	cmd.Flags().BoolVar(&systemCron, "system-cron", false, "Emit /etc/cron.d format with a user field")

	return cmd
}
