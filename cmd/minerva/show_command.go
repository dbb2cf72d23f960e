package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"minerva/internal/resolve"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var setFlags []string

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Display a unit's fully resolved configuration and exports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := ctx.loadPlan()
			if err != nil {
				return err
			}

			set, err := parseSetFlags(setFlags)
			if err != nil {
				return err
			}
			if modeFlag != "" {
				set["mode"] = modeFlag
			}

			resolved, err := resolve.Resolve(plan, args[0], resolve.Options{
				Environ: os.Environ(),
				Set:     set,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			unit := plan.Unit(resolved.Name)
			fmt.Fprintf(out, "Unit:     %s\n", resolved.Name)
			fmt.Fprintf(out, "Mode:     %s\n", resolved.Mode)
			fmt.Fprintf(out, "Schedule: %s\n", unit.Schedule)
			fmt.Fprintf(out, "Enabled:  %t\n", unit.Enabled)
			fmt.Fprintf(out, "Actions:  %s\n", strings.Join(resolved.Actions, ", "))
			fmt.Fprintln(out)

			rows := make([][]string, 0, len(resolved.Exports))
			for _, export := range resolved.Exports {
				rows = append(rows, []string{export.Name, redactExport(export.Name, export.Value)})
			}
			fmt.Fprintln(out, renderRows(out, []string{"Variable", "Value"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "Override the resolved run mode")
	cmd.Flags().StringArrayVar(&setFlags, "set", nil, "Override a plan value (mode or <table>.<key>=<value>)")

	return cmd
}

// redactExport hides credential values so show output is safe to paste into
// issues and chat. Token exports keep only a length hint.
func redactExport(name, value string) string {
	if value == "" || !strings.HasPrefix(name, resolve.TokenExportPrefix) {
		return value
	}
	return fmt.Sprintf("<redacted %d chars>", len(value))
}
