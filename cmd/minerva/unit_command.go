package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"minerva/internal/logging"
	"minerva/internal/pipeline"
	"minerva/internal/resolve"
	"minerva/internal/runlog"
)

func newUnitCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var setFlags []string
	var exclusive bool

	cmd := &cobra.Command{
		Use:   "unit <name> [flags] [-- <extra summarize args>]",
		Short: "Resolve a unit's configuration and run its action pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			passthrough := []string{}
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				passthrough = args[dash:]
				args = args[:dash]
			}
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one unit name, got %d arguments", len(args))
			}
			return runUnit(cmd, ctx, args[0], modeFlag, setFlags, exclusive, passthrough)
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "Override the resolved run mode")
	cmd.Flags().StringArrayVar(&setFlags, "set", nil, "Override a plan value (mode or <table>.<key>=<value>)")
	cmd.Flags().BoolVar(&exclusive, "exclusive", false, "Hold a per-unit file lock for the duration of the run")

	return cmd
}

// newModeAliasCommands provides the historical "hourly" and "daily"
// spellings, equivalent to "unit hourly" and "unit daily".
func newModeAliasCommands(ctx *commandContext) []*cobra.Command {
	commands := make([]*cobra.Command, 0, 2)
	for _, name := range []string{"hourly", "daily"} {
		unit := name
		commands = append(commands, &cobra.Command{
			Use:   unit + " [-- <extra summarize args>]",
			Short: "Run the " + unit + " unit",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				passthrough := []string{}
				if dash := cmd.ArgsLenAtDash(); dash >= 0 {
					passthrough = args[dash:]
					args = args[:dash]
				}
				if len(args) != 0 {
					return fmt.Errorf("unexpected arguments %v; pass extra summarize args after --", args)
				}
				return runUnit(cmd, ctx, unit, "", nil, false, passthrough)
			},
		})
	}
	return commands
}

func runUnit(cmd *cobra.Command, ctx *commandContext, name, mode string, setFlags []string, exclusive bool, passthrough []string) error {
	plan, err := ctx.loadPlan()
	if err != nil {
		return err
	}

	set, err := parseSetFlags(setFlags)
	if err != nil {
		return err
	}
	if mode != "" {
		set["mode"] = mode
	}

	resolved, err := resolve.Resolve(plan, name, resolve.Options{
		Environ: os.Environ(),
		Set:     set,
	})
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	if exclusive {
		release, err := acquireUnitLock(resolved)
		if err != nil {
			return err
		}
		defer release()
	}

	store, err := openRunLog(resolved)
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
	} else {
		defer store.Close()
	}

	executor := pipeline.New(nil, logger, store)
	result, err := executor.Run(cmd.Context(), resolved, pipeline.Options{
		Passthrough: passthrough,
		Environ:     os.Environ(),
	})
	if err != nil {
		return err
	}
	if result.Halted {
		fmt.Fprintln(cmd.OutOrStdout(), result.HaltDetail)
	}
	return nil
}

func parseSetFlags(flags []string) (map[string]string, error) {
	set := make(map[string]string, len(flags))
	for _, flag := range flags {
		key, value, ok := strings.Cut(flag, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: expected <key>=<value>", flag)
		}
		set[key] = value
	}
	return set, nil
}

// acquireUnitLock takes a non-blocking flock scoped to the unit's state
// directory. A held lock means another invocation of the same unit is still
// running; overlapping runs abort rather than queue.
func acquireUnitLock(resolved *resolve.ResolvedUnit) (func(), error) {
	dir := resolved.Paths["unit_state_dir"]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create unit state directory: %w", err)
	}
	lock := flock.New(filepath.Join(dir, "run.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire unit lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("unit %q is already running (lock held at %s)", resolved.Name, lock.Path())
	}
	return func() { _ = lock.Unlock() }, nil
}

func openRunLog(resolved *resolve.ResolvedUnit) (*runlog.Store, error) {
	dir := resolved.Paths["state_dir"]
	if dir == "" {
		return nil, fmt.Errorf("state directory not resolved")
	}
	return runlog.Open(filepath.Join(dir, "history.db"))
}
