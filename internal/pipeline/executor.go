package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	shellwords "github.com/mattn/go-shellwords"

	"minerva/internal/logging"
	"minerva/internal/resolve"
	"minerva/internal/runlog"
	"minerva/internal/services"
)

// Outcome is the terminal state of one action within a run.
type Outcome string

const (
	OutcomeSuccess           Outcome = "success"
	OutcomeSkippedNoInput    Outcome = "skipped_missing_input"
	OutcomeOutputNotProduced Outcome = "output_not_produced"
	OutcomeFailed            Outcome = "failed"
	OutcomeUnknownAction     Outcome = "unknown_action"
)

// ActionResult records how one action in the sequence finished.
type ActionResult struct {
	Action     string
	Outcome    Outcome
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Result summarizes a unit run.
type Result struct {
	RunID   string
	Unit    string
	Mode    string
	Actions []ActionResult
	// Halted reports fail-soft termination: an artifact was missing and the
	// remaining actions were not attempted. This is a normal outcome, not an
	// error.
	Halted     bool
	HaltDetail string
}

// Options configures one unit run.
type Options struct {
	// Passthrough arguments are appended last to the summarize invocation so
	// they win over every configured default.
	Passthrough []string
	// Environ is the base process environment for collaborator invocations;
	// resolved exports are applied on top. Defaults to os.Environ().
	Environ []string
}

// Executor runs resolved units against a fixed action registry.
type Executor struct {
	runner   services.Runner
	logger   *slog.Logger
	store    *runlog.Store
	registry Registry
}

// New constructs an executor. runner defaults to a real subprocess runner,
// logger to a no-op logger; store may be nil to disable history recording.
func New(runner services.Runner, logger *slog.Logger, store *runlog.Store) *Executor {
	if runner == nil {
		runner = services.CommandRunner{}
	}
	return &Executor{
		runner:   runner,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		store:    store,
		registry: DefaultRegistry(),
	}
}

// Run walks the unit's resolved action list in order. A missing artifact
// halts the remainder fail-soft and returns a nil error; an unknown action
// name aborts with UnknownActionError once reached (actions before it have
// already run); a collaborator exiting non-zero aborts with an external-tool
// error.
func (e *Executor) Run(ctx context.Context, unit *resolve.ResolvedUnit, opts Options) (*Result, error) {
	runID := uuid.NewString()
	ctx = services.WithUnit(ctx, unit.Name)
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, e.logger)

	result := &Result{RunID: runID, Unit: unit.Name, Mode: unit.Mode}

	if err := os.MkdirAll(unit.Paths["unit_state_dir"], 0o755); err != nil {
		return result, fmt.Errorf("create unit state directory: %w", err)
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	childEnv := childEnviron(environ, unit.Exports)

	logger.Info("unit run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("mode", unit.Mode),
		logging.Int("actions", len(unit.Actions)),
	)

	for _, name := range unit.Actions {
		actionCtx := services.WithAction(ctx, name)
		actionLogger := logging.WithContext(actionCtx, e.logger)

		desc, known := e.registry[name]
		if !known {
			e.record(ctx, unit, runID, ActionResult{
				Action:     name,
				Outcome:    OutcomeUnknownAction,
				Detail:     "not in the action registry",
				StartedAt:  time.Now().UTC(),
				FinishedAt: time.Now().UTC(),
			}, result)
			actionLogger.Error("unknown action in resolved plan",
				logging.String(logging.FieldEventType, "action_unknown"),
			)
			return result, &UnknownActionError{Unit: unit.Name, Action: name}
		}

		outcome, err := e.runAction(actionCtx, actionLogger, unit, desc, childEnv, opts.Passthrough)
		e.record(ctx, unit, runID, outcome, result)
		if err != nil {
			return result, err
		}
		if outcome.Outcome == OutcomeSkippedNoInput || outcome.Outcome == OutcomeOutputNotProduced {
			result.Halted = true
			result.HaltDetail = outcome.Detail
			break
		}
	}

	logger.Info("unit run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Bool("halted", result.Halted),
	)
	return result, nil
}

func (e *Executor) runAction(ctx context.Context, logger *slog.Logger, unit *resolve.ResolvedUnit, desc Descriptor, env []string, passthrough []string) (ActionResult, error) {
	started := time.Now().UTC()
	finish := func(outcome Outcome, detail string) ActionResult {
		return ActionResult{
			Action:     desc.Name,
			Outcome:    outcome,
			Detail:     detail,
			StartedAt:  started,
			FinishedAt: time.Now().UTC(),
		}
	}

	if desc.RequiredInput != "" {
		input := unit.Paths[desc.RequiredInput]
		if input == "" || !fileExists(input) {
			logger.Info(desc.MissingInputDetail,
				logging.String(logging.FieldEventType, "action_skipped"),
				logging.String(logging.FieldOutcome, string(OutcomeSkippedNoInput)),
				logging.String("artifact", input),
			)
			return finish(OutcomeSkippedNoInput, desc.MissingInputDetail), nil
		}
	}

	if desc.Output != "" {
		output := unit.Paths[desc.Output]
		if output != "" {
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return finish(OutcomeFailed, err.Error()), fmt.Errorf("create artifact directory: %w", err)
			}
			// A stale artifact from a previous run must never masquerade as
			// this run's output.
			if err := os.Remove(output); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return finish(OutcomeFailed, err.Error()), fmt.Errorf("remove stale artifact %s: %w", output, err)
			}
		}
	}

	args, err := e.buildArgs(unit, desc, passthrough)
	if err != nil {
		return finish(OutcomeFailed, err.Error()), err
	}

	logger.Info("action started",
		logging.String(logging.FieldEventType, "action_start"),
		logging.String("command", desc.Command),
	)

	onOutput := func(line string) {
		logger.Info(line, logging.String(logging.FieldEventType, "collaborator_output"))
	}
	if err := e.runner.Run(ctx, desc.Command, args, env, onOutput); err != nil {
		wrapped := services.Wrap(services.ErrExternalTool, "pipeline", desc.Name, "collaborator failed", err)
		logger.Error("action failed",
			logging.String(logging.FieldEventType, "action_failure"),
			logging.Error(err),
		)
		return finish(OutcomeFailed, err.Error()), wrapped
	}

	if desc.Output != "" {
		output := unit.Paths[desc.Output]
		if output == "" || !fileExists(output) {
			logger.Info(desc.MissingOutputDetail,
				logging.String(logging.FieldEventType, "action_no_output"),
				logging.String(logging.FieldOutcome, string(OutcomeOutputNotProduced)),
				logging.String("artifact", output),
			)
			return finish(OutcomeOutputNotProduced, desc.MissingOutputDetail), nil
		}
	}

	logger.Info("action completed",
		logging.String(logging.FieldEventType, "action_complete"),
		logging.String(logging.FieldOutcome, string(OutcomeSuccess)),
	)
	return finish(OutcomeSuccess, ""), nil
}

// buildArgs assembles the collaborator argument list: base positionals, then
// built-in mode arguments, then option-sourced arguments (shared, per-action,
// mode-prefixed), then per-action overrides, then CLI passthrough last so it
// wins over every configured default.
func (e *Executor) buildArgs(unit *resolve.ResolvedUnit, desc Descriptor, passthrough []string) ([]string, error) {
	var args []string
	if desc.BaseArgs != nil {
		args = append(args, desc.BaseArgs(unit)...)
	}
	if desc.ModeArgs != nil {
		args = append(args, desc.ModeArgs(unit.Mode)...)
	}

	for _, key := range []string{"shared_args", desc.OptionKey, unit.Mode + "_" + desc.OptionKey} {
		extra, err := splitOption(unit, key)
		if err != nil {
			return nil, err
		}
		args = append(args, extra...)
	}

	args = append(args, unit.ActionArgs[desc.Name]...)
	if desc.AcceptsPassthrough {
		args = append(args, passthrough...)
	}
	return args, nil
}

func splitOption(unit *resolve.ResolvedUnit, key string) ([]string, error) {
	value := unit.Options[key]
	if value == "" {
		return nil, nil
	}
	parsed, err := shellwords.Parse(value)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "option "+key, "unparseable argument string", err)
	}
	return parsed, nil
}

func (e *Executor) record(ctx context.Context, unit *resolve.ResolvedUnit, runID string, action ActionResult, result *Result) {
	result.Actions = append(result.Actions, action)
	if e.store == nil {
		return
	}
	entry := runlog.Entry{
		RunID:      runID,
		Unit:       unit.Name,
		Mode:       unit.Mode,
		Action:     action.Action,
		Outcome:    string(action.Outcome),
		Detail:     action.Detail,
		StartedAt:  action.StartedAt,
		FinishedAt: action.FinishedAt,
	}
	if err := e.store.Record(ctx, entry); err != nil {
		e.logger.Warn("failed to record action outcome",
			logging.String(logging.FieldUnit, unit.Name),
			logging.String(logging.FieldAction, action.Action),
			logging.Error(err),
		)
	}
}

// childEnviron applies resolved exports on top of the base environment.
// Export order matters for duplicate names: the first non-forced entry wins,
// matching the original apply-if-unset emission semantics; forced entries
// (the selection variables) always overwrite.
func childEnviron(base []string, exports []resolve.Export) []string {
	env := make(map[string]string, len(base)+len(exports))
	for _, entry := range base {
		if name, value, ok := strings.Cut(entry, "="); ok {
			env[name] = value
		}
	}

	assigned := make(map[string]struct{}, len(exports))
	for _, export := range exports {
		if _, done := assigned[export.Name]; done && !export.Force {
			continue
		}
		env[export.Name] = export.Value
		assigned[export.Name] = struct{}{}
	}

	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]string, 0, len(names))
	for _, name := range names {
		result = append(result, name+"="+env[name])
	}
	return result
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
