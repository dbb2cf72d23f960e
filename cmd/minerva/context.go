package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"minerva/internal/logging"
	"minerva/internal/runplan"
)

// commandContext carries state shared by every subcommand: the plan-path
// flag value and a lazily constructed logger.
type commandContext struct {
	planFlag string
}

// planPath resolves the run-plan location. Flag beats environment beats the
// conventional location under the data directory.
func (c *commandContext) planPath() string {
	if c.planFlag != "" {
		return c.planFlag
	}
	if env := os.Getenv("MINERVA_RUN_PLAN"); env != "" {
		return env
	}
	return filepath.Join(dataDir(), "run-plan.toml")
}

func (c *commandContext) loadPlan() (*runplan.Plan, error) {
	return runplan.Load(c.planPath())
}

// dataDir mirrors the resolver's default data root so commands that run
// before resolution (history, plan discovery) land on the same paths.
func dataDir() string {
	if env := os.Getenv("MINERVA_DATA_DIR"); env != "" {
		return env
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", "minerva")
	}
	return "/var/lib/minerva"
}

// stateDirFor picks the run-state directory used for the history database.
// Environment overrides win over the plan's global paths table, matching the
// layering applied during unit resolution.
func stateDirFor(plan *runplan.Plan) string {
	if env := os.Getenv("MINERVA_STATE_DIR"); env != "" {
		return env
	}
	if plan != nil {
		if dir := plan.Global.Paths["state_dir"]; dir != "" {
			return dir
		}
		if root := plan.Global.Paths["data_dir"]; root != "" {
			return filepath.Join(root, "state")
		}
	}
	return filepath.Join(dataDir(), "state")
}

// newLogger builds the process logger from environment knobs. Console output
// is the default; MINERVA_LOG_PATH adds a file sink for cron runs whose
// stdout already streams to the container log.
func newLogger() (*slog.Logger, error) {
	opts := logging.Options{
		Level:       os.Getenv("MINERVA_LOG_LEVEL"),
		Format:      os.Getenv("MINERVA_LOG_FORMAT"),
		OutputPaths: []string{"stdout"},
	}
	if path := os.Getenv("MINERVA_LOG_PATH"); path != "" {
		opts.OutputPaths = append(opts.OutputPaths, path)
	}
	return logging.New(opts)
}
