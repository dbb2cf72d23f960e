// Package logging assembles structured slog loggers and formatting helpers
// used across the run-plan engine.
//
// It owns the console/JSON handler setup, centralizes level and output
// plumbing, and exposes context-aware helpers so executor code can
// automatically tag log lines with unit names, actions, and run identifiers.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
