// Package main hosts the minerva-run CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into run-plan
// operations: executing a unit's pipeline, listing and validating plan
// contents, rendering cron schedules, and inspecting resolved configuration
// and run history. It centralizes plan-path resolution and structured logging
// setup so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
