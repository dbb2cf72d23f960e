// Package services defines shared utilities consumed by the pipeline executor
// and the CLI when talking to external collaborator commands.
//
// Key responsibilities:
//   - Context helpers that stamp unit names, action names, and run
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper so failures classify
//     consistently (configuration vs external-tool vs validation).
//   - A Runner abstraction that makes collaborator invocation testable
//     without spawning real processes.
package services
