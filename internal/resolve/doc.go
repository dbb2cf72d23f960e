// Package resolve turns a run-plan document plus a unit name into a fully
// merged ResolvedUnit ready for pipeline execution.
//
// Merge precedence, lowest to highest: built-in defaults, the [global]
// section, the [[unit]] definition, process-environment overrides, and CLI
// overrides. Scalars are last-writer-wins, lists concatenate in global-then-
// unit order, key-value tables merge per key, and per-action argument tables
// merge their args lists per action instead of replacing them.
//
// Resolution is pure: nothing here writes files or mutates the process
// environment. The computed export list (environment-variable name/value
// pairs under the documented naming scheme) is handed to the executor, which
// owns all side effects.
package resolve
