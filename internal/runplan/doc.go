// Package runplan loads, validates, and models the run-plan document that
// drives scheduled pipeline execution.
//
// A plan is a TOML table-of-tables: a [global] section of shared defaults plus
// an ordered list of [[unit]] definitions, each naming a schedulable job. The
// package supplies the built-in default plan used when no file exists on disk,
// accumulates structural problems into DocumentError instead of stopping at
// the first, and validates plan invariants (unique unit names, cron schedules
// for enabled units) into ValidationError.
//
// Merge resolution of a unit against the global section lives in the resolve
// package; this package only owns parsing and document-level checks.
package runplan
