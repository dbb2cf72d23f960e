// Package runlog persists pipeline action outcomes to SQLite so operators
// can inspect what scheduled runs actually did.
//
// Each executed action contributes one row keyed by the run identifier. The
// store is strictly observational: the executor writes to it best-effort and
// a storage failure never fails a unit run.
package runlog
