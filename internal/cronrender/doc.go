// Package cronrender projects a run plan into crontab text for an external
// scheduler. It performs no merge resolution: each emitted line defers all
// argument handling to `minerva-run unit <name>` at execution time, so the
// schedule stays valid when unit configuration changes under it.
package cronrender
