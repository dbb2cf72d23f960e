// Package pipeline executes a resolved unit's action sequence against the
// fixed registry of built-in actions (fetch, summarize, publish, podcast).
//
// Each registry entry binds an action name to an external collaborator
// command, its base argument list, a required-input artifact, and a managed
// output artifact. The executor walks the resolved action list in order,
// checking artifact preconditions before and after each step: a missing
// artifact halts the remainder of the run fail-soft (downstream actions
// structurally depend on it), while an action name outside the registry is a
// fatal configuration error.
//
// The registry is data, not control flow: adding an action means adding a
// descriptor, not another branch in the run loop.
package pipeline
