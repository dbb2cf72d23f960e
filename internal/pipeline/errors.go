package pipeline

import "fmt"

// UnknownActionError marks a resolved action name outside the fixed registry.
// This is a fatal configuration error, not a skip: the plan was authored
// against a wrong or future action vocabulary, and silently ignoring the
// entry would hide the misconfiguration.
type UnknownActionError struct {
	Unit   string
	Action string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown action %q in unit %q", e.Action, e.Unit)
}
