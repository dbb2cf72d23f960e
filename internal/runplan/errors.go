package runplan

import (
	"fmt"
	"strings"
)

// Issue is a single document or validation problem scoped to a plan key.
type Issue struct {
	Path    string
	Unit    string
	Key     string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: unit=%q key=%q: %s", i.Path, i.Unit, i.Key, i.Message)
}

// DocumentError reports a plan file that exists but is structurally invalid.
// It accumulates every problem found; a broken file never silently falls back
// to the default plan.
type DocumentError struct {
	Path   string
	Issues []Issue
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("run plan %s is malformed:\n%s", e.Path, joinIssues(e.Issues))
}

// ValidationError reports one or more plan invariant violations.
type ValidationError struct {
	Path   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("run plan validation failed for %s:\n%s", e.Path, joinIssues(e.Issues))
}

func joinIssues(issues []Issue) string {
	lines := make([]string, 0, len(issues))
	for _, issue := range issues {
		lines = append(lines, " - "+issue.String())
	}
	return strings.Join(lines, "\n")
}
