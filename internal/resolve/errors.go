package resolve

import "fmt"

// UnitNotFoundError marks a resolution request for a unit the plan does not
// define. Callers render it into a user-visible message naming both the unit
// and the plan path, with its own exit status.
type UnitNotFoundError struct {
	Unit string
	Plan string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("run unit %q not found in plan %s", e.Unit, e.Plan)
}
