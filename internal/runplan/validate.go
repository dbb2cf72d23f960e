package runplan

import (
	"fmt"
	"regexp"
	"strings"
)

var cronField = regexp.MustCompile(`^(\*|\d+|\d+-\d+|\*/\d+|\d+(,\d+)+)$`)

// Validate checks plan invariants and returns a ValidationError listing every
// violation found, not just the first.
//
// Checked invariants: unit names are non-empty and unique; every enabled unit
// carries a 5-field cron schedule. Disabled units may omit the schedule, but a
// schedule that is present must still parse so a typo does not hide until the
// unit is re-enabled.
func (p *Plan) Validate() error {
	var issues []Issue
	seen := make(map[string]struct{}, len(p.Units))

	for idx, unit := range p.Units {
		name := unit.Name
		if name == "" {
			name = fmt.Sprintf("<unit[%d]>", idx)
			issues = append(issues, Issue{
				Path: p.Path, Unit: name, Key: "name",
				Message: "unit name must not be empty",
			})
		}
		if _, duplicate := seen[name]; duplicate {
			issues = append(issues, Issue{
				Path: p.Path, Unit: name, Key: "name",
				Message: "duplicate unit name",
			})
		}
		seen[name] = struct{}{}

		if unit.Schedule == "" {
			if unit.Enabled {
				issues = append(issues, Issue{
					Path: p.Path, Unit: name, Key: "schedule",
					Message: "enabled unit requires a schedule",
				})
			}
			continue
		}
		if !ValidCronExpression(unit.Schedule) {
			issues = append(issues, Issue{
				Path: p.Path, Unit: name, Key: "schedule",
				Message: "invalid cron expression; expected 5 fields (minute hour day month weekday)",
			})
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Path: p.Path, Issues: issues}
	}
	return nil
}

// ValidCronExpression reports whether expr is a well-formed 5-field cron
// expression using the subset of syntax the scheduler consumes: wildcards,
// plain numbers, ranges, step wildcards, and comma lists.
func ValidCronExpression(expr string) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	for _, field := range fields {
		if !cronField.MatchString(field) {
			return false
		}
	}
	return true
}
