package cronrender

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"minerva/internal/runplan"
)

const (
	headerPath  = "PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"
	headerShell = "SHELL=/bin/bash"

	runBinary = "/usr/local/bin/minerva-run"
	logSink   = ">> /proc/1/fd/1 2>&1"
)

// Render produces crontab text for every enabled unit in the plan. With
// systemCron set, each line carries the "root" user field that system
// crontabs require; user crontabs omit it.
//
// A plan with zero qualifying units still renders the header plus an explicit
// trailing comment, so an operator reading the installed file can tell "no
// jobs" apart from a rendering failure.
func Render(plan *runplan.Plan, systemCron bool) string {
	lines := []string{
		headerPath,
		headerShell,
		"",
		"# Redirect job output to the container log stream.",
	}

	enabled := 0
	for _, unit := range plan.Units {
		if !unit.Enabled || unit.Name == "" || unit.Schedule == "" {
			continue
		}
		command := shellquote.Join(runBinary, "unit", unit.Name, "--plan", plan.Path) + " " + logSink
		lines = append(lines, "# unit: "+unit.Name)
		if systemCron {
			lines = append(lines, unit.Schedule+" root "+command)
		} else {
			lines = append(lines, unit.Schedule+" "+command)
		}
		enabled++
	}

	if enabled == 0 {
		lines = append(lines, "# No enabled units found in run plan.")
	}

	return strings.Join(lines, "\n")
}
