package main

import (
	"errors"
	"fmt"
	"os"

	"minerva/internal/pipeline"
	"minerva/internal/resolve"
	"minerva/internal/runplan"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "minerva-run: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps typed failures to stable process exit codes so cron
// wrappers and callers can distinguish bad documents from runtime faults.
func exitCodeFor(err error) int {
	var docErr *runplan.DocumentError
	var valErr *runplan.ValidationError
	var notFound *resolve.UnitNotFoundError
	var unknown *pipeline.UnknownActionError
	switch {
	case errors.As(err, &docErr), errors.As(err, &valErr):
		return 2
	case errors.As(err, &notFound):
		return 3
	case errors.As(err, &unknown):
		return 4
	default:
		return 1
	}
}
