package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Runner abstracts collaborator command execution for testability. Output
// lines from both stdout and stderr are relayed to onOutput in arrival order
// per stream; the runner never interprets them beyond line splitting.
type Runner interface {
	Run(ctx context.Context, command string, args []string, env []string, onOutput func(string)) error
}

// CommandRunner executes collaborators as real subprocesses.
type CommandRunner struct{}

func (CommandRunner) Run(ctx context.Context, command string, args []string, env []string, onOutput func(string)) error {
	cmd := exec.CommandContext(ctx, command, args...) //nolint:gosec
	if env != nil {
		cmd.Env = env
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	var wg sync.WaitGroup
	relay := func(reader io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if onOutput != nil {
				onOutput(scanner.Text())
			}
		}
	}
	wg.Add(2)
	go relay(stdout)
	go relay(stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	return nil
}
