package oracle

import (
	"context"
	"fmt"
	"os/exec"
)

// Runner executes a command and returns its combined standard output.
// This abstraction allows mocking in tests.
type Runner func(name string, args ...string) (string, error)

// Sgpt shells out to the local sgpt binary. A nil Runner uses the real
// binary and declines when it is not on PATH.
type Sgpt struct {
	Runner Runner
}

func (s *Sgpt) Title(ctx context.Context, excerpt, _ string) (string, error) {
	run := s.Runner
	if run == nil {
		if _, err := exec.LookPath("sgpt"); err != nil {
			return "", fmt.Errorf("sgpt not on PATH: %w", err)
		}
		run = func(name string, args ...string) (string, error) {
			out, err := exec.CommandContext(ctx, name, args...).Output()
			return string(out), err
		}
	}

	out, err := run("sgpt", prompt+"\n\n"+excerpt)
	if err != nil {
		return "", fmt.Errorf("run sgpt: %w", err)
	}
	title := Clean(out)
	if title == "" {
		return "", fmt.Errorf("sgpt: blank title")
	}
	return title, nil
}
