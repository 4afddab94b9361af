// Package producer models the external step that refreshes artifacts before
// a run. Artifact generation is not refparity's job; the harness only needs
// a hook to make sure both producers have written their output.
package producer

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Producer ensures artifacts are up to date for the given source root.
type Producer interface {
	Ensure(ctx context.Context, sourceRoot string) error
}

// Noop assumes artifacts are already current.
type Noop struct{}

// Ensure does nothing.
func (Noop) Ensure(context.Context, string) error { return nil }

// Command shells out to an external producer command, passing the source
// root as the final argument.
type Command struct {
	Line string
}

// Ensure runs the configured command and waits for it.
func (c Command) Ensure(ctx context.Context, sourceRoot string) error {
	parts := strings.Fields(c.Line)
	if len(parts) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], sourceRoot)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("producer command %q: %w", c.Line, err)
	}
	return nil
}

// FromConfig returns the Producer for a configured command line; an empty
// line disables the hook.
func FromConfig(commandLine string) Producer {
	if strings.TrimSpace(commandLine) == "" {
		return Noop{}
	}
	return Command{Line: commandLine}
}
