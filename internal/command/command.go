// Package command runs one-shot subcommands of the node executable and keeps their output
// for diagnostics.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Error reports a subcommand that could not run or exited with a non-zero status.
// Both output streams are kept verbatim; compiler and genesis diagnostics live there.
type Error struct {
	Subcommand string
	ExitCode   int
	Stdout     []byte
	Stderr     []byte
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("`%s` failed (exit code %d): %v\nstdout: %s\n\nstderr: %s",
		e.Subcommand, e.ExitCode, e.Err, e.Stdout, e.Stderr)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Run executes bin with args and returns its captured output. The first argument names
// the subcommand in errors and logs.
func Run(ctx context.Context, logger zerolog.Logger, bin string, args ...string) ([]byte, []byte, error) {
	subcommand := bin
	if len(args) > 0 {
		subcommand = args[0]
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug().
		Str("binary", bin).
		Str("args", strings.Join(args, " ")).
		Msgf("running `%s`", subcommand)

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), stderr.Bytes(), &Error{
			Subcommand: subcommand,
			ExitCode:   exitCode,
			Stdout:     stdout.Bytes(),
			Stderr:     stderr.Bytes(),
			Err:        err,
		}
	}
	return stdout.Bytes(), stderr.Bytes(), nil
}
