package runner

import (
	"context"
)

// LineHandler receives each complete output line of a streamed command.
type LineHandler func(line string)

// Runner executes commands over a connection.
type Runner interface {
	// Run returns the complete stdout. A non-zero exit status is reported as
	// a connector.CommandFailure carrying the captured output.
	Run(ctx context.Context, command string) (stdout string, err error)

	// RunWithStderr returns stdout and stderr without checking the exit status.
	RunWithStderr(ctx context.Context, command string) (stdout string, stderr string, err error)

	// RunStreaming delivers stdout line by line to onLine (which may be nil)
	// and returns every line in remote order. The exit status is not checked.
	RunStreaming(ctx context.Context, command string, onLine LineHandler) ([]string, error)

	// SudoRun is Run with the command wrapped in sudo.
	SudoRun(ctx context.Context, command string) (stdout string, err error)

	// Host is the remote host the runner talks to.
	Host() string
}
