package step

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/runner"
)

// Env is what a step can reach on the host it runs against.
type Env struct {
	Conn   connector.Connection
	Runner runner.Runner
}

// Step represents an individual unit of work within a Task.
type Step interface {
	// Name returns the short name of the step.
	Name() string

	// Description returns a human-readable description of what the step does.
	Description() string

	// Init validates the step before anything is sent to the host.
	Init(env *Env, log *logrus.Entry) error

	// Execute performs the primary action of the step.
	// It returns an output summary, a boolean indicating success,
	// and an error if the execution failed.
	Execute(ctx context.Context, env *Env, log *logrus.Entry) (output string, success bool, err error)

	// Post runs after Execute regardless of its outcome and receives its error.
	Post(env *Env, log *logrus.Entry, executeErr error) error
}
