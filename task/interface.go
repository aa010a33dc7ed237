package task

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/step"
)

// Task is an ordered sequence of steps run against one host.
type Task interface {
	// Name returns the unique name of the task.
	Name() string

	// Description provides a human-readable summary of what the task does.
	Description() string

	// Steps returns the steps in execution order.
	Steps() []step.Step

	// Execute runs the steps in order and stops at the first failing one.
	// The returned error is a *StepError naming that step.
	Execute(ctx context.Context, env *step.Env, log *logrus.Entry) error
}
