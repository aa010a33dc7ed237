package runcmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/runner"
	"github.com/mensylisir/aymcctl/step"
)

// RunCommandStep runs one shell command through the buffered runner. A
// non-zero exit fails the step.
type RunCommandStep struct {
	step.BaseStep
	Command string
}

func NewRunCommandStep(name, description, command string) *RunCommandStep {
	return &RunCommandStep{
		BaseStep: step.NewBaseStep(name, description),
		Command:  command,
	}
}

func (s *RunCommandStep) Init(env *step.Env, log *logrus.Entry) error {
	if s.Command == "" {
		return fmt.Errorf("command string cannot be empty for step %s", s.Name())
	}
	return s.BaseStep.Init(env, log)
}

func (s *RunCommandStep) Execute(ctx context.Context, env *step.Env, log *logrus.Entry) (string, bool, error) {
	log.Debugf("running %q on %s", runner.Redact(s.Command), env.Runner.Host())
	out, err := env.Runner.Run(ctx, s.Command)
	if err != nil {
		return out, false, err
	}
	return out, true, nil
}

var _ step.Step = (*RunCommandStep)(nil)
