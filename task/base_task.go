package task

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/step"
)

// StepError reports the step at which a task stopped.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// FailedStep returns the name of the step that stopped the task, if err
// carries a *StepError.
func FailedStep(err error) (string, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}

// BaseTask runs its steps sequentially. It can be embedded in concrete tasks.
type BaseTask struct {
	name        string
	description string
	steps       []step.Step
}

// NewBaseTask creates a new BaseTask. Steps are added with AddStep.
func NewBaseTask(name, description string) BaseTask {
	return BaseTask{
		name:        name,
		description: description,
		steps:       make([]step.Step, 0),
	}
}

func (bt *BaseTask) Name() string {
	return bt.name
}

func (bt *BaseTask) Description() string {
	return bt.description
}

// Steps returns a copy of the step list.
func (bt *BaseTask) Steps() []step.Step {
	s := make([]step.Step, len(bt.steps))
	copy(s, bt.steps)
	return s
}

func (bt *BaseTask) AddStep(s step.Step) {
	bt.steps = append(bt.steps, s)
}

// Execute initializes and runs every step in order. Post is called for each
// executed step whatever the outcome. The first failure aborts the task.
func (bt *BaseTask) Execute(ctx context.Context, env *step.Env, log *logrus.Entry) error {
	log.Infof("Executing task: %s (%s)", bt.name, bt.description)
	if len(bt.steps) == 0 {
		log.Warnf("Task %s has no steps to execute.", bt.name)
		return nil
	}

	for i, current := range bt.steps {
		stepLog := log.WithFields(logrus.Fields{
			common.StepName: current.Name(),
			"step_index":    fmt.Sprintf("%d/%d", i+1, len(bt.steps)),
		})

		if err := current.Init(env, stepLog); err != nil {
			stepLog.Errorf("Failed to initialize step %s: %v", current.Name(), err)
			return &StepError{Step: current.Name(), Err: err}
		}

		stepLog.Infof("Executing step: %s (%s)", current.Name(), current.Description())
		output, ok, err := current.Execute(ctx, env, stepLog)
		if output != "" {
			stepLog.Debugf("Step output:\n%s", output)
		}
		if err == nil && !ok {
			err = errors.Errorf("step %s reported no success", current.Name())
		}

		if postErr := current.Post(env, stepLog, err); postErr != nil {
			stepLog.Errorf("Post for step %s failed: %v", current.Name(), postErr)
			if err == nil {
				err = errors.Wrap(postErr, "post")
			}
		}

		if err != nil {
			stepLog.Errorf("Step %s failed: %v", current.Name(), err)
			return &StepError{Step: current.Name(), Err: err}
		}
		stepLog.Infof("Step %s completed successfully.", current.Name())
	}

	log.Infof("Task %s completed successfully.", bt.name)
	return nil
}
