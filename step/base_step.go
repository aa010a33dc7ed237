package step

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// BaseStep provides common fields and default method implementations for steps.
type BaseStep struct {
	StepName        string
	StepDescription string
}

// NewBaseStep is a helper constructor for initializing common BaseStep fields.
func NewBaseStep(name, description string) BaseStep {
	return BaseStep{
		StepName:        name,
		StepDescription: description,
	}
}

func (bs *BaseStep) Name() string {
	return bs.StepName
}

func (bs *BaseStep) Description() string {
	return bs.StepDescription
}

// Init checks that the step has something to run against.
func (bs *BaseStep) Init(env *Env, log *logrus.Entry) error {
	if env == nil || env.Conn == nil || env.Runner == nil {
		return fmt.Errorf("step %s has no connection to run against", bs.StepName)
	}
	log.Debugf("step [%s] initialized", bs.StepName)
	return nil
}

// Execute is overridden by concrete steps.
func (bs *BaseStep) Execute(_ context.Context, _ *Env, log *logrus.Entry) (string, bool, error) {
	log.Warnf("BaseStep.Execute called directly for step [%s]", bs.StepName)
	return "", false, fmt.Errorf("execute not implemented for step %s", bs.StepName)
}

// Post logs the outcome. Concrete steps override it to clean up.
func (bs *BaseStep) Post(_ *Env, log *logrus.Entry, executeErr error) error {
	if executeErr != nil {
		log.Warnf("step [%s] completed with error: %v", bs.StepName, executeErr)
		return nil
	}
	log.Debugf("step [%s] completed", bs.StepName)
	return nil
}
