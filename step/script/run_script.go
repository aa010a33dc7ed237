package script

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/runner"
	"github.com/mensylisir/aymcctl/step"
)

// EnvVar is one assignment placed in front of the script invocation.
type EnvVar struct {
	Name  string
	Value string
}

// RunScriptStep executes an uploaded script through the streaming runner.
// The script's exit status is not enforced; Lines holds everything it printed.
type RunScriptStep struct {
	step.BaseStep
	RemotePath string
	Env        []EnvVar
	// QuoteEnv escapes values for POSIX shells. When false values are placed
	// inside single quotes verbatim.
	QuoteEnv bool
	OnLine   runner.LineHandler

	Lines []string
}

func NewRunScriptStep(remotePath string, env []EnvVar, quoteEnv bool, onLine runner.LineHandler) *RunScriptStep {
	return &RunScriptStep{
		BaseStep:   step.NewBaseStep(ExecuteStepName, "Execute "+remotePath),
		RemotePath: remotePath,
		Env:        env,
		QuoteEnv:   quoteEnv,
		OnLine:     onLine,
	}
}

// Command renders the invocation, e.g. DB_PASSWORD='x' APP_PORT='8080' /tmp/install-aymc.sh.
func (s *RunScriptStep) Command() string {
	parts := make([]string, 0, len(s.Env)+1)
	for _, v := range s.Env {
		value := "'" + v.Value + "'"
		if s.QuoteEnv {
			value = connector.EscapeShellArg(v.Value)
		}
		parts = append(parts, v.Name+"="+value)
	}
	parts = append(parts, s.RemotePath)
	return strings.Join(parts, " ")
}

func (s *RunScriptStep) Init(env *step.Env, log *logrus.Entry) error {
	if s.RemotePath == "" {
		return fmt.Errorf("remote path cannot be empty for step %s", s.Name())
	}
	names := make([]string, 0, len(s.Env))
	for _, v := range s.Env {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	log.Debugf("environment: %v", names)
	return s.BaseStep.Init(env, log)
}

func (s *RunScriptStep) Execute(ctx context.Context, env *step.Env, log *logrus.Entry) (string, bool, error) {
	cmd := s.Command()
	log.Infof("running %s", runner.Redact(cmd))
	lines, err := env.Runner.RunStreaming(ctx, cmd, s.OnLine)
	s.Lines = lines
	if err != nil {
		return "", false, errors.Wrapf(err, "run %s", s.RemotePath)
	}
	return fmt.Sprintf("%d lines of output", len(lines)), true, nil
}

var _ step.Step = (*RunScriptStep)(nil)
