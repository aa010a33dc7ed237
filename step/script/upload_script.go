package script

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/step"
)

// Step names used by the script steps.
const (
	UploadStepName  = "upload"
	ExecuteStepName = "execute"
)

// UploadScriptStep writes script content to a fixed remote path with mode 0644.
// The executable bit is set by a separate step.
type UploadScriptStep struct {
	step.BaseStep
	Content    []byte
	RemotePath string
}

func NewUploadScriptStep(content []byte, remotePath string) *UploadScriptStep {
	return &UploadScriptStep{
		BaseStep:   step.NewBaseStep(UploadStepName, "Upload script to "+remotePath),
		Content:    content,
		RemotePath: remotePath,
	}
}

func (s *UploadScriptStep) Init(env *step.Env, log *logrus.Entry) error {
	if s.RemotePath == "" {
		return fmt.Errorf("remote path cannot be empty for step %s", s.Name())
	}
	return s.BaseStep.Init(env, log)
}

func (s *UploadScriptStep) Execute(ctx context.Context, env *step.Env, log *logrus.Entry) (string, bool, error) {
	log.Infof("uploading %d bytes to %s", len(s.Content), s.RemotePath)
	if err := env.Conn.WriteFile(ctx, bytes.NewReader(s.Content), s.RemotePath, common.FileMode0644); err != nil {
		return "", false, errors.Wrapf(err, "upload script to %s", s.RemotePath)
	}
	return "", true, nil
}

var _ step.Step = (*UploadScriptStep)(nil)
