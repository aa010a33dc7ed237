package installer

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/logger"
	"github.com/mensylisir/aymcctl/runner"
	"github.com/mensylisir/aymcctl/step"
	"github.com/mensylisir/aymcctl/step/runcmd"
	"github.com/mensylisir/aymcctl/step/script"
	"github.com/mensylisir/aymcctl/task"
)

// Step names reported in a StepError.
const (
	StepUpload  = script.UploadStepName
	StepChmod   = "chmod"
	StepExecute = script.ExecuteStepName
)

// StepError names the step at which an install or uninstall stopped.
type StepError = task.StepError

// ScriptSource supplies the provisioning scripts.
type ScriptSource interface {
	InstallScript() ([]byte, error)
	UninstallScript() ([]byte, error)
}

// Options are the values injected into the install script's environment.
type Options struct {
	DBPassword string
	JWTSecret  string
	// AppPort defaults to 8080.
	AppPort string
	// QuoteEnv escapes the values for the remote shell. Without it values are
	// wrapped in single quotes as given, so a value containing a quote breaks
	// the command line.
	QuoteEnv bool
	// OnLine receives every output line of the script as it arrives.
	OnLine runner.LineHandler
}

// Installer provisions AYMC on the host behind one connection.
type Installer struct {
	conn    connector.Connection
	runner  runner.Runner
	scripts ScriptSource
}

func New(conn connector.Connection, r runner.Runner, scripts ScriptSource) *Installer {
	return &Installer{conn: conn, runner: r, scripts: scripts}
}

// Install uploads the install script, makes it executable and runs it with
// DB_PASSWORD, JWT_SECRET and APP_PORT set. It returns every line the script
// printed; the script's own exit status is not checked.
func (i *Installer) Install(ctx context.Context, opts Options) ([]string, error) {
	content, err := i.scripts.InstallScript()
	if err != nil {
		return nil, errors.Wrap(err, "load install script")
	}
	port := opts.AppPort
	if port == "" {
		port = common.DefaultAppPort
	}
	env := []script.EnvVar{
		{Name: common.EnvDBPassword, Value: opts.DBPassword},
		{Name: common.EnvJWTSecret, Value: opts.JWTSecret},
		{Name: common.EnvAppPort, Value: port},
	}
	return i.run(ctx, "install", content, common.RemoteInstallScript, env, opts.QuoteEnv, opts.OnLine)
}

// Uninstall runs the uninstall script the same way, without environment.
func (i *Installer) Uninstall(ctx context.Context, onLine runner.LineHandler) ([]string, error) {
	content, err := i.scripts.UninstallScript()
	if err != nil {
		return nil, errors.Wrap(err, "load uninstall script")
	}
	return i.run(ctx, "uninstall", content, common.RemoteUninstallScript, nil, false, onLine)
}

func (i *Installer) run(ctx context.Context, name string, content []byte, remotePath string,
	env []script.EnvVar, quoteEnv bool, onLine runner.LineHandler) ([]string, error) {
	execute := script.NewRunScriptStep(remotePath, env, quoteEnv, onLine)

	t := task.NewBaseTask(name, fmt.Sprintf("%s AYMC on %s", name, i.runner.Host()))
	t.AddStep(script.NewUploadScriptStep(content, remotePath))
	t.AddStep(runcmd.NewRunCommandStep(StepChmod, "Make "+remotePath+" executable",
		fmt.Sprintf(common.ChmodExecTpl, remotePath)))
	t.AddStep(execute)

	log := logger.Log.WithOperation(i.runner.Host(), name).WithField(common.ScriptName, remotePath)
	if err := t.Execute(ctx, &step.Env{Conn: i.conn, Runner: i.runner}, log); err != nil {
		return execute.Lines, err
	}
	return execute.Lines, nil
}
