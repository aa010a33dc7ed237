package runner

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/logger"
)

// cmdRunner implements Runner on top of a connector.Connection.
type cmdRunner struct {
	conn connector.Connection
}

// NewCmdRunner creates a Runner that executes through conn.
func NewCmdRunner(conn connector.Connection) Runner {
	return &cmdRunner{conn: conn}
}

var secretAssignment = regexp.MustCompile(`\b(` + common.EnvDBPassword + `|` + common.EnvJWTSecret + `)=('[^']*'|"[^"]*"|\S+)`)

// Redact masks secret environment assignments in a command line before it is logged.
func Redact(command string) string {
	return secretAssignment.ReplaceAllString(command, "$1='***'")
}

func (r *cmdRunner) Host() string {
	return r.conn.Target().Host
}

func (r *cmdRunner) Run(ctx context.Context, command string) (string, error) {
	logger.Log.DebugfHost(r.Host(), "run: %s", Redact(command))

	stdout, stderr, code, err := r.conn.Exec(ctx, command)
	if err != nil {
		return string(stdout), err
	}
	if code != 0 {
		return string(stdout), connector.NewCommandError(Redact(command), code, string(stdout), string(stderr))
	}
	return string(stdout), nil
}

func (r *cmdRunner) RunWithStderr(ctx context.Context, command string) (string, string, error) {
	logger.Log.DebugfHost(r.Host(), "run (with stderr): %s", Redact(command))

	stdout, stderr, code, err := r.conn.Exec(ctx, command)
	if err == nil && code != 0 {
		logger.Log.DebugfHost(r.Host(), "%s exited %d", Redact(command), code)
	}
	return string(stdout), string(stderr), err
}

func (r *cmdRunner) RunStreaming(ctx context.Context, command string, onLine LineHandler) ([]string, error) {
	logger.Log.DebugfHost(r.Host(), "stream: %s", Redact(command))

	lines := NewLineAssembler(onLine)
	var stderr bytes.Buffer
	code, err := r.conn.PExec(ctx, command, lines, &stderr)
	lines.Flush()

	if err != nil {
		return lines.Lines(), err
	}
	if code != 0 {
		logger.Log.WarnfHost(r.Host(), "streamed command exited %d: %s", code, strings.TrimSpace(stderr.String()))
	}
	return lines.Lines(), nil
}

func (r *cmdRunner) SudoRun(ctx context.Context, command string) (string, error) {
	return r.Run(ctx, connector.SudoPrefix(command))
}
