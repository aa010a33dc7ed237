package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/logger"
	"github.com/mensylisir/aymcctl/runner"
)

// Prober derives remote state from command output. Nothing is cached, every
// call runs its commands again.
type Prober struct {
	runner runner.Runner
}

func NewProber(r runner.Runner) *Prober {
	return &Prober{runner: r}
}

func (p *Prober) log(operation string) *logrus.Entry {
	return logger.Log.WithOperation(p.runner.Host(), operation)
}

// FileExists reports whether path exists on the remote host.
func (p *Prober) FileExists(ctx context.Context, path string) (bool, error) {
	out, err := p.runner.Run(ctx, fmt.Sprintf(common.FileExistsCmdTpl, path))
	if err != nil {
		return false, errors.Wrapf(err, "check existence of %s", path)
	}
	return strings.TrimSpace(out) == common.ExistsMarker, nil
}

// ReadFile returns the remote file content verbatim.
func (p *Prober) ReadFile(ctx context.Context, path string) (string, error) {
	out, err := p.runner.Run(ctx, fmt.Sprintf(common.CatCmdTpl, path))
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return out, nil
}

// IsServiceRunning reports whether systemd considers name active. Any failure,
// including an inactive unit's non-zero exit, yields false.
func (p *Prober) IsServiceRunning(ctx context.Context, name string) bool {
	out, err := p.runner.Run(ctx, fmt.Sprintf(common.ServiceActiveTpl, name))
	if err != nil {
		p.log("service-status").Debugf("%s is not active: %v", name, err)
		return false
	}
	return strings.TrimSpace(out) == common.ActiveMarker
}

// CheckServices evaluates every installed and running check independently.
func (p *Prober) CheckServices(ctx context.Context) ServiceStatus {
	log := p.log("check-services")

	installed := func(path string) bool {
		ok, err := p.FileExists(ctx, path)
		if err != nil {
			log.Warnf("could not check %s, assuming not installed: %v", path, err)
			return false
		}
		return ok
	}

	status := ServiceStatus{
		BackendInstalled: installed(common.BackendBinary),
		AgentInstalled:   installed(common.AgentBinary),
		BackendRunning:   p.IsServiceRunning(ctx, common.BackendService),
		AgentRunning:     p.IsServiceRunning(ctx, common.AgentService),
		PostgresRunning:  p.IsServiceRunning(ctx, common.PostgresService),
	}
	if status.BackendInstalled {
		dir := common.BackendDir
		status.BackendPath = &dir
	}
	if status.AgentInstalled {
		dir := common.AgentDir
		status.AgentPath = &dir
	}
	log.Debugf("services: %+v", status)
	return status
}

// GetBackendConfig reads /etc/aymc/backend.env and derives the backend URLs
// for the connected host.
func (p *Prober) GetBackendConfig(ctx context.Context) (BackendConfig, error) {
	content, err := p.ReadFile(ctx, common.BackendConfigFile)
	if err != nil {
		return BackendConfig{}, err
	}
	port, env := ParseBackendEnv(content)
	return NewBackendConfig(p.runner.Host(), port, env), nil
}

// DiskSpace reports usage of the root filesystem.
func (p *Prober) DiskSpace(ctx context.Context) (DiskSpace, error) {
	out, err := p.runner.Run(ctx, common.DiskUsageCmd)
	if err != nil {
		return DiskSpace{}, errors.Wrap(err, "query disk usage")
	}
	return ParseDiskSpace(out)
}

// PortAvailable reports whether nothing listens on port. If the check itself
// fails the port is reported available.
func (p *Prober) PortAvailable(ctx context.Context, port uint16) bool {
	out, err := p.runner.Run(ctx, fmt.Sprintf(common.PortCheckCmdTpl, port))
	if err != nil {
		p.log("port-check").Debugf("port %d check failed, treating as available: %v", port, err)
		return true
	}
	return strings.Contains(out, common.AvailableMarker)
}

// HostInfo returns the parsed /etc/os-release of the host.
func (p *Prober) HostInfo(ctx context.Context) (HostInfo, error) {
	out, err := p.runner.Run(ctx, common.OSReleaseCmd)
	if err != nil {
		return HostInfo{}, errors.Wrap(err, "read os-release")
	}
	return ParseOSRelease(out), nil
}

// HasSudo reports whether the user can run sudo without a password.
func (p *Prober) HasSudo(ctx context.Context) bool {
	_, err := p.runner.Run(ctx, common.SudoCheckCmd)
	if err != nil {
		p.log("sudo-check").Debugf("passwordless sudo unavailable: %v", err)
		return false
	}
	return true
}

// DockerRunning reports whether docker is installed and its daemon answers.
func (p *Prober) DockerRunning(ctx context.Context) bool {
	log := p.log("docker-check")
	if _, err := p.runner.Run(ctx, common.WhichDockerCmd); err != nil {
		log.Debugf("docker not installed: %v", err)
		return false
	}
	if _, err := p.runner.Run(ctx, common.DockerPsCmd); err != nil {
		log.Debugf("docker daemon not reachable: %v", err)
		return false
	}
	return true
}

// SystemLogs returns the last n journal lines of a systemd unit.
func (p *Prober) SystemLogs(ctx context.Context, service string, n int) ([]string, error) {
	if n <= 0 {
		n = common.DefaultLogLines
	}
	out, err := p.runner.Run(ctx, fmt.Sprintf(common.JournalCmdTpl, connector.EscapeShellArg(service), n))
	if err != nil {
		return nil, errors.Wrapf(err, "read journal of %s", service)
	}
	return SplitLines(out), nil
}
