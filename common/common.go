package common

import (
	"io/fs"
	"time"
)

const (
	AppName    = "aymcctl"
	TmpDirBase = "/tmp/"
)

// Log field names, in display order.
const (
	HostName      = "Host"
	OperationName = "Operation"
	StepName      = "Step"
	ScriptName    = "Script"
)

const (
	// FileMode0755 represents rwxr-xr-x
	FileMode0755 fs.FileMode = 0755
	// FileMode0644 represents rw-r--r--
	FileMode0644 fs.FileMode = 0644
	// FileMode0600 represents rw-------
	FileMode0600 fs.FileMode = 0600
)

const (
	DefaultSSHPort    = 22
	DefaultSSHTimeout = 30 * time.Second
	DefaultAppPort    = "8080"
	DefaultAppEnv     = "production"
	DefaultLogLines   = 100
)

// Fixed locations of the AYMC installation on a remote host.
const (
	BackendDir        = "/opt/aymc/backend"
	BackendBinary     = "/opt/aymc/backend/aymc-backend"
	AgentDir          = "/opt/aymc/agent"
	AgentBinary       = "/opt/aymc/agent/aymc-agent"
	BackendConfigFile = "/etc/aymc/backend.env"

	RemoteInstallScript   = "/tmp/install-aymc.sh"
	RemoteUninstallScript = "/tmp/uninstall-aymc.sh"
)

const (
	BackendService  = "aymc-backend"
	AgentService    = "aymc-agent"
	PostgresService = "postgresql"
)

// Environment variables consumed by the install script and backend.env.
const (
	EnvDBPassword = "DB_PASSWORD"
	EnvJWTSecret  = "JWT_SECRET"
	EnvAppPort    = "APP_PORT"
	EnvAppEnv     = "APP_ENV"
)

const (
	// FileExistsCmdTpl prints "exists" or "not_exists" for the given path.
	FileExistsCmdTpl = "test -e %s && echo 'exists' || echo 'not_exists'"
	CatCmdTpl        = "cat %s"
	ServiceActiveTpl = "systemctl is-active %s"
	ChmodExecTpl     = "chmod +x %s"
	PortCheckCmdTpl  = "netstat -tuln | grep :%d || echo 'AVAILABLE'"
	DiskUsageCmd     = "df -m / | tail -1"
	OSReleaseCmd     = "cat /etc/os-release"
	SudoCheckCmd     = "sudo -n true 2>&1"
	WhichDockerCmd   = "which docker"
	DockerPsCmd      = "docker ps"
	JournalCmdTpl    = "journalctl -u %s -n %d --no-pager"
)

const (
	ExistsMarker    = "exists"
	AvailableMarker = "AVAILABLE"
	ActiveMarker    = "active"
)
