package probe

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/runner"
)

type result struct {
	out string
	err error
}

// fakeRunner answers Run from a command table; unknown commands exit 127.
type fakeRunner struct {
	results map[string]result
	calls   []string
}

var _ runner.Runner = (*fakeRunner)(nil)

func newFakeRunner(results map[string]result) *fakeRunner {
	return &fakeRunner{results: results}
}

func (f *fakeRunner) Run(_ context.Context, cmd string) (string, error) {
	f.calls = append(f.calls, cmd)
	r, ok := f.results[cmd]
	if !ok {
		return "", connector.NewCommandError(cmd, 127, "", "command not found")
	}
	return r.out, r.err
}

func (f *fakeRunner) RunWithStderr(ctx context.Context, cmd string) (string, string, error) {
	out, err := f.Run(ctx, cmd)
	return out, "", err
}

func (f *fakeRunner) RunStreaming(ctx context.Context, cmd string, onLine runner.LineHandler) ([]string, error) {
	out, err := f.Run(ctx, cmd)
	return SplitLines(out), err
}

func (f *fakeRunner) SudoRun(ctx context.Context, cmd string) (string, error) {
	return f.Run(ctx, connector.SudoPrefix(cmd))
}

func (f *fakeRunner) Host() string { return "203.0.113.7" }

func exitErr(cmd string, code int, out string) error {
	return connector.NewCommandError(cmd, code, out, "")
}

var channelErr = &connector.Error{Kind: connector.ChannelFailure, Op: "open session channel"}

const (
	backendExists = "test -e /opt/aymc/backend/aymc-backend && echo 'exists' || echo 'not_exists'"
	agentExists   = "test -e /opt/aymc/agent/aymc-agent && echo 'exists' || echo 'not_exists'"
	backendActive = "systemctl is-active aymc-backend"
	agentActive   = "systemctl is-active aymc-agent"
	pgActive      = "systemctl is-active postgresql"
)

func TestProber_FileExists(t *testing.T) {
	tests := []struct {
		name    string
		res     result
		want    bool
		wantErr bool
	}{
		{name: "exists", res: result{out: "exists\n"}, want: true},
		{name: "not exists", res: result{out: "not_exists\n"}, want: false},
		{name: "runner error propagates", res: result{err: channelErr}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProber(newFakeRunner(map[string]result{backendExists: tt.res}))
			got, err := p.FileExists(context.Background(), "/opt/aymc/backend/aymc-backend")
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, connector.ChannelFailure, connector.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProber_ReadFile(t *testing.T) {
	p := NewProber(newFakeRunner(map[string]result{"cat /etc/hostname": {out: "vps\n"}}))
	got, err := p.ReadFile(context.Background(), "/etc/hostname")
	require.NoError(t, err)
	assert.Equal(t, "vps\n", got)

	_, err = p.ReadFile(context.Background(), "/missing")
	require.Error(t, err)
	assert.Equal(t, connector.CommandFailure, connector.KindOf(err))
}

func TestProber_IsServiceRunning(t *testing.T) {
	tests := []struct {
		name string
		res  result
		want bool
	}{
		{name: "active", res: result{out: "active\n"}, want: true},
		{name: "inactive exits non-zero", res: result{out: "inactive\n", err: exitErr(pgActive, 3, "inactive\n")}, want: false},
		{name: "activating", res: result{out: "activating\n"}, want: false},
		{name: "channel failure", res: result{err: channelErr}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProber(newFakeRunner(map[string]result{pgActive: tt.res}))
			assert.Equal(t, tt.want, p.IsServiceRunning(context.Background(), "postgresql"))
		})
	}
}

func TestProber_CheckServices(t *testing.T) {
	t.Run("everything installed and running", func(t *testing.T) {
		r := newFakeRunner(map[string]result{
			backendExists: {out: "exists\n"},
			agentExists:   {out: "exists\n"},
			backendActive: {out: "active\n"},
			agentActive:   {out: "active\n"},
			pgActive:      {out: "active\n"},
		})
		status := NewProber(r).CheckServices(context.Background())

		assert.True(t, status.BackendInstalled)
		assert.True(t, status.AgentInstalled)
		assert.True(t, status.BackendRunning)
		assert.True(t, status.AgentRunning)
		assert.True(t, status.PostgresRunning)
		require.NotNil(t, status.BackendPath)
		require.NotNil(t, status.AgentPath)
		assert.Equal(t, "/opt/aymc/backend", *status.BackendPath)
		assert.Equal(t, "/opt/aymc/agent", *status.AgentPath)
	})

	t.Run("nothing installed", func(t *testing.T) {
		r := newFakeRunner(map[string]result{
			backendExists: {out: "not_exists\n"},
			agentExists:   {out: "not_exists\n"},
			backendActive: {out: "inactive\n", err: exitErr(backendActive, 3, "inactive\n")},
			agentActive:   {out: "inactive\n", err: exitErr(agentActive, 3, "inactive\n")},
			pgActive:      {out: "inactive\n", err: exitErr(pgActive, 3, "inactive\n")},
		})
		status := NewProber(r).CheckServices(context.Background())

		assert.Equal(t, ServiceStatus{}, status)
		assert.Nil(t, status.BackendPath)
		assert.Nil(t, status.AgentPath)
	})

	t.Run("failing checks degrade to false and do not stop the others", func(t *testing.T) {
		r := newFakeRunner(map[string]result{
			backendExists: {err: channelErr},
			agentExists:   {out: "exists\n"},
			backendActive: {err: channelErr},
			agentActive:   {out: "active\n"},
			pgActive:      {out: "active\n"},
		})
		status := NewProber(r).CheckServices(context.Background())

		assert.False(t, status.BackendInstalled)
		assert.Nil(t, status.BackendPath)
		assert.True(t, status.AgentInstalled)
		assert.False(t, status.BackendRunning)
		assert.True(t, status.AgentRunning)
		assert.True(t, status.PostgresRunning)
		assert.Len(t, r.calls, 5)
	})
}

func TestProber_GetBackendConfig(t *testing.T) {
	tests := []struct {
		name    string
		res     result
		want    BackendConfig
		wantErr bool
	}{
		{
			name: "custom port and env",
			res:  result{out: "APP_PORT=9090\n# comment\nAPP_ENV=\"staging\"\n"},
			want: BackendConfig{
				APIURL:      "http://203.0.113.7:9090/api/v1",
				WSURL:       "ws://203.0.113.7:9090/api/v1/ws",
				Environment: "staging",
				Port:        "9090",
			},
		},
		{
			name: "defaults",
			res:  result{out: "DB_HOST=localhost\n"},
			want: BackendConfig{
				APIURL:      "http://203.0.113.7:8080/api/v1",
				WSURL:       "ws://203.0.113.7:8080/api/v1/ws",
				Environment: "production",
				Port:        "8080",
			},
		},
		{
			name:    "unreadable config",
			res:     result{err: exitErr("cat /etc/aymc/backend.env", 1, "")},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProber(newFakeRunner(map[string]result{"cat /etc/aymc/backend.env": tt.res}))
			got, err := p.GetBackendConfig(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProber_DiskSpace(t *testing.T) {
	p := NewProber(newFakeRunner(map[string]result{
		"df -m / | tail -1": {out: "/dev/sda1 10000 4000 6000 40% /\n"},
	}))
	got, err := p.DiskSpace(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DiskSpace{TotalMB: 10000, UsedMB: 4000, AvailableMB: 6000, PercentUsed: 40}, got)

	p = NewProber(newFakeRunner(map[string]result{"df -m / | tail -1": {out: "Filesystem\n"}}))
	_, err = p.DiskSpace(context.Background())
	require.Error(t, err)
	assert.Equal(t, connector.ParseFailure, connector.KindOf(err))
}

func TestProber_PortAvailable(t *testing.T) {
	cmd := "netstat -tuln | grep :8080 || echo 'AVAILABLE'"
	tests := []struct {
		name string
		res  result
		want bool
	}{
		{name: "free", res: result{out: "AVAILABLE\n"}, want: true},
		{name: "listening", res: result{out: "tcp 0 0 0.0.0.0:8080 0.0.0.0:* LISTEN\n"}, want: false},
		{name: "check failed counts as available", res: result{err: channelErr}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProber(newFakeRunner(map[string]result{cmd: tt.res}))
			assert.Equal(t, tt.want, p.PortAvailable(context.Background(), 8080))
		})
	}
}

func TestProber_HostInfo(t *testing.T) {
	osRelease := "PRETTY_NAME=\"Ubuntu 22.04.4 LTS\"\nNAME=\"Ubuntu\"\nVERSION_ID=\"22.04\"\nID=ubuntu\n"
	p := NewProber(newFakeRunner(map[string]result{"cat /etc/os-release": {out: osRelease}}))
	info, err := p.HostInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", info.ID)
	assert.Equal(t, "22.04", info.VersionID)
	assert.Equal(t, "Ubuntu 22.04.4 LTS", info.PrettyName)
	assert.Equal(t, osRelease, info.Raw)
}

func TestProber_HasSudo(t *testing.T) {
	p := NewProber(newFakeRunner(map[string]result{"sudo -n true 2>&1": {}}))
	assert.True(t, p.HasSudo(context.Background()))

	p = NewProber(newFakeRunner(map[string]result{
		"sudo -n true 2>&1": {out: "sudo: a password is required\n", err: exitErr("sudo -n true 2>&1", 1, "sudo: a password is required\n")},
	}))
	assert.False(t, p.HasSudo(context.Background()))
}

func TestProber_DockerRunning(t *testing.T) {
	tests := []struct {
		name      string
		results   map[string]result
		want      bool
		wantCalls int
	}{
		{
			name:      "running",
			results:   map[string]result{"which docker": {out: "/usr/bin/docker\n"}, "docker ps": {out: "CONTAINER ID\n"}},
			want:      true,
			wantCalls: 2,
		},
		{
			name:      "not installed",
			results:   map[string]result{},
			want:      false,
			wantCalls: 1,
		},
		{
			name:      "daemon down",
			results:   map[string]result{"which docker": {out: "/usr/bin/docker\n"}},
			want:      false,
			wantCalls: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newFakeRunner(tt.results)
			assert.Equal(t, tt.want, NewProber(r).DockerRunning(context.Background()))
			assert.Len(t, r.calls, tt.wantCalls)
		})
	}
}

func TestProber_SystemLogs(t *testing.T) {
	cmd := fmt.Sprintf("journalctl -u %s -n %d --no-pager", "'aymc-backend'", 2)
	p := NewProber(newFakeRunner(map[string]result{cmd: {out: "line one\nline two\n"}}))
	lines, err := p.SystemLogs(context.Background(), "aymc-backend", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"line one", "line two"}, lines)

	r := newFakeRunner(map[string]result{})
	_, err = NewProber(r).SystemLogs(context.Background(), "aymc-agent", 0)
	require.Error(t, err)
	assert.Equal(t, []string{"journalctl -u 'aymc-agent' -n 100 --no-pager"}, r.calls)
}
