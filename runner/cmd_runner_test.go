package runner

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mensylisir/aymcctl/connector"
)

// fakeConn replays canned output for every command.
type fakeConn struct {
	chunks   []string
	stderr   string
	code     int
	err      error
	commands []string
}

var _ connector.Connection = (*fakeConn)(nil)

func (f *fakeConn) Exec(ctx context.Context, cmd string) ([]byte, []byte, int, error) {
	f.commands = append(f.commands, cmd)
	return []byte(strings.Join(f.chunks, "")), []byte(f.stderr), f.code, f.err
}

func (f *fakeConn) PExec(ctx context.Context, cmd string, stdout io.Writer, stderr io.Writer) (int, error) {
	f.commands = append(f.commands, cmd)
	for _, c := range f.chunks {
		_, _ = stdout.Write([]byte(c))
	}
	_, _ = stderr.Write([]byte(f.stderr))
	return f.code, f.err
}

func (f *fakeConn) WriteFile(context.Context, io.Reader, string, os.FileMode) error { return nil }
func (f *fakeConn) UploadFile(context.Context, string, string) error               { return nil }
func (f *fakeConn) Fetch(context.Context, string) (io.ReadCloser, error)          { return nil, nil }
func (f *fakeConn) Target() connector.Target {
	return connector.NewTarget("10.0.0.5", 22, "root")
}
func (f *fakeConn) IsConnected() bool { return true }
func (f *fakeConn) Close() error      { return nil }

func TestCmdRunner_Run(t *testing.T) {
	channelErr := &connector.Error{Kind: connector.ChannelFailure, Op: "open session channel"}

	tests := []struct {
		name       string
		conn       *fakeConn
		wantOut    string
		wantKind   connector.Kind
		wantOutput string
	}{
		{
			name:    "exit zero returns stdout",
			conn:    &fakeConn{chunks: []string{"active\n"}},
			wantOut: "active\n",
		},
		{
			name:       "non-zero exit is a command failure with output",
			conn:       &fakeConn{chunks: []string{"inactive\n"}, stderr: "unit not found", code: 3},
			wantOut:    "inactive\n",
			wantKind:   connector.CommandFailure,
			wantOutput: "inactive\n",
		},
		{
			name:     "channel failure propagates",
			conn:     &fakeConn{err: channelErr, code: -1},
			wantKind: connector.ChannelFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewCmdRunner(tt.conn)
			out, err := r.Run(context.Background(), "systemctl is-active aymc-backend")
			assert.Equal(t, tt.wantOut, out)
			if tt.wantKind == connector.KindUnknown {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, connector.KindOf(err))
			var cerr *connector.Error
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.wantOutput, cerr.Output)
		})
	}
}

func TestCmdRunner_RunWithStderr(t *testing.T) {
	conn := &fakeConn{chunks: []string{"out"}, stderr: "warning: x", code: 1}
	stdout, stderr, err := NewCmdRunner(conn).RunWithStderr(context.Background(), "docker ps")
	require.NoError(t, err)
	assert.Equal(t, "out", stdout)
	assert.Equal(t, "warning: x", stderr)
}

func TestCmdRunner_RunStreaming(t *testing.T) {
	t.Run("lines in order with callback", func(t *testing.T) {
		conn := &fakeConn{chunks: []string{"Installing pack", "ages...\nDone\r\n", "no newline"}}
		var seen []string
		lines, err := NewCmdRunner(conn).RunStreaming(context.Background(), "/tmp/install-aymc.sh", func(l string) {
			seen = append(seen, l)
		})
		require.NoError(t, err)
		want := []string{"Installing packages...", "Done", "no newline"}
		assert.Equal(t, want, lines)
		assert.Equal(t, want, seen)
	})

	t.Run("exit status is not enforced", func(t *testing.T) {
		conn := &fakeConn{chunks: []string{"error: disk full\n"}, code: 1}
		lines, err := NewCmdRunner(conn).RunStreaming(context.Background(), "/tmp/install-aymc.sh", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"error: disk full"}, lines)
	})

	t.Run("channel failure keeps lines received so far", func(t *testing.T) {
		conn := &fakeConn{chunks: []string{"first\nsec"}, err: &connector.Error{Kind: connector.ChannelFailure}}
		lines, err := NewCmdRunner(conn).RunStreaming(context.Background(), "x", nil)
		require.Error(t, err)
		assert.Equal(t, []string{"first", "sec"}, lines)
	})
}

func TestCmdRunner_SudoRun(t *testing.T) {
	conn := &fakeConn{}
	_, err := NewCmdRunner(conn).SudoRun(context.Background(), "systemctl restart aymc-agent")
	require.NoError(t, err)
	assert.Equal(t, []string{`sudo -E /bin/bash -c 'systemctl restart aymc-agent'`}, conn.commands)
}

func TestRedact(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			in:   "DB_PASSWORD='pw' JWT_SECRET='jwt' APP_PORT='8080' /tmp/install-aymc.sh",
			want: "DB_PASSWORD='***' JWT_SECRET='***' APP_PORT='8080' /tmp/install-aymc.sh",
		},
		{
			in:   "DB_PASSWORD=plain /tmp/x.sh",
			want: "DB_PASSWORD='***' /tmp/x.sh",
		},
		{
			in:   "cat /etc/aymc/backend.env",
			want: "cat /etc/aymc/backend.env",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Redact(tt.in))
	}
}

func TestCmdRunner_CommandFailureIsRedacted(t *testing.T) {
	conn := &fakeConn{code: 2}
	_, err := NewCmdRunner(conn).Run(context.Background(), "JWT_SECRET='topsecret' ./x")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "topsecret")
}
