package runtime

import (
	"context"

	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/installer"
	"github.com/mensylisir/aymcctl/probe"
	"github.com/mensylisir/aymcctl/runner"
)

// Session is the held connection together with the helpers bound to it.
// It is only valid inside the function passed to Runtime.With.
type Session struct {
	Conn   connector.Connection
	Runner runner.Runner
	Prober *probe.Prober
}

// Installer returns an installer for the session's host.
func (s *Session) Installer(scripts installer.ScriptSource) *installer.Installer {
	return installer.New(s.Conn, s.Runner, scripts)
}

// Runtime holds at most one session and hands out exclusive access to it.
type Runtime interface {
	// Connect dials target and, on success, replaces the held session,
	// closing the previous one. On failure the held session is unchanged.
	Connect(ctx context.Context, target connector.Target, cred connector.Credential) error

	// Disconnect closes and clears the held session. It returns
	// ErrNotConnected when there is none.
	Disconnect() error

	IsConnected() bool

	// With runs fn with exclusive access to the held session. fn must not
	// call back into the Runtime.
	With(ctx context.Context, fn func(*Session) error) error
}
