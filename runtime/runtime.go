package runtime

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/logger"
	"github.com/mensylisir/aymcctl/probe"
	"github.com/mensylisir/aymcctl/runner"
)

// ErrNotConnected is returned when an operation needs a session and none is held.
var ErrNotConnected = errors.New("no active SSH connection")

type baseRuntime struct {
	dialer connector.Dialer
	// sem guards session; holding it is exclusive access.
	sem     chan struct{}
	session *Session
}

// NewRuntime creates an empty Runtime that dials through d. A nil d uses the
// SSH dialer.
func NewRuntime(d connector.Dialer) Runtime {
	if d == nil {
		d = connector.NewDialer()
	}
	return &baseRuntime{
		dialer: d,
		sem:    make(chan struct{}, 1),
	}
}

func (r *baseRuntime) acquire(ctx context.Context) error {
	select {
	case r.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *baseRuntime) release() {
	<-r.sem
}

func (r *baseRuntime) Connect(ctx context.Context, target connector.Target, cred connector.Credential) error {
	if err := r.acquire(ctx); err != nil {
		return err
	}
	defer r.release()

	conn, err := r.dialer.Dial(ctx, target, cred)
	if err != nil {
		return err
	}
	if r.session != nil {
		if cerr := r.session.Conn.Close(); cerr != nil {
			logger.Log.WarnfHost(r.session.Runner.Host(), "closing replaced session: %v", cerr)
		}
	}
	run := runner.NewCmdRunner(conn)
	r.session = &Session{Conn: conn, Runner: run, Prober: probe.NewProber(run)}
	logger.Log.InfofHost(target.Host, "connected as %s", target.User)
	return nil
}

func (r *baseRuntime) Disconnect() error {
	r.sem <- struct{}{}
	defer r.release()

	if r.session == nil {
		return ErrNotConnected
	}
	host := r.session.Runner.Host()
	err := r.session.Conn.Close()
	r.session = nil
	logger.Log.InfofHost(host, "disconnected")
	return err
}

func (r *baseRuntime) IsConnected() bool {
	r.sem <- struct{}{}
	defer r.release()
	return r.session != nil && r.session.Conn.IsConnected()
}

func (r *baseRuntime) With(ctx context.Context, fn func(*Session) error) error {
	if err := r.acquire(ctx); err != nil {
		return err
	}
	defer r.release()

	if r.session == nil {
		return ErrNotConnected
	}
	return fn(r.session)
}
