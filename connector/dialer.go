package connector

import (
	"context"
)

// Dialer establishes connections. Callers that hold a Dialer instead of
// calling Connect directly can substitute the transport in tests.
type Dialer interface {
	Dial(ctx context.Context, target Target, cred Credential) (Connection, error)
}

type sshDialer struct{}

// NewDialer returns the SSH dialer.
func NewDialer() Dialer {
	return &sshDialer{}
}

func (d *sshDialer) Dial(ctx context.Context, target Target, cred Credential) (Connection, error) {
	return Connect(ctx, target, cred)
}

// DialerFunc adapts a function to the Dialer interface.
type DialerFunc func(ctx context.Context, target Target, cred Credential) (Connection, error)

func (f DialerFunc) Dial(ctx context.Context, target Target, cred Credential) (Connection, error) {
	return f(ctx, target, cred)
}

var (
	_ Dialer = (*sshDialer)(nil)
	_ Dialer = DialerFunc(nil)
)
