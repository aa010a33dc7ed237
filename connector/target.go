package connector

import (
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/mensylisir/aymcctl/common"
)

// Target identifies the remote endpoint of a session.
type Target struct {
	Host string
	Port uint16
	User string
	// Timeout bounds the TCP dial and the SSH handshake.
	Timeout time.Duration
}

// NewTarget returns a Target with the default timeout.
func NewTarget(host string, port uint16, user string) Target {
	return Target{Host: host, Port: port, User: user, Timeout: common.DefaultSSHTimeout}
}

// Validate fills defaults and rejects incomplete targets.
func (t Target) Validate() (Target, error) {
	if t.Host == "" {
		return t, errors.New("no host specified for SSH connection")
	}
	if t.User == "" {
		return t, errors.New("no user specified for SSH connection")
	}
	if t.Port == 0 {
		t.Port = common.DefaultSSHPort
	}
	if t.Timeout <= 0 {
		t.Timeout = common.DefaultSSHTimeout
	}
	return t, nil
}

// Address returns host:port.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}

func (t Target) String() string {
	return t.User + "@" + t.Address()
}
