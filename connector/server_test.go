package connector

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

const (
	testUser     = "aymc"
	testPassword = "s3cret"
)

// fakeCommand is the scripted behaviour of one command on the test server.
type fakeCommand struct {
	chunks []string
	stderr string
	exit   uint32
	// block keeps the command running until the client signals or closes.
	block bool
}

// testServer is an in-process SSH server that answers exec requests from a
// command table and serves the sftp subsystem from the local filesystem.
type testServer struct {
	t          *testing.T
	listener   net.Listener
	config     *ssh.ServerConfig
	authorized ssh.PublicKey

	mu       sync.Mutex
	commands map[string]fakeCommand
	executed []string
	signals  []string
}

func newTestServer(t *testing.T, authorized ssh.PublicKey) *testServer {
	t.Helper()

	_, hostPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	hostSigner, err := ssh.NewSignerFromKey(hostPriv)
	require.NoError(t, err)

	s := &testServer{t: t, authorized: authorized, commands: map[string]fakeCommand{}}
	s.config = &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == testUser && string(pass) == testPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %s", c.User())
		},
		PublicKeyCallback: func(c ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if c.User() == testUser && s.authorized != nil && bytes.Equal(key.Marshal(), s.authorized.Marshal()) {
				return nil, nil
			}
			return nil, fmt.Errorf("key rejected for %s", c.User())
		},
	}
	s.config.AddHostKey(hostSigner)

	s.listener, err = net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.listener.Close() })

	go s.serve()
	return s
}

func (s *testServer) target() Target {
	addr := s.listener.Addr().(*net.TCPAddr)
	return NewTarget("127.0.0.1", uint16(addr.Port), testUser)
}

func (s *testServer) handle(cmd string, fc fakeCommand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands[cmd] = fc
}

func (s *testServer) executedCommands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.executed...)
}

func (s *testServer) receivedSignals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.signals...)
}

func (s *testServer) serve() {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(nc)
	}
}

func (s *testServer) handleConn(nc net.Conn) {
	_, chans, reqs, err := ssh.NewServerConn(nc, s.config)
	if err != nil {
		_ = nc.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "only session channels")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			continue
		}
		go s.handleSession(ch, chReqs)
	}
}

func (s *testServer) handleSession(ch ssh.Channel, reqs <-chan *ssh.Request) {
	stopped := make(chan struct{})
	defer close(stopped)

	for req := range reqs {
		switch req.Type {
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			go s.runCommand(ch, payload.Command, stopped)
		case "subsystem":
			var payload struct{ Name string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil || payload.Name != "sftp" {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			server, err := sftp.NewServer(ch)
			if err != nil {
				_ = ch.Close()
				return
			}
			go func() {
				_ = server.Serve()
				_ = server.Close()
			}()
		case "signal":
			var payload struct{ Signal string }
			_ = ssh.Unmarshal(req.Payload, &payload)
			s.mu.Lock()
			s.signals = append(s.signals, payload.Signal)
			s.mu.Unlock()
			_ = ch.Close()
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

func (s *testServer) runCommand(ch ssh.Channel, cmd string, stopped <-chan struct{}) {
	s.mu.Lock()
	s.executed = append(s.executed, cmd)
	fc, ok := s.commands[cmd]
	s.mu.Unlock()
	if !ok {
		fc = fakeCommand{stderr: "sh: command not found: " + cmd + "\n", exit: 127}
	}

	for _, chunk := range fc.chunks {
		if _, err := ch.Write([]byte(chunk)); err != nil {
			return
		}
	}
	if fc.stderr != "" {
		_, _ = ch.Stderr().Write([]byte(fc.stderr))
	}
	if fc.block {
		<-stopped
		_ = ch.Close()
		return
	}
	_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{fc.exit}))
	_ = ch.Close()
}

// newClientKey returns a fresh key pair with the private half PEM encoded,
// optionally protected by passphrase.
func newClientKey(t *testing.T, passphrase string) (ssh.PublicKey, []byte) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "test")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte(passphrase))
	}
	require.NoError(t, err)
	return sshPub, pem.EncodeToMemory(block)
}

// closedPort returns a local port nothing listens on.
func closedPort(t *testing.T) uint16 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return uint16(port)
}
