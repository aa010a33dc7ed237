package connector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/logger"
)

// chunkSize is the read size used when forwarding command output.
const chunkSize = 1024

var _ Connection = (*connection)(nil)

type connection struct {
	// mu guards the clients, opMu serializes remote operations.
	mu         sync.Mutex
	opMu       sync.Mutex
	sshclient  *ssh.Client
	sftpclient *sftp.Client
	target     Target
}

// Connect opens a TCP connection to target, performs the SSH handshake and
// authenticates with cred. On failure no connection is returned and all
// resources opened by the attempt are released, including the temporary key
// file of a PrivateKeyInline credential.
func Connect(ctx context.Context, target Target, cred Credential) (Connection, error) {
	target, err := target.Validate()
	if err != nil {
		return nil, newError(TransportFailure, err, "validate target")
	}
	log := logger.Log.WithHost(target.Host)

	dialer := net.Dialer{Timeout: target.Timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		return nil, newErrorf(TransportFailure, err, "dial %s", target.Address())
	}

	method, release, err := authMethod(cred)
	if err != nil {
		_ = netConn.Close()
		return nil, err
	}
	defer release()

	cfg := &ssh.ClientConfig{
		User:            target.User,
		Auth:            []ssh.AuthMethod{method},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         target.Timeout,
	}

	stop := context.AfterFunc(ctx, func() { _ = netConn.Close() })
	_ = netConn.SetDeadline(time.Now().Add(target.Timeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, target.Address(), cfg)
	stop()
	if err != nil {
		_ = netConn.Close()
		if ctx.Err() != nil {
			return nil, newErrorf(TransportFailure, ctx.Err(), "connect to %s cancelled", target.Address())
		}
		return nil, classifyHandshakeError(err, target)
	}
	_ = netConn.SetDeadline(time.Time{})

	if len(sshConn.SessionID()) == 0 || sshConn.User() != target.User {
		_ = sshConn.Close()
		return nil, newErrorf(AuthenticationFailure, nil, "session for %s is not authenticated", target)
	}

	log.Debugf("authenticated as %s using %s", target.User, cred.Method())
	return &connection{
		sshclient: ssh.NewClient(sshConn, chans, reqs),
		target:    target,
	}, nil
}

func classifyHandshakeError(err error, target Target) error {
	msg := err.Error()
	if strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "no supported methods remain") {
		return newErrorf(AuthenticationFailure, err, "authenticate %s", target)
	}
	return newErrorf(HandshakeFailure, err, "ssh handshake with %s", target.Address())
}

func (c *connection) Target() Target {
	return c.target
}

func (c *connection) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sshclient != nil
}

// Close releases the session. It is safe to call more than once.
func (c *connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var combined []string
	if c.sftpclient != nil {
		if err := c.sftpclient.Close(); err != nil {
			combined = append(combined, fmt.Sprintf("sftp close error: %v", err))
		}
		c.sftpclient = nil
	}
	if c.sshclient != nil {
		if err := c.sshclient.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			combined = append(combined, fmt.Sprintf("ssh close error: %v", err))
		}
		c.sshclient = nil
	}
	if len(combined) > 0 {
		return errors.New(strings.Join(combined, "; "))
	}
	return nil
}

func (c *connection) client() (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sshclient == nil {
		return nil, newError(ChannelFailure, errors.New("connection is closed"), "open channel")
	}
	return c.sshclient, nil
}

func (c *connection) sftpClient() (*sftp.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sshclient == nil {
		return nil, newError(IOFailure, errors.New("connection is closed"), "open sftp subsystem")
	}
	if c.sftpclient == nil {
		sc, err := sftp.NewClient(c.sshclient)
		if err != nil {
			return nil, newError(IOFailure, err, "open sftp subsystem")
		}
		c.sftpclient = sc
	}
	return c.sftpclient, nil
}

func (c *connection) Exec(ctx context.Context, cmd string) (stdout []byte, stderr []byte, exitCode int, err error) {
	var outBuf, errBuf bytes.Buffer
	exitCode, err = c.PExec(ctx, cmd, &outBuf, &errBuf)
	return outBuf.Bytes(), errBuf.Bytes(), exitCode, err
}

func (c *connection) PExec(ctx context.Context, cmd string, stdout io.Writer, stderr io.Writer) (exitCode int, err error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	client, err := c.client()
	if err != nil {
		return -1, err
	}
	sess, err := client.NewSession()
	if err != nil {
		return -1, newError(ChannelFailure, err, "open session channel")
	}
	defer sess.Close()

	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	sess.Stderr = stderr
	pipe, err := sess.StdoutPipe()
	if err != nil {
		return -1, newError(ChannelFailure, err, "attach stdout")
	}

	if err := sess.Start(cmd); err != nil {
		return -1, newErrorf(ChannelFailure, err, "start command %q", cmd)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = sess.Signal(ssh.SIGTERM)
		_ = sess.Close()
	})

	readErr := forwardChunks(stdout, pipe)
	waitErr := sess.Wait()

	// A command that ran to completion keeps its result even when ctx ended
	// in the meantime.
	if interrupted := !stop(); interrupted && !completed(readErr, waitErr) {
		return -1, newErrorf(ChannelFailure, ctx.Err(), "command %q cancelled", cmd)
	}
	if readErr != nil {
		return -1, newErrorf(ChannelFailure, readErr, "read output of %q", cmd)
	}
	return exitStatus(cmd, waitErr)
}

// forwardChunks copies r to w in chunkSize reads until EOF or an empty read.
// If w fails the rest of r is drained so the remote side can finish.
func forwardChunks(w io.Writer, r io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				_, _ = io.Copy(io.Discard, r)
				return werr
			}
		}
		if err == io.EOF || (n == 0 && err == nil) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// completed reports whether the remote command delivered all its output and
// an exit status that was not caused by a signal.
func completed(readErr, waitErr error) bool {
	if readErr != nil {
		return false
	}
	if waitErr == nil {
		return true
	}
	var exitErr *ssh.ExitError
	return errors.As(waitErr, &exitErr) && exitErr.Signal() == ""
}

func exitStatus(cmd string, waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitStatus(), nil
	}
	return -1, newErrorf(ChannelFailure, waitErr, "wait for %q", cmd)
}

func (c *connection) WriteFile(ctx context.Context, content io.Reader, remotePath string, mode os.FileMode) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	if err := ctx.Err(); err != nil {
		return newErrorf(IOFailure, err, "write %s", remotePath)
	}
	sc, err := c.sftpClient()
	if err != nil {
		return err
	}

	dst, err := sc.Create(remotePath)
	if err != nil {
		return newErrorf(IOFailure, err, "create remote file %s", remotePath)
	}
	defer dst.Close()

	if mode == 0 {
		mode = common.FileMode0644
	}
	if err := dst.Chmod(mode.Perm()); err != nil {
		return newErrorf(IOFailure, err, "chmod remote file %s to %v", remotePath, mode.Perm())
	}
	if _, err := io.Copy(dst, content); err != nil {
		return newErrorf(IOFailure, err, "stream content to %s", remotePath)
	}
	logger.Log.DebugfHost(c.target.Host, "wrote %s (%v)", remotePath, mode.Perm())
	return nil
}

func (c *connection) UploadFile(ctx context.Context, localPath string, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return newErrorf(IOFailure, err, "open local file %s", localPath)
	}
	defer src.Close()
	return c.WriteFile(ctx, src, remotePath, common.FileMode0644)
}

func (c *connection) Fetch(ctx context.Context, remotePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, newErrorf(IOFailure, err, "fetch %s", remotePath)
	}
	sc, err := c.sftpClient()
	if err != nil {
		return nil, err
	}
	f, err := sc.Open(remotePath)
	if err != nil {
		return nil, newErrorf(IOFailure, err, "open remote file %s", remotePath)
	}
	return f, nil
}

// SudoPrefix wraps cmd so it runs under sudo with the caller's environment.
func SudoPrefix(cmd string) string {
	return fmt.Sprintf("sudo -E /bin/bash -c %s", EscapeShellArg(cmd))
}

// EscapeShellArg single-quotes arg for a POSIX shell.
func EscapeShellArg(arg string) string {
	return "'" + strings.ReplaceAll(arg, "'", "'\\''") + "'"
}
