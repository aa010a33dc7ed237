package connector

import (
	"context"
	"io"
	"os"
)

// Executor runs commands on the remote host. Command strings are sent
// verbatim, callers are responsible for quoting.
type Executor interface {
	// Exec runs cmd and returns its complete output and exit status.
	// A non-zero exit status is not an error at this level.
	Exec(ctx context.Context, cmd string) (stdout []byte, stderr []byte, exitCode int, err error)
	// PExec runs cmd and forwards stdout to the writer in arrival order.
	PExec(ctx context.Context, cmd string, stdout io.Writer, stderr io.Writer) (exitCode int, err error)
}

// FileOperator transfers file content over the session.
type FileOperator interface {
	WriteFile(ctx context.Context, content io.Reader, remotePath string, mode os.FileMode) error
	UploadFile(ctx context.Context, localPath string, remotePath string) error
	Fetch(ctx context.Context, remotePath string) (io.ReadCloser, error)
}

// Connection is an authenticated session to a single host.
type Connection interface {
	Executor
	FileOperator
	Target() Target
	IsConnected() bool
	Close() error
}
