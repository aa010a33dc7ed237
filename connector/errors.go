package connector

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a failure of a remote operation.
type Kind int

const (
	KindUnknown Kind = iota
	// TransportFailure: the TCP connection could not be opened.
	TransportFailure
	// HandshakeFailure: the SSH protocol negotiation failed.
	HandshakeFailure
	// AuthenticationFailure: the server rejected the credential or the key was unusable.
	AuthenticationFailure
	// ChannelFailure: opening a channel, sending a command or reading its output failed.
	ChannelFailure
	// CommandFailure: the remote command exited non-zero. Output is attached.
	CommandFailure
	// ParseFailure: remote output did not have the expected shape.
	ParseFailure
	// IOFailure: local or remote file I/O failed.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case TransportFailure:
		return "TransportFailure"
	case HandshakeFailure:
		return "HandshakeFailure"
	case AuthenticationFailure:
		return "AuthenticationFailure"
	case ChannelFailure:
		return "ChannelFailure"
	case CommandFailure:
		return "CommandFailure"
	case ParseFailure:
		return "ParseFailure"
	case IOFailure:
		return "IOFailure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type returned by every remote operation.
type Error struct {
	Kind Kind
	// Op is a short description of what was attempted.
	Op string
	// Output is the captured stdout for CommandFailure.
	Output   string
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Kind == CommandFailure {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error, op string) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func newErrorf(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: fmt.Sprintf(format, args...), Err: err}
}

// NewCommandError reports a non-zero exit status. stdout is kept as Output,
// stderr, when present, becomes the underlying error text.
func NewCommandError(cmd string, exitCode int, stdout, stderr string) *Error {
	e := &Error{Kind: CommandFailure, Op: cmd, ExitCode: exitCode, Output: stdout}
	if msg := strings.TrimSpace(stderr); msg != "" {
		e.Err = errors.New(msg)
	}
	return e
}

// NewParseError reports remote output that could not be interpreted.
func NewParseError(what string, output string) *Error {
	return &Error{Kind: ParseFailure, Op: what, Output: output, Err: errors.Errorf("unexpected output %q", output)}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
