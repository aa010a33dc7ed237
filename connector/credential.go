package connector

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// Credential is the authentication material for one connect attempt.
// It is implemented only by Password, PrivateKeyFile and PrivateKeyInline.
type Credential interface {
	credential()
	// Method is a short name of the strategy, safe to log.
	Method() string
}

// Password authenticates with a password.
type Password struct {
	Secret string
}

// PrivateKeyFile authenticates with a key read from a local file.
type PrivateKeyFile struct {
	Path       string
	Passphrase string
}

// PrivateKeyInline authenticates with key text held in memory. The text is
// written to a private temporary file for the duration of the attempt only.
type PrivateKeyInline struct {
	KeyData    string
	Passphrase string
}

func (Password) credential()         {}
func (PrivateKeyFile) credential()   {}
func (PrivateKeyInline) credential() {}

func (Password) Method() string         { return "password" }
func (PrivateKeyFile) Method() string   { return "private_key_file" }
func (PrivateKeyInline) Method() string { return "private_key_data" }

func (Password) String() string         { return "Password{***}" }
func (c PrivateKeyFile) String() string { return "PrivateKeyFile{" + c.Path + "}" }
func (PrivateKeyInline) String() string { return "PrivateKeyInline{***}" }

// authMethod builds the single ssh.AuthMethod for cred. The returned release
// function must be called once the handshake has finished, on every path.
func authMethod(cred Credential) (ssh.AuthMethod, func(), error) {
	noop := func() {}
	switch c := cred.(type) {
	case Password:
		return ssh.Password(c.Secret), noop, nil
	case *Password:
		if c == nil {
			return nil, noop, newErrorf(AuthenticationFailure, nil, "credential *Password is nil")
		}
		return authMethod(*c)
	case PrivateKeyFile:
		m, err := keyFileAuth(c.Path, c.Passphrase)
		return m, noop, err
	case *PrivateKeyFile:
		if c == nil {
			return nil, noop, newErrorf(AuthenticationFailure, nil, "credential *PrivateKeyFile is nil")
		}
		return authMethod(*c)
	case PrivateKeyInline:
		path, release, err := newTempKeyFile(c.KeyData)
		if err != nil {
			return nil, noop, err
		}
		m, err := keyFileAuth(path, c.Passphrase)
		if err != nil {
			release()
			return nil, noop, err
		}
		return m, release, nil
	case *PrivateKeyInline:
		if c == nil {
			return nil, noop, newErrorf(AuthenticationFailure, nil, "credential *PrivateKeyInline is nil")
		}
		return authMethod(*c)
	case nil:
		return nil, noop, newError(AuthenticationFailure, errors.New("credential is nil"), "build auth method")
	default:
		return nil, noop, newErrorf(AuthenticationFailure, nil, "unsupported credential %T", cred)
	}
}

func keyFileAuth(path, passphrase string) (ssh.AuthMethod, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, newErrorf(AuthenticationFailure, err, "read private key %s", path)
	}

	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(pem)
	}
	if err != nil {
		return nil, newErrorf(AuthenticationFailure, err, "parse private key %s", path)
	}
	return ssh.PublicKeys(signer), nil
}
