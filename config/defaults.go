package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/connector"
)

const (
	DefaultScriptsDir = "./scripts"
	DefaultLogLevel   = "info"
)

// SetDefaults fills zero values in place.
func SetDefaults(p *Profile) {
	if p.Spec.Host.Port == 0 {
		p.Spec.Host.Port = common.DefaultSSHPort
	}
	if p.Spec.Host.Timeout == 0 {
		p.Spec.Host.Timeout = common.DefaultSSHTimeout
	}
	if p.Spec.ScriptsDir == "" {
		p.Spec.ScriptsDir = DefaultScriptsDir
	}
	if p.Spec.Log.Level == "" {
		p.Spec.Log.Level = DefaultLogLevel
	}
	if p.Spec.Install.AppPort == "" {
		p.Spec.Install.AppPort = common.DefaultAppPort
	}
}

// Validate checks that the profile can be used to connect.
func (p *Profile) Validate() error {
	if p.Spec.Host.Address == "" {
		return errors.New("spec.host.address is required")
	}
	if p.Spec.Host.User == "" {
		return errors.New("spec.host.user is required")
	}
	if _, err := p.LogLevel(); err != nil {
		return err
	}
	_, err := p.Credential()
	return err
}

// Target returns the connection target of the profile.
func (p *Profile) Target() connector.Target {
	t := connector.NewTarget(p.Spec.Host.Address, p.Spec.Host.Port, p.Spec.Host.User)
	if p.Spec.Host.Timeout > 0 {
		t.Timeout = p.Spec.Host.Timeout
	}
	return t
}

// Credential converts the auth section into exactly one credential variant.
func (p *Profile) Credential() (connector.Credential, error) {
	a := p.Spec.Auth
	switch a.Type {
	case AuthPassword:
		if a.Password == "" {
			return nil, errors.New("spec.auth.password is required for password authentication")
		}
		return connector.Password{Secret: a.Password}, nil
	case AuthPrivateKeyFile:
		if a.PrivateKeyPath == "" {
			return nil, errors.New("spec.auth.privateKeyPath is required for private_key_file authentication")
		}
		return connector.PrivateKeyFile{Path: a.PrivateKeyPath, Passphrase: a.Passphrase}, nil
	case AuthPrivateKeyData:
		if a.PrivateKeyData == "" {
			return nil, errors.New("spec.auth.privateKeyData is required for private_key_data authentication")
		}
		return connector.PrivateKeyInline{KeyData: a.PrivateKeyData, Passphrase: a.Passphrase}, nil
	case "":
		return nil, errors.New("spec.auth.type is required")
	default:
		return nil, errors.Errorf("unknown auth type %q, want %s, %s or %s",
			a.Type, AuthPassword, AuthPrivateKeyFile, AuthPrivateKeyData)
	}
}

// LogLevel parses spec.log.level.
func (p *Profile) LogLevel() (logrus.Level, error) {
	level, err := logrus.ParseLevel(p.Spec.Log.Level)
	if err != nil {
		return logrus.InfoLevel, errors.Wrap(err, "spec.log.level")
	}
	return level, nil
}
