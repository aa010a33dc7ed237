package config

import (
	"time"
)

const (
	APIVersion  = "aymcctl/v1"
	KindProfile = "Profile"
)

// Auth types accepted in AuthSpec.Type.
const (
	AuthPassword       = "password"
	AuthPrivateKeyFile = "private_key_file"
	AuthPrivateKeyData = "private_key_data"
)

// Profile describes one managed host and how to operate on it.
type Profile struct {
	APIVersion string      `yaml:"apiVersion"`
	Kind       string      `yaml:"kind"`
	Metadata   Metadata    `yaml:"metadata"`
	Spec       ProfileSpec `yaml:"spec"`
}

type Metadata struct {
	Name string `yaml:"name"`
}

type ProfileSpec struct {
	Host       HostSpec    `yaml:"host"`
	Auth       AuthSpec    `yaml:"auth"`
	ScriptsDir string      `yaml:"scriptsDir,omitempty"`
	Log        LogSpec     `yaml:"log,omitempty"`
	Install    InstallSpec `yaml:"install,omitempty"`
}

type HostSpec struct {
	Address string        `yaml:"address"`
	Port    uint16        `yaml:"port,omitempty"`
	User    string        `yaml:"user"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// AuthSpec selects one authentication strategy. Only the fields of the
// chosen Type are used.
type AuthSpec struct {
	Type           string `yaml:"type"`
	Password       string `yaml:"password,omitempty"`
	PrivateKeyPath string `yaml:"privateKeyPath,omitempty"`
	PrivateKeyData string `yaml:"privateKeyData,omitempty"`
	Passphrase     string `yaml:"passphrase,omitempty"`
}

type LogSpec struct {
	Dir     string `yaml:"dir,omitempty"`
	Verbose bool   `yaml:"verbose,omitempty"`
	Level   string `yaml:"level,omitempty"`
}

type InstallSpec struct {
	AppPort    string `yaml:"appPort,omitempty"`
	QuoteEnv   bool   `yaml:"quoteEnv,omitempty"`
	DBPassword string `yaml:"dbPassword,omitempty"`
	JWTSecret  string `yaml:"jwtSecret,omitempty"`
}

// NewProfile returns a profile with the type fields and defaults set.
func NewProfile(name string) *Profile {
	p := &Profile{
		APIVersion: APIVersion,
		Kind:       KindProfile,
		Metadata:   Metadata{Name: name},
	}
	SetDefaults(p)
	return p
}
