package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Loader reads a Profile from a YAML file.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and unmarshals the file and checks the type fields.
// Defaults are applied separately by SetDefaults.
func (l *Loader) Load() (*Profile, error) {
	if l.filePath == "" {
		return nil, errors.New("configuration file path is empty")
	}
	content, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file '%s'", l.filePath)
	}
	if len(content) == 0 {
		return nil, errors.Errorf("configuration file '%s' is empty", l.filePath)
	}

	var p Profile
	if err := yaml.Unmarshal(content, &p); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config YAML from '%s'", l.filePath)
	}

	if p.APIVersion != APIVersion {
		return nil, errors.Errorf("config validation failed: apiVersion must be '%s' in '%s', got '%s'", APIVersion, l.filePath, p.APIVersion)
	}
	if p.Kind != KindProfile {
		return nil, errors.Errorf("config validation failed: kind must be '%s' in '%s', got '%s'", KindProfile, l.filePath, p.Kind)
	}
	if p.Metadata.Name == "" {
		return nil, errors.Errorf("config validation failed: metadata.name is a required field in '%s'", l.filePath)
	}
	return &p, nil
}

// LoadProfile loads path, applies defaults and validates the result.
func LoadProfile(path string) (*Profile, error) {
	p, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	SetDefaults(p)
	if err := p.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid profile '%s'", path)
	}
	return p, nil
}
