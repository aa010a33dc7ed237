package scripts

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mensylisir/aymcctl/file"
	"github.com/mensylisir/aymcctl/logger"
)

// Script is the file name of a provisioning script.
type Script string

const (
	InstallVPS      Script = "install-vps.sh"
	ContinueInstall Script = "continue-install.sh"
	Uninstall       Script = "uninstall.sh"
	Build           Script = "build.sh"
	TestAPI         Script = "test-api.sh"
)

var descriptions = map[Script]string{
	InstallVPS:      "Full AYMC installer for a VPS",
	ContinueInstall: "Resume an interrupted installation",
	Uninstall:       "Remove AYMC from the VPS",
	Build:           "Build the AYMC binaries",
	TestAPI:         "Smoke test the backend API",
}

// All lists the known scripts in display order.
func All() []Script {
	return []Script{InstallVPS, ContinueInstall, Uninstall, Build, TestAPI}
}

// Parse maps a file name to a known script.
func Parse(name string) (Script, error) {
	s := Script(name)
	if _, ok := descriptions[s]; !ok {
		return "", errors.Errorf("unknown script %q", name)
	}
	return s, nil
}

func (s Script) Description() string {
	return descriptions[s]
}

// ScriptInfo describes one script of the catalog. SizeBytes is nil when the
// file does not exist.
type ScriptInfo struct {
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Exists      bool    `json:"exists" yaml:"exists"`
	SizeBytes   *uint64 `json:"size_bytes" yaml:"size_bytes"`
}

// Catalog reads scripts from a local directory.
type Catalog struct {
	dir string
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

func (c *Catalog) Dir() string {
	return c.dir
}

// Path returns the local path of s.
func (c *Catalog) Path(s Script) string {
	return filepath.Join(c.dir, string(s))
}

// Read returns the content of s.
func (c *Catalog) Read(s Script) ([]byte, error) {
	content, err := os.ReadFile(c.Path(s))
	if err != nil {
		return nil, errors.Wrapf(err, "read script %s", s)
	}
	return content, nil
}

// Exists reports whether s is a regular file in the catalog directory.
func (c *Catalog) Exists(s Script) bool {
	_, ok, err := file.RegularFileSize(c.Path(s))
	return err == nil && ok
}

// Info describes every known script, in All order.
func (c *Catalog) Info() []ScriptInfo {
	infos := make([]ScriptInfo, 0, len(All()))
	for _, s := range All() {
		info := ScriptInfo{Name: string(s), Description: s.Description()}
		size, ok, err := file.RegularFileSize(c.Path(s))
		if err != nil {
			logger.Log.Warnf("stat %s: %v", c.Path(s), err)
		}
		if ok {
			info.Exists = true
			info.SizeBytes = &size
		}
		infos = append(infos, info)
	}
	return infos
}

// InstallScript returns install-vps.sh.
func (c *Catalog) InstallScript() ([]byte, error) {
	return c.Read(InstallVPS)
}

// UninstallScript returns uninstall.sh.
func (c *Catalog) UninstallScript() ([]byte, error) {
	return c.Read(Uninstall)
}
