package probe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/connector"
)

// ParseEnvFile reads KEY=VALUE lines. Blank lines and lines starting with #
// are skipped. Lines split at the first '='; values are trimmed of
// whitespace and then of surrounding double quotes.
func ParseEnvFile(content string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return values
}

// ParseBackendEnv extracts APP_PORT and APP_ENV from backend.env content,
// falling back to 8080 and production.
func ParseBackendEnv(content string) (port string, env string) {
	port, env = common.DefaultAppPort, common.DefaultAppEnv
	values := ParseEnvFile(content)
	if v, ok := values[common.EnvAppPort]; ok {
		port = v
	}
	if v, ok := values[common.EnvAppEnv]; ok {
		env = v
	}
	return port, env
}

// NewBackendConfig builds the API and websocket URLs for host.
func NewBackendConfig(host, port, env string) BackendConfig {
	return BackendConfig{
		APIURL:      fmt.Sprintf("http://%s:%s/api/v1", host, port),
		WSURL:       fmt.Sprintf("ws://%s:%s/api/v1/ws", host, port),
		Environment: env,
		Port:        port,
	}
}

// ParseDiskSpace parses one `df -m` data row:
// filesystem, 1M-blocks, used, available, use%, mountpoint.
// Unparseable numbers count as 0. The percentage is capped at 100.
func ParseDiskSpace(row string) (DiskSpace, error) {
	fields := strings.Fields(row)
	if len(fields) < 5 {
		return DiskSpace{}, connector.NewParseError("df output", row)
	}

	total := parseUint(fields[1])
	used := parseUint(fields[2])
	available := parseUint(fields[3])

	var percent uint8
	if total > 0 {
		pct := uint64(float64(used) / float64(total) * 100)
		if pct > 100 {
			pct = 100
		}
		percent = uint8(pct)
	}
	return DiskSpace{
		TotalMB:     total,
		UsedMB:      used,
		AvailableMB: available,
		PercentUsed: percent,
	}, nil
}

func parseUint(s string) uint64 {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseOSRelease extracts ID, VERSION_ID and PRETTY_NAME from os-release content.
func ParseOSRelease(content string) HostInfo {
	values := ParseEnvFile(content)
	return HostInfo{
		ID:         values["ID"],
		VersionID:  values["VERSION_ID"],
		PrettyName: values["PRETTY_NAME"],
		Raw:        content,
	}
}

// SplitLines splits command output into lines, dropping one trailing newline.
func SplitLines(output string) []string {
	output = strings.TrimSuffix(output, "\n")
	if output == "" {
		return []string{}
	}
	lines := strings.Split(output, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
