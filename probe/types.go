package probe

// ServiceStatus is a snapshot of the AYMC installation on a host.
// Paths are set only when the corresponding binary is installed.
type ServiceStatus struct {
	BackendInstalled bool    `json:"backend_installed" yaml:"backend_installed"`
	AgentInstalled   bool    `json:"agent_installed" yaml:"agent_installed"`
	BackendRunning   bool    `json:"backend_running" yaml:"backend_running"`
	AgentRunning     bool    `json:"agent_running" yaml:"agent_running"`
	PostgresRunning  bool    `json:"postgres_running" yaml:"postgres_running"`
	BackendPath      *string `json:"backend_path" yaml:"backend_path"`
	AgentPath        *string `json:"agent_path" yaml:"agent_path"`
}

// BackendConfig describes how to reach the installed backend.
type BackendConfig struct {
	APIURL      string `json:"api_url" yaml:"api_url"`
	WSURL       string `json:"ws_url" yaml:"ws_url"`
	Environment string `json:"environment" yaml:"environment"`
	Port        string `json:"port" yaml:"port"`
}

// DiskSpace is the usage of the root filesystem in megabytes.
type DiskSpace struct {
	TotalMB     uint64 `json:"total_mb" yaml:"total_mb"`
	UsedMB      uint64 `json:"used_mb" yaml:"used_mb"`
	AvailableMB uint64 `json:"available_mb" yaml:"available_mb"`
	PercentUsed uint8  `json:"percent_used" yaml:"percent_used"`
}

// HostInfo is the remote /etc/os-release, raw and with the common keys extracted.
type HostInfo struct {
	ID         string `json:"id" yaml:"id"`
	VersionID  string `json:"version_id" yaml:"version_id"`
	PrettyName string `json:"pretty_name" yaml:"pretty_name"`
	Raw        string `json:"raw" yaml:"raw"`
}
