package cmd

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/probe"
	"github.com/mensylisir/aymcctl/runtime"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which AYMC components are installed and running",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var status probe.ServiceStatus
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			status = s.Prober.CheckServices(ctx)
			return nil
		})
		return respond(cmd, status, err)
	},
}

var backendConfigCmd = &cobra.Command{
	Use:   "backend-config",
	Short: "Show the backend API and websocket URLs from " + common.BackendConfigFile,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var cfg probe.BackendConfig
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			var err error
			cfg, err = s.Prober.GetBackendConfig(ctx)
			return err
		})
		return respond(cmd, cfg, err)
	},
}

var diskCmd = &cobra.Command{
	Use:   "disk",
	Short: "Show usage of the root filesystem",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var disk probe.DiskSpace
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			var err error
			disk, err = s.Prober.DiskSpace(ctx)
			return err
		})
		return respond(cmd, disk, err)
	},
}

var portCmd = &cobra.Command{
	Use:   "port <port>",
	Short: "Report whether nothing listens on a TCP/UDP port",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return errors.Errorf("invalid port %q", args[0])
		}
		var available bool
		err = withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			available = s.Prober.PortAvailable(ctx, uint16(port))
			return nil
		})
		return respond(cmd, available, err)
	},
}

var hostInfoCmd = &cobra.Command{
	Use:   "host-info",
	Short: "Show the remote /etc/os-release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var info probe.HostInfo
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			var err error
			info, err = s.Prober.HostInfo(ctx)
			return err
		})
		return respond(cmd, info, err)
	},
}

var sudoCmd = &cobra.Command{
	Use:   "sudo",
	Short: "Report whether the user has passwordless sudo",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var ok bool
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			ok = s.Prober.HasSudo(ctx)
			return nil
		})
		return respond(cmd, ok, err)
	},
}

var dockerCmd = &cobra.Command{
	Use:   "docker",
	Short: "Report whether docker is installed and its daemon answers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var ok bool
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			ok = s.Prober.DockerRunning(ctx)
			return nil
		})
		return respond(cmd, ok, err)
	},
}

var logLines int

var logsCmd = &cobra.Command{
	Use:   "logs <service>",
	Short: "Show the last journal lines of a systemd unit",
	Long: `Show the last journal lines of a systemd unit.

Examples:
  aymcctl logs aymc-backend -n 50`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var lines []string
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			var err error
			lines, err = s.Prober.SystemLogs(ctx, args[0], logLines)
			return err
		})
		return respond(cmd, lines, err)
	},
}

var existsCmd = &cobra.Command{
	Use:   "exists <path>",
	Short: "Report whether a remote path exists",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ok bool
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			var err error
			ok, err = s.Prober.FileExists(ctx, args[0])
			return err
		})
		return respond(cmd, ok, err)
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Print a remote file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var content string
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			var err error
			content, err = s.Prober.ReadFile(ctx, args[0])
			return err
		})
		return respond(cmd, content, err)
	},
}

func init() {
	logsCmd.Flags().IntVarP(&logLines, "lines", "n", common.DefaultLogLines, "Number of lines")
}
