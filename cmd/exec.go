package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mensylisir/aymcctl/runtime"
)

var (
	execWithStderr bool
	execSudo       bool
)

type execResult struct {
	Stdout string `json:"stdout" yaml:"stdout"`
	Stderr string `json:"stderr,omitempty" yaml:"stderr,omitempty"`
}

var execCmd = &cobra.Command{
	Use:   "exec -- <command>",
	Short: "Run a command and print its output",
	Long: `Run a command on the remote host and wait for it to finish.

A non-zero exit status fails the command unless --stderr is given, in which
case stdout and stderr are returned as they are.

Examples:
  aymcctl exec -H 203.0.113.10 -u root -- uptime
  aymcctl exec -c prod.yaml --sudo -- systemctl restart aymc-backend`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := strings.Join(args, " ")
		var res execResult
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			var err error
			switch {
			case execWithStderr:
				res.Stdout, res.Stderr, err = s.Runner.RunWithStderr(ctx, command)
			case execSudo:
				res.Stdout, err = s.Runner.SudoRun(ctx, command)
			default:
				res.Stdout, err = s.Runner.Run(ctx, command)
			}
			return err
		})
		return respond(cmd, res, err)
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream -- <command>",
	Short: "Run a command and print its output line by line",
	Long: `Run a command and echo each output line to stderr as it arrives. The
collected lines are printed in the result. The exit status is not checked.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := strings.Join(args, " ")
		var lines []string
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			var err error
			lines, err = s.Runner.RunStreaming(ctx, command, lineEcho(cmd))
			return err
		})
		return respond(cmd, lines, err)
	},
}

func init() {
	execCmd.Flags().BoolVar(&execWithStderr, "stderr", false, "Return stderr too and ignore the exit status")
	execCmd.Flags().BoolVar(&execSudo, "sudo", false, "Run the command through sudo")
	execCmd.MarkFlagsMutuallyExclusive("stderr", "sudo")
}
