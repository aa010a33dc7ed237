package cmd

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/file"
	"github.com/mensylisir/aymcctl/runtime"
)

type transferResult struct {
	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Bytes       int64  `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> <remote-path>",
	Short: "Copy a local file to the host (mode 0644)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := transferResult{Source: args[0], Destination: args[1]}
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			return s.Conn.UploadFile(ctx, args[0], args[1])
		})
		return respond(cmd, res, err)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <remote-path> <local-path>",
	Short: "Copy a remote file to the local machine",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := transferResult{Source: args[0], Destination: args[1]}
		err := withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
			r, err := s.Conn.Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			defer r.Close()
			res.Bytes, err = file.WriteFrom(args[1], r, common.FileMode0644)
			return errors.Wrapf(err, "save %s", args[1])
		})
		return respond(cmd, res, err)
	},
}
