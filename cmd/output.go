package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/mensylisir/aymcctl/config"
	"github.com/mensylisir/aymcctl/ending"
)

func logrusLevel(p *config.Profile) logrus.Level {
	if p == nil {
		return logrus.InfoLevel
	}
	level, err := p.LogLevel()
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// render writes v to w in the selected output format.
func render(w io.Writer, format string, v interface{}) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(v), "encode json")
	}
}

// respond prints the envelope for data/err. A failure is returned as
// errReported so the process exits non-zero without printing it twice.
func respond[T any](cmd *cobra.Command, data T, err error) error {
	if rerr := render(cmd.OutOrStdout(), opts.output, ending.From(data, err)); rerr != nil {
		return rerr
	}
	if err != nil {
		return errReported
	}
	return nil
}

// lineEcho prints streamed lines to stderr as they arrive.
func lineEcho(cmd *cobra.Command) func(string) {
	w := cmd.ErrOrStderr()
	return func(line string) {
		fmt.Fprintln(w, line)
	}
}

// isTerminal is swapped in tests.
var isTerminal = term.IsTerminal

// readSecret prompts on the terminal without echo. Without a terminal the
// secret must come from flags or the profile.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", errors.Errorf("%s required and stdin is not a terminal", strings.TrimSuffix(prompt, ": "))
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", errors.Wrap(err, "read secret")
	}
	return string(b), nil
}
