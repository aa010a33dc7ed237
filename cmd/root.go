package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mensylisir/aymcctl/common"
	"github.com/mensylisir/aymcctl/config"
	"github.com/mensylisir/aymcctl/connector"
	"github.com/mensylisir/aymcctl/logger"
	"github.com/mensylisir/aymcctl/runtime"
)

var (
	version = "dev"
	commit  = "none"
)

// options holds the persistent flags.
type options struct {
	configPath  string
	host        string
	port        uint16
	user        string
	auth        string
	password    string
	keyPath     string
	keyDataFile string
	passphrase  string
	verbose     bool
	logDir      string
	output      string
}

var opts options

// newDialer is swapped in tests.
var newDialer = connector.NewDialer

// errReported marks a failure whose envelope has already been printed.
var errReported = errors.New("operation failed")

var rootCmd = &cobra.Command{
	Use:   common.AppName,
	Short: "Administer AYMC installations over SSH",
	Long: `aymcctl connects to a single host over SSH to run commands, inspect the
AYMC backend, agent and PostgreSQL services, and run the provisioning scripts.

Connection settings come from a profile (--config) and/or flags; flags win.`,
	Version:           fmt.Sprintf("%s (commit: %s)", version, commit),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "Profile file (YAML)")
	f.StringVarP(&opts.host, "host", "H", "", "Remote host address")
	f.Uint16VarP(&opts.port, "port", "p", common.DefaultSSHPort, "SSH port")
	f.StringVarP(&opts.user, "user", "u", "", "SSH user")
	f.StringVar(&opts.auth, "auth", "", "Auth type: password, private_key_file or private_key_data")
	f.StringVar(&opts.password, "password", "", "SSH password (prompted when omitted)")
	f.StringVarP(&opts.keyPath, "key", "i", "", "Private key file")
	f.StringVar(&opts.keyDataFile, "key-data-file", "", "File whose content is sent as inline key material")
	f.StringVar(&opts.passphrase, "passphrase", "", "Private key passphrase")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	f.StringVar(&opts.logDir, "log-dir", "", "Also write logs to rotating files in this directory")
	f.StringVarP(&opts.output, "output", "o", "json", "Output format: json or yaml")

	rootCmd.AddCommand(execCmd, streamCmd)
	rootCmd.AddCommand(statusCmd, backendConfigCmd, diskCmd, portCmd, hostInfoCmd,
		sudoCmd, dockerCmd, logsCmd, existsCmd, catCmd)
	rootCmd.AddCommand(installCmd, uninstallCmd, scriptsCmd)
	rootCmd.AddCommand(uploadCmd, fetchCmd)
}

// Execute runs the root command until done or interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	if opts.output != "json" && opts.output != "yaml" {
		return errors.Errorf("unsupported output format %q", opts.output)
	}
	p, err := loadProfile(cmd)
	if err != nil {
		// Commands that need the profile report the error themselves.
		return logger.InitGlobalLogger(opts.logDir, opts.verbose, logrusLevel(nil))
	}
	dir := p.Spec.Log.Dir
	if cmd.Flags().Changed("log-dir") {
		dir = opts.logDir
	}
	return logger.InitGlobalLogger(dir, opts.verbose || p.Spec.Log.Verbose, logrusLevel(p))
}

// loadProfile reads --config when given and overlays the flags that were set.
func loadProfile(cmd *cobra.Command) (*config.Profile, error) {
	var p *config.Profile
	if opts.configPath != "" {
		loaded, err := config.NewLoader(opts.configPath).Load()
		if err != nil {
			return nil, err
		}
		config.SetDefaults(loaded)
		p = loaded
	} else {
		p = config.NewProfile("cli")
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		p.Spec.Host.Address = opts.host
	}
	if flags.Changed("port") {
		p.Spec.Host.Port = opts.port
	}
	if flags.Changed("user") {
		p.Spec.Host.User = opts.user
	}
	if flags.Changed("password") {
		p.Spec.Auth.Password = opts.password
	}
	if flags.Changed("key") {
		p.Spec.Auth.PrivateKeyPath = opts.keyPath
	}
	if flags.Changed("key-data-file") {
		data, err := os.ReadFile(opts.keyDataFile)
		if err != nil {
			return nil, errors.Wrap(err, "read --key-data-file")
		}
		p.Spec.Auth.PrivateKeyData = string(data)
	}
	if flags.Changed("passphrase") {
		p.Spec.Auth.Passphrase = opts.passphrase
	}

	switch {
	case flags.Changed("auth"):
		p.Spec.Auth.Type = opts.auth
	case p.Spec.Auth.Type != "":
	case p.Spec.Auth.PrivateKeyData != "":
		p.Spec.Auth.Type = config.AuthPrivateKeyData
	case p.Spec.Auth.PrivateKeyPath != "":
		p.Spec.Auth.Type = config.AuthPrivateKeyFile
	default:
		p.Spec.Auth.Type = config.AuthPassword
	}
	return p, nil
}

// connectedProfile loads the profile, prompts for a missing password and validates.
func connectedProfile(cmd *cobra.Command) (*config.Profile, error) {
	p, err := loadProfile(cmd)
	if err != nil {
		return nil, err
	}
	if p.Spec.Auth.Type == config.AuthPassword && p.Spec.Auth.Password == "" {
		pw, err := readSecret(cmd, fmt.Sprintf("Password for %s@%s: ", p.Spec.Host.User, p.Spec.Host.Address))
		if err != nil {
			return nil, err
		}
		p.Spec.Auth.Password = pw
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// withSession connects, runs fn on the session and disconnects.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *runtime.Session) error) error {
	p, err := connectedProfile(cmd)
	if err != nil {
		return err
	}
	cred, err := p.Credential()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt := runtime.NewRuntime(newDialer())
	if err := rt.Connect(ctx, p.Target(), cred); err != nil {
		return err
	}
	defer func() {
		if derr := rt.Disconnect(); derr != nil {
			logger.Log.WarnfHost(p.Spec.Host.Address, "disconnect: %v", derr)
		}
	}()
	return rt.With(ctx, func(s *runtime.Session) error { return fn(ctx, s) })
}
