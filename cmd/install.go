package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mensylisir/aymcctl/config"
	"github.com/mensylisir/aymcctl/installer"
	"github.com/mensylisir/aymcctl/runtime"
	"github.com/mensylisir/aymcctl/scripts"
)

var installFlags struct {
	dbPassword string
	jwtSecret  string
	appPort    string
	quoteEnv   bool
	scriptsDir string
}

// installOptions merges the install section of the profile with the flags
// and prompts for missing secrets.
func installOptions(cmd *cobra.Command, p *config.Profile) (installer.Options, error) {
	o := installer.Options{
		DBPassword: p.Spec.Install.DBPassword,
		JWTSecret:  p.Spec.Install.JWTSecret,
		AppPort:    p.Spec.Install.AppPort,
		QuoteEnv:   p.Spec.Install.QuoteEnv,
		OnLine:     lineEcho(cmd),
	}
	flags := cmd.Flags()
	if flags.Changed("db-password") {
		o.DBPassword = installFlags.dbPassword
	}
	if flags.Changed("jwt-secret") {
		o.JWTSecret = installFlags.jwtSecret
	}
	if flags.Changed("app-port") {
		o.AppPort = installFlags.appPort
	}
	if flags.Changed("quote-env") {
		o.QuoteEnv = installFlags.quoteEnv
	}

	var err error
	if o.DBPassword == "" {
		if o.DBPassword, err = readSecret(cmd, "Database password: "); err != nil {
			return o, err
		}
	}
	if o.JWTSecret == "" {
		if o.JWTSecret, err = readSecret(cmd, "JWT secret: "); err != nil {
			return o, err
		}
	}
	return o, nil
}

func catalogFor(cmd *cobra.Command, p *config.Profile) *scripts.Catalog {
	if cmd.Flags().Changed("scripts-dir") {
		return scripts.NewCatalog(installFlags.scriptsDir)
	}
	return scripts.NewCatalog(p.Spec.ScriptsDir)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install AYMC on the host",
	Long: fmt.Sprintf(`Upload %s as /tmp/install-aymc.sh, make it executable and run it
with DB_PASSWORD, JWT_SECRET and APP_PORT set. Script output is echoed to
stderr as it arrives.`, scripts.InstallVPS),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var lines []string
		err := func() error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			o, err := installOptions(cmd, p)
			if err != nil {
				return err
			}
			catalog := catalogFor(cmd, p)
			return withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
				lines, err = s.Installer(catalog).Install(ctx, o)
				return err
			})
		}()
		return respond(cmd, lines, err)
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove AYMC from the host",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var lines []string
		err := func() error {
			p, err := loadProfile(cmd)
			if err != nil {
				return err
			}
			catalog := catalogFor(cmd, p)
			return withSession(cmd, func(ctx context.Context, s *runtime.Session) error {
				lines, err = s.Installer(catalog).Uninstall(ctx, lineEcho(cmd))
				return err
			})
		}()
		return respond(cmd, lines, err)
	},
}

var scriptsCmd = &cobra.Command{
	Use:   "scripts [name]",
	Short: "List the provisioning scripts, or print one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProfile(cmd)
		if err != nil {
			return respond[[]scripts.ScriptInfo](cmd, nil, err)
		}
		catalog := catalogFor(cmd, p)
		if len(args) == 0 {
			return respond(cmd, catalog.Info(), nil)
		}
		s, err := scripts.Parse(args[0])
		if err != nil {
			return respond(cmd, "", err)
		}
		content, err := catalog.Read(s)
		return respond(cmd, string(content), err)
	},
}

func init() {
	installCmd.Flags().StringVar(&installFlags.dbPassword, "db-password", "", "Database password (prompted when omitted)")
	installCmd.Flags().StringVar(&installFlags.jwtSecret, "jwt-secret", "", "JWT secret (prompted when omitted)")
	installCmd.Flags().StringVar(&installFlags.appPort, "app-port", "", "Backend port (default 8080)")
	installCmd.Flags().BoolVar(&installFlags.quoteEnv, "quote-env", false, "Shell-escape the injected values")
	for _, c := range []*cobra.Command{installCmd, uninstallCmd, scriptsCmd} {
		c.Flags().StringVar(&installFlags.scriptsDir, "scripts-dir", "", "Directory holding the provisioning scripts")
	}
}
