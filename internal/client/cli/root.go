package cli

import (
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/spf13/cobra"
)

// newClient is a test seam for the API client constructor.
var newClient = func(cfg *config.Config) client.Client {
	return client.NewHTTPClient(cfg.ServerURL, cfg.Timeout)
}

// App carries state shared by subcommands once the root command has loaded
// configuration.
type App struct {
	configFile string
	serverURL  string
	timeout    time.Duration
	tokenFile  string

	cfg    *config.Config
	client client.Client
}

// NewRootCmd creates the root command for authctl.
func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "authctl - gophauth command-line client",
		Long: `authctl registers accounts, logs in and inspects tokens against a
gophauth server.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file path")
	flags.StringVar(&a.serverURL, "server", "", "server base URL")
	flags.DurationVar(&a.timeout, "timeout", 0, "request timeout")
	flags.StringVar(&a.tokenFile, "token-file", "", "where the token is stored")

	cmd.AddCommand(newRegisterCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newWhoAmICmd(a))
	cmd.AddCommand(newHashCmd())

	return cmd
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = a.serverURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if flags.Changed("token-file") {
		cfg.TokenFile = a.tokenFile
	}

	a.cfg = cfg
	a.client = newClient(cfg)
	return nil
}
