package cli

import (
	"context"

	"github.com/spf13/cobra"

	pagemill "github.com/pagemill/pagemill"
	"github.com/pagemill/pagemill/internal/logging"
	"github.com/pagemill/pagemill/internal/logging/gologger"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

// App carries the state shared between the root command and its subcommands.
// Configuration is resolved once in the root PersistentPreRunE so every
// subcommand observes the same layered settings.
type App struct {
	cfgFile  string
	cfg      pagemill.Config
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
}

// Execute runs the pagemill CLI against os.Args and returns the command
// error; callers translate a non-nil error into a non-zero exit status.
func Execute(ctx context.Context) error {
	return NewApp().RootCommand().ExecuteContext(ctx)
}

// NewApp returns an App with defaults applied. Configuration is loaded when
// the root command runs.
func NewApp() *App {
	return &App{cfg: pagemill.DefaultConfig()}
}

// RootCommand wires the pagemill command tree.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "pagemill",
		Short: "Build static sites from Markdown content",
		Long: `Pagemill renders a Markdown content tree (posts and tabs) into a static
HTML site: dated permalinks, taxonomy listings, feeds, and theme assets.

Configuration is layered. Built-in defaults are overridden by pagemill.yaml,
then by PAGEMILL_* environment variables, then by command line flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./pagemill.yaml)")
	flags.String("source", "", "content source directory")
	flags.String("output", "", "output directory for generated artifacts")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, console, pretty)")

	root.AddCommand(a.buildCommand())
	root.AddCommand(a.diffCommand())
	root.AddCommand(a.cleanCommand())
	return root
}

func (a *App) initialize(cmd *cobra.Command) error {
	cfg, fileUsed, err := loadConfig(a.cfgFile, cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Focus:     cfg.Logging.Focus,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.provider = provider
	a.logger = logging.CLILogger(provider)
	if fileUsed != "" {
		a.logger.Debug("cli.config.loaded", "file", fileUsed)
	}
	return nil
}

// pipeline constructs the site pipeline from the resolved configuration.
func (a *App) pipeline() (*pagemill.Pagemill, error) {
	return pagemill.New(a.cfg, pagemill.WithLoggerProvider(a.provider))
}

// handlers builds the site command handlers backing the CLI verbs.
func (a *App) handlers() (*pagemill.HandlerSet, error) {
	p, err := a.pipeline()
	if err != nil {
		return nil, err
	}
	return p.RegisterCommands(nil)
}
