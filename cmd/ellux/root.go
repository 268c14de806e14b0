package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/ellux/internal/config"
	"github.com/pders01/ellux/internal/debuglog"
	"github.com/pders01/ellux/internal/pages"
	"github.com/pders01/ellux/internal/tui"
)

// cli holds the state shared by the commands of one invocation.
type cli struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg *config.Config
	app *app
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "ellux",
		Short:         "Terminal news reader with favorites",
		Long:          "ellux lists top news stories, keeps favorites per account and manages the account behind them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
		RunE: c.run(func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd)
		}),
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&c.dbPath, "db", "", "path to database file (overrides config)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error, off")

	root.AddCommand(
		c.browseCmd(),
		c.newsCmd(),
		c.favoritesCmd(),
		c.signinCmd(),
		c.signupCmd(),
		c.logoutCmd(),
		c.profileCmd(),
		c.passwordCmd(),
		c.configCmd(),
		c.storageCmd(),
		c.guardCmd(),
		versionCmd(),
	)

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nSee '%s --help'", err, cmd.CommandPath())
	})
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if c.dbPath != "" {
		cfg.Database.Path = c.dbPath
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	c.cfg = cfg

	level := debuglog.ParseLogLevel(cfg.Log.Level)
	if level != debuglog.LevelOff {
		var paths []string
		if cfg.Log.Path != "" {
			paths = append(paths, cfg.Log.Path)
		}
		if err := debuglog.Setup(level, paths...); err != nil {
			fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		}
	}
	tui.ApplyColors(cfg.UI.Colors)
	return nil
}

// services opens the store and wires the services on first use.
func (c *cli) services() (*pages.Services, error) {
	if c.app == nil {
		a, err := openApp(c.cfg)
		if err != nil {
			return nil, err
		}
		c.app = a
	}
	return c.app.svc, nil
}

// run wraps a command body so the store and log file are closed however it
// ends.
func (c *cli) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if closeErr := c.close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()
		return explain(fn(cmd, args))
	}
}

func (c *cli) close() error {
	var err error
	if c.app != nil {
		err = c.app.Close()
		c.app = nil
	}
	if closeErr := debuglog.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

// standalone skips the config loading of the root command.
func standalone(cmd *cobra.Command) *cobra.Command {
	cmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	return cmd
}

func versionCmd() *cobra.Command {
	return standalone(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), tui.Banner(Version))
			fmt.Fprintf(cmd.OutOrStdout(), "ellux %s\n", Version)
			fmt.Fprintln(cmd.OutOrStdout(), "News reader with favorites")
		},
	})
}

// explain turns page errors into something a shell user can act on.
func explain(err error) error {
	if err == nil {
		return nil
	}
	if r, ok := pages.AsRedirect(err); ok {
		switch {
		case strings.HasPrefix(r.To, "/signin"):
			return errors.New("not signed in; run 'ellux signin' first")
		default:
			return fmt.Errorf("already signed in; run 'ellux logout' first (would go to %s)", r.Target())
		}
	}
	var ue *pages.UserError
	if errors.As(err, &ue) {
		return errors.New(ue.Message)
	}
	return err
}

func contextFor(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
