// Package maintenance holds the shelfctl commands run against the planogram database.
package maintenance

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shelfwise/shelfwise-backend/src/app"
	"github.com/shelfwise/shelfwise-backend/src/config"
	"github.com/shelfwise/shelfwise-backend/src/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Opener connects to the database and wires the services for one command.
type Opener func(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app.App, error)

type CLI struct {
	out  io.Writer
	in   io.Reader
	open Opener

	dsn     string
	verbose bool
	log     *zap.Logger
	cfg     *config.Config
}

func New(out io.Writer, in io.Reader, open Opener) *CLI {
	if open == nil {
		open = app.Open
	}
	return &CLI{out: out, in: in, open: open, log: zap.NewNop()}
}

// RootCommand builds shelfctl with every subcommand attached.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "shelfctl",
		Short:        "Maintenance tooling for shelf planograms",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			env := "development"
			if !c.verbose {
				env = "production"
			}
			log, err := logger.New(env)
			if err != nil {
				return err
			}
			c.log = log
			c.cfg = config.Load(log)
			if c.dsn != "" {
				c.cfg.DSN = c.dsn
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.log.Sync()
		},
	}

	root.PersistentFlags().StringVar(&c.dsn, "dsn", "", "postgres DSN (defaults to DB_DSN)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "human readable debug logging and per-finding output")

	root.AddCommand(c.validateCommand())
	root.AddCommand(c.fixOverlapsCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.seedCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.createUserCommand())

	return root
}

// Execute runs shelfctl with the process arguments.
func Execute(ctx context.Context) error {
	return New(os.Stdout, os.Stdin, nil).RootCommand().ExecuteContext(ctx)
}

// withApp opens the database for the duration of fn.
func (c *CLI) withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := c.open(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer a.Close()
	return fn(a)
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
