package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"geo-tutor/api/internal/app"
	"geo-tutor/api/internal/config"
	"geo-tutor/api/internal/util"
)

// cli carries the root flags and the constructors commands use; tests replace the constructors.
type cli struct {
	configFile string
	logLevel   string

	newApp    func(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app.App, error)
	openStore func(ctx context.Context, cfg *config.Config, log *zap.Logger) (app.Store, func() error, error)
}

func main() {
	c := &cli{newApp: app.New, openStore: app.OpenStore}
	if err := c.rootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tutorctl",
		Short:         "Operate the geometry tutor from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file path")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.newMigrateCommand(),
		newTopicsCommand(),
		c.newNewCommand(),
		c.newAnswerCommand(),
		c.newHistoryCommand(),
	)
	return root
}

func (c *cli) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return nil, nil, err
	}
	log, err := util.NewLogger(c.logLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// withApp builds the full app (store and engine) for the duration of fn.
func (c *cli) withApp(ctx context.Context, fn func(a *app.App) error) error {
	cfg, log, err := c.load()
	if err != nil {
		return err
	}
	a, err := c.newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}

// withStore opens only the store; no LLM key is needed.
func (c *cli) withStore(ctx context.Context, fn func(st app.Store) error) error {
	cfg, log, err := c.load()
	if err != nil {
		return err
	}
	st, closeFn, err := c.openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return fn(st)
}
