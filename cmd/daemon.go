package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pmanser/svnd/internal/cmd"
	cmdopts "github.com/pmanser/svnd/internal/cmd/options"
	"github.com/pmanser/svnd/internal/config"
	"github.com/pmanser/svnd/internal/daemon"
	"github.com/pmanser/svnd/internal/flags"
)

// DaemonCmd should be used to represent the 'daemon' command.
type DaemonCmd struct {
	*cmd.BaseCmd
	Addr        string
	CORSEnabled bool
	CORSOrigins []string
	cfgLoader   config.Loader
}

// NewDaemonCmd creates a newly configured (Cobra) command.
func NewDaemonCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &DaemonCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "daemon [--addr]",
		Short: "Launches an `svnd` daemon instance",
		Long: "Launches an `svnd` daemon instance, which serves cached repository metadata " +
			"over an HTTP API and coordinates tag, branch and repository creation",
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"",
		"Address for the daemon to bind, overriding the configured address",
	)

	cobraCommand.Flags().BoolVar(
		&c.CORSEnabled,
		"cors-enabled",
		false,
		"Enable CORS headers on API responses",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.CORSOrigins,
		"cors-origins",
		nil,
		"Origins allowed for CORS requests (requires --cors-enabled)",
	)

	return cobraCommand, nil
}

// run is configured (via NewDaemonCmd) to be called by the Cobra framework when the command is executed.
func (c *DaemonCmd) run(_ *cobra.Command, _ []string) error {
	logger := c.Logger()

	// The daemon is useless without repositories to serve; fail before binding.
	loader := config.NewValidatingLoader(c.cfgLoader, func(cfg *config.Config) error {
		if len(cfg.Repositories) == 0 {
			return fmt.Errorf("no repositories configured in %s", flags.ConfigFile)
		}
		return nil
	})

	cfg, err := loader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}

	// The flag wins over the configured address.
	addr := strings.TrimSpace(c.Addr)
	if addr == "" {
		addr = cfg.Addr
	}

	deps, err := daemon.NewDependencies(logger, cfg, addr)
	if err != nil {
		return fmt.Errorf("error configuring svnd daemon: %w", err)
	}

	apiOpts := []daemon.APIOption{
		daemon.WithCORSEnabled(c.CORSEnabled),
	}
	if len(c.CORSOrigins) > 0 {
		apiOpts = append(apiOpts, daemon.WithCORSAllowOrigins(c.CORSOrigins))
	}

	d, err := daemon.NewDaemon(deps, daemon.WithAPIOptions(apiOpts...))
	if err != nil {
		return fmt.Errorf("failed to create svnd daemon instance: %w", err)
	}

	// Create the signal handling context for the application.
	daemonCtx, daemonCtxCancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer daemonCtxCancel()

	runErr := make(chan error, 1)
	go func() {
		if err := d.StartAndManage(daemonCtx); err != nil && !errors.Is(err, context.Canceled) {
			runErr <- err
		}
		close(runErr)
	}()

	select {
	case <-daemonCtx.Done():
		logger.Info("Shutting down daemon")
		err := <-runErr // Wait for cleanup and deferred logging.
		return err      // Graceful Ctrl+C / SIGTERM.
	case err := <-runErr:
		logger.Error("daemon exited with error", "error", err)
		return err // Propagate daemon failure.
	}
}
