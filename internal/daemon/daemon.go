package daemon

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/pmanser/svnd/internal/auth"
	"github.com/pmanser/svnd/internal/cache"
	"github.com/pmanser/svnd/internal/lifecycle"
	"github.com/pmanser/svnd/internal/metadata"
	"github.com/pmanser/svnd/internal/session"
	"github.com/pmanser/svnd/internal/svn"
)

// Daemon owns the long-running services: the shared cache store, the metadata
// service, the session manager, the lifecycle coordinator and the API server.
// NewDaemon should be used to create instances of Daemon.
type Daemon struct {
	logger    hclog.Logger
	store     *cache.Store
	apiServer *APIServer
}

// NewDaemon wires the full service stack from a loaded configuration.
func NewDaemon(deps Dependencies, opt ...Option) (*Daemon, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies for daemon: %w", err)
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid daemon options: %w", err)
	}

	logger := deps.Logger
	cfg := deps.Config

	backend, err := svn.NewClient(
		logger,
		svn.WithBinary(cfg.Backend.Binary),
		svn.WithCreateRepoBinary(cfg.Backend.CreateRepoBinary),
		svn.WithTimeout(cfg.Backend.Timeout.Std()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	store, err := cache.NewStore(logger, cache.WithSweepInterval(cfg.Cache.SweepInterval.Std()))
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	metadataDeps, err := metadata.NewDependencies(logger, backend, store, cfg.Repositories)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata dependencies: %w", err)
	}
	metadataSvc, err := metadata.NewService(
		metadataDeps,
		metadata.WithRepositoryListTTL(cfg.Cache.RepositoryListTTL.Std()),
		metadata.WithMetadataTTL(cfg.Cache.MetadataTTL.Std()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata service: %w", err)
	}

	verifier := auth.NewStaticVerifier(logger, cfg.Users)
	sessions, err := session.NewManager(
		logger,
		store,
		verifier,
		session.WithLifetime(cfg.Sessions.Lifetime.Std()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	lifecycleDeps, err := lifecycle.NewDependencies(logger, backend, metadataSvc)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle dependencies: %w", err)
	}
	coordinator, err := lifecycle.NewCoordinator(lifecycleDeps)
	if err != nil {
		return nil, fmt.Errorf("failed to create lifecycle coordinator: %w", err)
	}

	apiDeps, err := NewAPIDependencies(
		logger,
		metadataSvc,
		sessions,
		coordinator,
		sessions.Lifetime(),
		deps.APIAddr,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create API dependencies: %w", err)
	}
	apiServer, err := NewAPIServer(apiDeps, opts.APIOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API server: %w", err)
	}

	return &Daemon{
		logger:    logger.Named("daemon"),
		store:     store,
		apiServer: apiServer,
	}, nil
}

// StartAndManage runs the API server until the context is canceled, then
// releases the daemon's background resources.
func (d *Daemon) StartAndManage(ctx context.Context) error {
	defer d.store.Stop()

	d.logger.Info("Starting daemon")
	return d.apiServer.Start(ctx)
}
