// Package app wires configuration, storage, services and the HTTP router
// into a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jnfpayroll/auth-api/internal/api"
	"github.com/jnfpayroll/auth-api/internal/api/handler"
	"github.com/jnfpayroll/auth-api/internal/core/ports"
	"github.com/jnfpayroll/auth-api/internal/core/service"
	"github.com/jnfpayroll/auth-api/internal/infrastructure/password"
	"github.com/jnfpayroll/auth-api/internal/infrastructure/queue"
	"github.com/jnfpayroll/auth-api/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// Options carries the process-level collaborators. A nil Registerer or
// Gatherer disables HTTP metrics.
type Options struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type App struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *service.CredentialStore
	gateway *service.AuthGateway
	echo    *echo.Echo
	closers []closeFunc
}

// New opens the configured user store, starts the hashing workers, seeds the
// default accounts when enabled and builds the router. Call Close to release
// everything New acquired, including on a failed Run.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	a := &App{cfg: cfg, log: log}

	repo, closeRepo, err := openRepository(ctx, cfg.Store, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeRepo)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.HashWorkers, password.NewBcryptHasher(cfg.BcryptCost), log)
	dispatcher.Start(workerCtx)
	a.closers = append(a.closers, func(context.Context) error {
		stopWorkers()
		return nil
	})

	a.store = service.NewCredentialStore(repo, dispatcher, log)
	if err := a.store.Warmup(ctx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	tokens := service.NewTokenService(cfg.SecretKey, cfg.TokenTTL)
	a.gateway = service.NewAuthGateway(a.store, tokens, deploymentInfo(cfg), cfg.TokenTTL, log)

	if cfg.SeedUsers {
		if err := Seed(ctx, a.store, log); err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
	}

	a.echo = api.NewRouter(api.Deps{
		Gateway:        a.gateway,
		Users:          a.store,
		Tokens:         tokens,
		Readiness:      map[string]handler.Pinger{"store": repo},
		AllowedOrigins: cfg.AllowedOrigins(),
		Registerer:     opts.Registerer,
		Gatherer:       opts.Gatherer,
		Log:            log,
	})

	return a, nil
}

// Handler exposes the router for in-process use.
func (a *App) Handler() http.Handler { return a.echo }

// Run serves HTTP until ctx is cancelled, then shuts the server down
// gracefully.
func (a *App) Run(ctx context.Context) error {
	addr := net.JoinHostPort("", a.cfg.Port)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info().
			Str("addr", addr).
			Str("env", a.cfg.Env).
			Str("store", a.cfg.Store.Backend).
			Msg("http server listening")
		if err := a.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info().Msg("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.echo.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases resources in reverse acquisition order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func deploymentInfo(cfg *config.Config) ports.DeploymentInfo {
	return ports.DeploymentInfo{
		Environment:  cfg.Env,
		GoVersion:    runtime.Version(),
		Framework:    "Echo",
		Frontend:     "React",
		Architecture: "hexagonal",
	}
}
