package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/krystark/portal-gate/adapters"
	"github.com/krystark/portal-gate/credentials"
	"github.com/krystark/portal-gate/credentials/redisstore"
	"github.com/krystark/portal-gate/credentials/storagefake"
	"github.com/krystark/portal-gate/identity"
	"github.com/krystark/portal-gate/internal/config"
	"github.com/krystark/portal-gate/legacy"
	"github.com/krystark/portal-gate/overlay"
	"github.com/krystark/portal-gate/registry"
	"github.com/krystark/portal-gate/server"
	"github.com/krystark/portal-gate/session"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	for {
		if err := run(logger); err != nil {
			logger.Error().Err(err).Msg("gate exited with error")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	logger.Info().Msg("gate stopped")
}

func run(logger zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := newCredentialStore(ctx, c, logger)
	if err != nil {
		return err
	}

	nav, routes, err := loadRegistries(c, logger)
	if err != nil {
		return err
	}

	resolver := credentials.NewResolver(store, c, logger)
	accountClient := identity.NewClient(c.GetAuthBaseURL(), logger)
	verifier, err := session.NewVerifier(accountClient, store, logger)
	if err != nil {
		return err
	}
	legacyClient := legacy.NewClient(c.GetLegacyBaseURL(), logger)
	reconciler := legacy.NewReconciler(legacyClient, c, logger)
	engine := overlay.NewEngine(nav, routes, c, logger)

	gate := session.NewGate(store, resolver, verifier, reconciler, logger,
		session.WithFinishedHook(func(state session.State) {
			if !state.Authorized() || state.Legacy == nil {
				return
			}
			engine.Apply(state.Legacy.RouteAllowList, state.Legacy.IsAdmin)
		}))

	go gate.Run(ctx)
	gate.Bootstrap(ctx, c.GetBootstrapURL())

	httpServer := &http.Server{
		Addr:    c.GetPort(),
		Handler: server.New(c, gate, store, nav, routes, logger),
	}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

// newCredentialStore backs the durable and session tiers with redis when
// an address is configured, otherwise with in-process storage only.
func newCredentialStore(ctx context.Context, c config.Config, logger zerolog.Logger) (*credentials.Store, error) {
	if addr := c.GetRedisAddr(); addr != "" {
		rs, err := redisstore.New(ctx, redisstore.Config{
			Addr:       addr,
			Key:        c.GetAuthStorageKey(),
			Channel:    c.GetAuthChannel(),
			SessionTTL: c.GetSessionTTL(),
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("opening redis storage: %w", err)
		}
		return credentials.NewStore(rs, logger, credentials.WithBroadcaster(rs)), nil
	}

	logger.Warn().Msg("REDIS_ADDR not set, credentials will not survive a restart")
	return credentials.NewStore(storagefake.New(), logger), nil
}

func loadRegistries(c config.Config, logger zerolog.Logger) (*registry.Nav, *registry.Routes, error) {
	nav, routes, err := registry.LoadFile(c.GetRegistryFile())
	if err != nil {
		return nil, nil, fmt.Errorf("loading registry: %w", err)
	}

	if path := c.GetPatchesFile(); path != "" {
		patches, err := adapters.LoadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("loading patches: %w", err)
		}
		adapters.NewApplier(nav, routes, logger).Apply(patches)
	}
	return nav, routes, nil
}

func listenAndServe(httpServer *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", httpServer.Addr).Msg("gate listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
