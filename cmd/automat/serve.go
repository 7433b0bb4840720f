package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/danilodaat/automat/internal/adapters/redisbus"
	"github.com/danilodaat/automat/internal/adapters/websocket"
	"github.com/danilodaat/automat/internal/api"
	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and websocket server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	deps, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The hub needs the runner to start jobs and the runner's orchestrator
	// needs the hub to emit events.
	var runner *service.Runner
	hub := websocket.NewHub(func(req domain.StartRequest, session string) (string, error) {
		return runner.Submit(req, session)
	}, logger)
	go hub.Run(ctx)

	sinks := service.FanOut{hub}
	if cfg.RedisURL != "" {
		pub, err := redisbus.NewPublisher(cfg.RedisURL, logger)
		if err != nil {
			return err
		}
		defer pub.Close()
		if err := pub.Ping(ctx); err != nil {
			logger.WithError(err).Warn("redis not reachable, events will still be published when it comes back")
		}
		sinks = append(sinks, pub)
	}
	deps.Events = sinks

	runner = service.NewRunner(ctx, service.NewOrchestrator(deps), cfg.MaxConcurrentJobs, logger)

	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(
		api.NewHandler(runner, logger),
		websocket.NewHandler(hub, cfg.AllowedOrigins).HandleConnection,
		cfg.AllowedOrigins,
		logger,
	)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("server shutdown incomplete")
	}
	runner.Wait()
	logger.Info("server stopped")
	return nil
}
