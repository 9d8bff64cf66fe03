package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xiaot623/gogo/governor/internal/logger"
	handler "github.com/xiaot623/gogo/governor/internal/transport/http"
)

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting governor",
		"http_port", cfg.Server.HTTPPort,
		"internal_port", cfg.Server.InternalPort,
		"database", cfg.Database.DSN,
		"upstream_mode", cfg.Upstream.Mode,
	)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	externalServer := handler.NewExternalServer(a.svc)
	internalServer := handler.NewInternalServer(a.svc, a.registry)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return start(externalServer, cfg.Server.HTTPPort)
	})
	g.Go(func() error {
		return start(internalServer, cfg.Server.InternalPort)
	})
	g.Go(func() error {
		a.svc.RunSweepMonitor(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down governor")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return errors.Join(
			externalServer.Shutdown(shutdownCtx),
			internalServer.Shutdown(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Governor stopped")
	return nil
}

func start(e *echo.Echo, port int) error {
	if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server on port %d: %w", port, err)
	}
	return nil
}
