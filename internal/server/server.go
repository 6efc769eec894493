// Package server runs the HTTP server, plus the gRPC health server when
// GRPC_PORT is set, until SIGINT or SIGTERM.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/crowdfork/crowdfork/config"
	"github.com/crowdfork/crowdfork/internal/kernel"
	"github.com/crowdfork/crowdfork/pkg/grpc"
	"github.com/crowdfork/crowdfork/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := kernel.Boot(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           kernel.NewHTTPKernel(app.Deps()).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if port := config.GRPCPort(); port != "" {
		grpcSrv, err := grpc.Start(port, app.Store.Ping)
		if err != nil {
			return err
		}
		defer grpc.Stop(grpcSrv)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("CrowdFork listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
