package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/aacflow/internal/config"
	aachttp "github.com/aretw0/aacflow/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const defaultShutdownTimeout = 10 * time.Second

// Serve listens on cfg.Addr and serves the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, stack *Stack, cfg config.HTTPConfig, version string) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}
	return ServeListener(ctx, ln, stack, cfg.ShutdownTimeout, version)
}

// ServeListener serves the HTTP API on ln, draining in-flight requests for up
// to shutdownTimeout once ctx is cancelled.
func ServeListener(ctx context.Context, ln net.Listener, stack *Stack, shutdownTimeout time.Duration, version string) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	handler := aachttp.NewHandler(stack.Engine,
		aachttp.WithLogger(stack.Logger),
		aachttp.WithStreams(stack.Streams),
		aachttp.WithMetricsHandler(promhttp.HandlerFor(stack.Registry, promhttp.HandlerOpts{})),
		aachttp.WithVersion(version),
	)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(stack.Streams.Close)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stack.Logger.Info("HTTP server listening", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		stack.Logger.Info("shutting down HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}
