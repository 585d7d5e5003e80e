package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/journeys/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/journeys/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// NewHTTPHandler builds the preview API for app.
func NewHTTPHandler(app *App) (http.Handler, error) {
	opts := []httpAdapter.Option{
		httpAdapter.WithSessions(app.Sessions),
		httpAdapter.WithLogger(app.Logger),
	}
	if app.Metrics != nil {
		opts = append(opts, httpAdapter.WithMetrics(app.Metrics.Handler()))
	}
	return httpAdapter.NewHandler(app.Engine, opts...)
}

// Serve runs the HTTP API on ln until ctx is done, then shuts down
// gracefully.
func Serve(ctx context.Context, app *App, ln net.Listener) error {
	handler, err := NewHTTPHandler(app)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("http server listening", "address", ln.Addr().String(), "journeys", app.Config.Journeys.Dir)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		app.Logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			if cerr := srv.Close(); cerr != nil {
				app.Logger.Error("failed to close server", "err", cerr)
			}
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", shutdownTimeout, err)
		}
		return nil
	}
}

// ServeMCP runs the MCP server over stdio or SSE.
func ServeMCP(ctx context.Context, app *App) error {
	srv := mcpAdapter.NewServer(app.Engine, mcpAdapter.WithLogger(app.Logger))
	if app.Config.MCP.Transport == "sse" {
		return srv.ServeSSE(ctx, app.Config.MCP.Addr)
	}
	return srv.ServeStdio()
}
