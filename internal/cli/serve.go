package cli

import (
	"context"
	"fmt"
	"net/http"

	intakehttp "github.com/aretw0/intake/pkg/adapters/http"
	"github.com/aretw0/intake/pkg/adapters/mcp"
	"golang.org/x/sync/errgroup"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Handler builds the HTTP API of app, with /metrics and the catalog mounted.
func Handler(app *App) http.Handler {
	opts := []intakehttp.Option{
		intakehttp.WithCatalog(app.Catalog),
		intakehttp.WithLogger(app.Logger),
		intakehttp.WithMaxInput(app.Config.Server.MaxInputSize),
	}
	if app.Config.Metrics.Addr == "" {
		opts = append(opts, intakehttp.WithMetricsHandler(app.MetricsHandler()))
	}
	if app.Transcripts != nil {
		opts = append(opts, intakehttp.WithTranscripts(app.Transcripts))
	}
	return app.Instrument(intakehttp.NewHandler(app.Driver, opts...), "intake-http")
}

// RunServe serves the HTTP API on port until ctx is done. When metrics.addr is
// set the collectors get a listener of their own.
func RunServe(ctx context.Context, app *App, port int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return intakehttp.Serve(ctx, fmt.Sprintf(":%d", port), Handler(app), app.Logger)
	})
	if addr := app.Config.Metrics.Addr; addr != "" {
		g.Go(func() error {
			mux := http.NewServeMux()
			mux.Handle("/metrics", app.MetricsHandler())
			return intakehttp.Serve(ctx, addr, mux, app.Logger.With("listener", "metrics"))
		})
	}
	return g.Wait()
}

// RunMCP serves the MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, app *App, transport string, port int) error {
	srv := mcp.NewServer(app.Driver,
		mcp.WithCatalog(app.Catalog),
		mcp.WithLogger(app.Logger),
		mcp.WithMaxInput(app.Config.Server.MaxInputSize),
	)
	switch transport {
	case TransportStdio:
		app.Logger.Info("starting MCP server", "transport", transport)
		return srv.ServeStdio()
	case TransportSSE:
		app.Logger.Info("starting MCP server", "transport", transport, "port", port)
		return srv.ServeSSE(ctx, port)
	default:
		return fmt.Errorf("unknown transport %q: supported are %s and %s", transport, TransportStdio, TransportSSE)
	}
}
