// Package cli wires configuration into a ready to use session driver for the
// intake binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aretw0/intake"
	"github.com/aretw0/intake/internal/adapters/file"
	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/internal/telemetry"
	"github.com/aretw0/intake/pkg/adapters/memory"
	"github.com/aretw0/intake/pkg/adapters/redis"
	"github.com/aretw0/intake/pkg/adapters/sqlite"
	"github.com/aretw0/intake/pkg/catalog"
	"github.com/aretw0/intake/pkg/observability"
	"github.com/aretw0/intake/pkg/persistence/middleware"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/transcript"
	"github.com/aretw0/intake/pkg/validator"
	"github.com/aretw0/intake/pkg/validator/interrupt"
	"github.com/aretw0/intake/pkg/validator/llm"
	"github.com/aretw0/intake/pkg/validator/rules"
	"github.com/aretw0/intake/pkg/validator/vehicle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// App holds everything a command needs to hold a conversation.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Catalog *catalog.Catalog
	Core    *intake.Driver
	// Driver is Core, decorated with the transcript recorder when enabled.
	Driver      ports.SessionDriver
	Store       ports.StateStore
	Transcripts ports.TranscriptReader
	Registry    *prometheus.Registry
	// Masker hides personal answers in transcripts and inspection output.
	Masker *middleware.Masker

	closers []func(context.Context) error
}

// BuildOptions tune Build for a particular command.
type BuildOptions struct {
	// LogWriter receives logs and exported spans. Defaults to os.Stderr.
	LogWriter io.Writer
	// Quiet drops Info logs, for interactive chat.
	Quiet bool
}

// Build assembles the driver described by cfg.
func Build(ctx context.Context, cfg *config.Config, opts BuildOptions) (*App, error) {
	if opts.LogWriter == nil {
		opts.LogWriter = os.Stderr
	}
	level, err := ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if opts.Quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}

	app := &App{
		Config:   cfg,
		Logger:   logging.NewWithWriter(opts.LogWriter, level),
		Registry: prometheus.NewRegistry(),
	}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close(context.Background())
		}
	}()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(telemetry.ServiceName, opts.LogWriter, app.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to init telemetry: %w", err)
		}
		app.closers = append(app.closers, shutdown)
	}

	if app.Catalog, err = loadCatalog(cfg.Flow.CatalogPath); err != nil {
		return nil, err
	}
	if app.Masker, err = middleware.NewMasker(cfg.PII.Patterns); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	answerValidator, err := app.buildValidator(ctx)
	if err != nil {
		return nil, err
	}

	driverOpts := []intake.Option{
		intake.WithCatalog(app.Catalog),
		intake.WithLogger(app.Logger),
		intake.WithMaxAttempts(cfg.Flow.MaxAttempts),
		intake.WithValidatorTimeout(cfg.ValidatorTimeout()),
		intake.WithLifecycleHooks(observability.LoggingHooks(app.Logger)),
		intake.WithLifecycleHooks(observability.NewMetrics(app.Registry).Hooks()),
	}

	store, locker, err := app.buildStore()
	if err != nil {
		return nil, err
	}
	app.Store = store
	driverOpts = append(driverOpts, intake.WithStore(store))
	if locker != nil {
		driverOpts = append(driverOpts, intake.WithLocker(locker))
	}

	if app.Core, err = intake.New(answerValidator, driverOpts...); err != nil {
		return nil, err
	}
	app.Driver = app.Core

	if path := cfg.Transcript.SQLitePath; path != "" {
		sink, err := sqlite.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript database: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return sink.Close() })
		app.Transcripts = sink
		app.Driver = transcript.NewRecorder(app.Core, sink,
			transcript.WithLogger(app.Logger),
			transcript.WithMasker(app.Masker),
		)
	}

	app.Logger.Debug("driver ready",
		"store", cfg.Store.Type,
		"questions", app.Catalog.Len(),
		"llm", cfg.LLM.APIKey != "",
		"transcripts", app.Transcripts != nil,
		"pii_masking", app.Masker != nil,
	)
	ok = true
	return app, nil
}

// MetricsHandler serves the collectors of this app.
func (a *App) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{Registry: a.Registry})
}

// Instrument wraps h with tracing when telemetry is enabled.
func (a *App) Instrument(h http.Handler, operation string) http.Handler {
	if !a.Config.Telemetry.Enabled {
		return h
	}
	return otelhttp.NewHandler(h, operation)
}

// Close releases stores, databases and the tracer, in reverse order.
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

// ParseLevel accepts debug, info, warn and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", config.ErrInvalidConfig, s)
	}
	return level, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}

// buildValidator chains the interrupt detector, the vehicle registry route and
// either the LLM or the offline rules.
func (a *App) buildValidator(ctx context.Context) (ports.AnswerValidator, error) {
	cfg := a.Config
	client := a.httpClient()

	var responder interrupt.Responder = interrupt.Static(interrupt.CannedResponse)
	if cfg.Interrupt.QuotesURL != "" {
		responder = interrupt.NewQuoteResponder(cfg.Interrupt.QuotesURL,
			interrupt.WithHTTPClient(client),
			interrupt.WithLogger(a.Logger),
		)
	}
	detectorOpts := []interrupt.Option{interrupt.WithResponder(responder)}
	if len(cfg.Interrupt.Keywords) > 0 {
		detectorOpts = append(detectorOpts, interrupt.WithKeywords(cfg.Interrupt.Keywords...))
	}

	var fallback ports.AnswerValidator = rules.New()
	if cfg.LLM.APIKey != "" {
		v, err := llm.NewOpenAI(ctx, llm.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
		},
			llm.WithTimeout(cfg.LLM.Timeout),
			llm.WithMaxRetries(cfg.LLM.MaxRetries),
			llm.WithLogger(a.Logger),
		)
		if err != nil {
			return nil, err
		}
		fallback = v
	} else {
		a.Logger.Info("no LLM API key configured, using offline rules")
	}

	chainOpts := []validator.Option{
		validator.WithInterceptor(interrupt.NewDetector(detectorOpts...)),
		validator.WithLogger(a.Logger),
	}
	if cfg.Vehicle.Enabled {
		if _, err := a.Catalog.Get(catalog.VehicleIdentifier); err == nil {
			v, err := vehicle.NewValidator(
				vehicle.NewClient(cfg.Vehicle.BaseURL, vehicle.WithHTTPClient(client)),
				cfg.Vehicle.CacheSize,
				vehicle.WithMaxYear(cfg.Vehicle.MaxYear),
				vehicle.WithLogger(a.Logger),
			)
			if err != nil {
				return nil, err
			}
			chainOpts = append(chainOpts, validator.WithRoute(catalog.VehicleIdentifier, v))
		}
	}
	return validator.NewChain(fallback, chainOpts...), nil
}

// httpClient returns a fresh client for outbound calls, traced when telemetry is on.
func (a *App) httpClient() *http.Client {
	c := &http.Client{Timeout: a.Config.Vehicle.Timeout}
	if a.Config.Telemetry.Enabled {
		c.Transport = otelhttp.NewTransport(http.DefaultTransport)
	}
	return c
}

func (a *App) buildStore() (ports.StateStore, ports.DistributedLocker, error) {
	cfg := a.Config.Store

	var (
		base   ports.StateStore
		locker ports.DistributedLocker
	)
	switch cfg.Type {
	case config.StoreFile:
		base = file.New(cfg.Path)
	case config.StoreRedis:
		opts := []redis.Option{redis.WithTTL(cfg.Redis.TTL)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		a.closers = append(a.closers, func(context.Context) error { return rs.Close() })
		if err := rs.Client().Ping(context.Background()).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		base = rs
		locker = redis.NewLocker(rs.Client(), cfg.Redis.Prefix)
	default:
		base = memory.NewStore()
	}

	if cfg.EncryptionKey == "" {
		return base, locker, nil
	}
	key, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return middleware.Chain(base,
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	), locker, nil
}
