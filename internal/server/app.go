// Package server wires configuration, storage, the design services and both
// public endpoints (HTTP and gRPC) into one process with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/brandforge/internal/generator"
	"github.com/dmitrijs2005/brandforge/internal/guard"
	"github.com/dmitrijs2005/brandforge/internal/llm"
	"github.com/dmitrijs2005/brandforge/internal/logging"
	"github.com/dmitrijs2005/brandforge/internal/refine"
	"github.com/dmitrijs2005/brandforge/internal/server/config"
	"github.com/dmitrijs2005/brandforge/internal/server/export"
	"github.com/dmitrijs2005/brandforge/internal/server/httpapi"
	"github.com/dmitrijs2005/brandforge/internal/server/metrics"
	"github.com/dmitrijs2005/brandforge/internal/server/ratelimit"
	"github.com/dmitrijs2005/brandforge/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/brandforge/internal/server/services"
	"github.com/dmitrijs2005/brandforge/internal/tiers"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/brandforge/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	catalog *tiers.Catalog
	credits *services.CreditService
	designs *services.DesignService
	metrics *metrics.Metrics
	gate    *ratelimit.Gate
}

// NewApp opens the database, applies migrations and builds the services.
// The returned App owns the database handle; Run closes it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	catalog := tiers.Builtin()
	if c.TiersFile != "" {
		var err error
		catalog, err = tiers.LoadFile(c.TiersFile)
		if err != nil {
			return nil, fmt.Errorf("tiers init error: %w", err)
		}
	}

	db, rm, err := repomanager.Open(c.DatabaseDriver, c.DatabaseDSN, repomanager.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	model, err := llm.New(c.LLM)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("llm init error: %w", err)
	}

	m := metrics.New()
	gen := generator.New(model, catalog, logger, generator.WithTimeout(c.GenerationTimeout))
	engine := refine.NewEngine(gen, logger)
	g := guard.New(catalog, guard.WithPayloadLimits(c.SmallPayloadLimit, c.DesignPayloadLimit))

	credits := services.NewCreditService(db, rm, catalog, logger)

	opts := []services.DesignOption{services.WithRecorder(m)}
	if c.ExportEnabled() {
		exp, err := export.NewS3Exporter(ctx, export.Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
			Expiry:       c.S3PresignExpiry,
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		opts = append(opts, services.WithExporter(exp))
	}
	designs := services.NewDesignService(db, rm, credits, gen, engine, g, catalog, logger, opts...)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		catalog: catalog,
		credits: credits,
		designs: designs,
		metrics: m,
		gate:    ratelimit.New(c.RatePerMinute, c.RateBurst),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// httpHandler builds the HTTP API. Requests may take as long as a model
// call plus some headroom.
func (app *App) httpHandler() http.Handler {
	s := httpapi.NewServer(app.designs, app.credits, app.catalog, []byte(app.config.SecretKey), app.logger,
		httpapi.WithGate(app.gate),
		httpapi.WithObserver(app.metrics),
		httpapi.WithMaxBody(int64(app.config.DesignPayloadLimit)*2),
		httpapi.WithRequestTimeout(app.config.GenerationTimeout+30*time.Second),
	)
	return s.Handler()
}

func (app *App) runHTTPServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           app.httpHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (app *App) runGRPCServer(ctx context.Context) error {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.designs, app.credits, app.config.SecretKey, gs.WithGate(app.gate))
	return s.Run(ctx)
}

// Run serves both endpoints until a signal arrives, ctx is cancelled or
// either server fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.runHTTPServer(ctx) })
	g.Go(func() error { return app.runGRPCServer(ctx) })

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
