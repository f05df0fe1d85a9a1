// Package server assembles the auth service: database and migrations, the
// session manager, OAuth providers, the HTTP API and the gRPC health server.
// It handles OS signals and shuts every listener down gracefully.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/verixa/internal/logging"
	"github.com/dmitrijs2005/verixa/internal/server/auth"
	"github.com/dmitrijs2005/verixa/internal/server/config"
	"github.com/dmitrijs2005/verixa/internal/server/httpapi"
	"github.com/dmitrijs2005/verixa/internal/server/mailer"
	"github.com/dmitrijs2005/verixa/internal/server/metrics"
	"github.com/dmitrijs2005/verixa/internal/server/oauth"
	"github.com/dmitrijs2005/verixa/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/verixa/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/verixa/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *http.Server
	grpcServer *gs.GRPCServer
}

// openDB is a seam for tests.
var openDB = repomanager.OpenDB

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	handler, err := buildHandler(ctx, c, logger, db, rm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		httpServer: &http.Server{
			Addr:              c.EndpointAddrHTTP,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
	}, nil
}

// buildHandler wires the services behind the HTTP router.
func buildHandler(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) (http.Handler, error) {
	mail, err := newMailer(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewCollector(reg)

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)
	us := services.NewUserService(db, rm, tokens, mail, c, logger)

	registry := oauth.NewRegistry()
	if c.GoogleClientID != "" {
		registry.Register(oauth.NewGoogleProvider(oauth.GoogleConfig{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			RedirectURL:  oauth.CallbackURL(c.BaseURL(), oauth.GoogleProviderName),
			Timeout:      c.OAuthHTTPTimeout,
		}))
	} else {
		logger.Warn(ctx, "GOOGLE_CLIENT_ID is not set, google sign-in disabled")
	}
	broker := oauth.NewBroker(registry, us, rec, logger)

	return httpapi.NewRouter(&httpapi.RouterDeps{
		Users:        us,
		Broker:       broker,
		Metrics:      rec,
		Gatherer:     reg,
		Logger:       logger,
		CookieSecure: c.CookieSecure,
	}), nil
}

// newMailer picks the verification mail transport.
func newMailer(ctx context.Context, c *config.Config, logger logging.Logger) (mailer.Mailer, error) {
	switch c.MailOutbox {
	case config.MailOutboxS3:
		client, err := mailer.NewS3Client(ctx, mailer.S3Options{
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return nil, err
		}
		return mailer.NewS3OutboxMailer(client, c.S3Bucket), nil
	case config.MailOutboxFile:
		m, err := mailer.NewFileOutboxMailer(c.MailOutboxDir)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return mailer.NewLogMailer(logger), nil
	}
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(sctx); err != nil {
			app.logger.Error(sctx, "http shutdown", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then waits for both
// servers to stop and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
