// Package server wires the configuration, storage, authentication and HTTP
// layers together and runs the API until it receives a termination signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophprovider/internal/logging"
	"github.com/dmitrijs2005/gophprovider/internal/server/auth"
	"github.com/dmitrijs2005/gophprovider/internal/server/config"
	"github.com/dmitrijs2005/gophprovider/internal/server/httpapi"
	"github.com/dmitrijs2005/gophprovider/internal/server/metrics"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/dishes"
	"github.com/dmitrijs2005/gophprovider/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophprovider/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	dishesDB *sql.DB
	handler  *httpapi.Handler
}

// NewApp opens the stores, applies migrations and builds the HTTP handler.
// Without a DatabaseDSN users and providers live in memory and are lost on
// restart.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogLevel, c.LogFormat)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &App{config: c, logger: logger}

	var rm repomanager.RepositoryManager
	if c.DatabaseDSN != "" {
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db

		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no database DSN configured, using the in-memory store")
		rm = repomanager.NewMemoryRepositoryManager()
	}

	dishesDB, err := dishes.Open(ctx, c.DishesDSN)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("dishes db init error: %w", err)
	}
	app.dishesDB = dishesDB

	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		app.Close()
		return nil, err
	}

	signer, err := auth.NewSigner([]byte(c.SecretKey), c.SigningAlgorithm,
		auth.WithIssuer(c.Issuer), auth.WithAudience(c.Audience))
	if err != nil {
		app.Close()
		return nil, err
	}

	m := metrics.New()
	store := services.NewCredentialStore(app.db, rm, hasher)

	app.handler = httpapi.NewHandler(httpapi.Deps{
		Users:      services.NewUserService(store, signer, c, logger, services.WithMetrics(m)),
		Providers:  services.NewProviderService(app.db, rm),
		Dishes:     services.NewDishService(dishes.NewSQLiteRepository(dishesDB)),
		Signer:     signer,
		Authorizer: auth.NewAuthorizer(auth.DefaultPolicies()),
		Metrics:    m,
		Logger:     logger,
		Ping:       app.ping,
	})

	return app, nil
}

func (app *App) ping(ctx context.Context) error {
	if app.db != nil {
		if err := app.db.PingContext(ctx); err != nil {
			return err
		}
	}
	return app.dishesDB.PingContext(ctx)
}

// Close releases the database handles.
func (app *App) Close() {
	if app.db != nil {
		_ = app.db.Close()
	}
	if app.dishesDB != nil {
		_ = app.dishesDB.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddrHTTP)
	defer app.Close()

	if err := httpapi.Run(ctx, app.config.EndpointAddrHTTP, app.handler.Routes(), app.logger); err != nil {
		app.logger.Error(ctx, "server error", "error", err)
		return err
	}

	app.logger.Info(ctx, "app stopped")
	return nil
}
