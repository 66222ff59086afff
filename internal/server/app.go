// Package server wires configuration, storage, services and transports into
// a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/mailer"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/passwords"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
	hs "github.com/dmitrijs2005/gophauth/internal/server/http"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	resets *services.ResetService
	http   *hs.Server
	grpc   *gs.GRPCServer
}

// openDB is a seam for tests.
var openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
	return dbx.Open(ctx, repomanager.DriverName, dsn, dbx.DefaultOpenOptions)
}

// NewApp validates cfg, connects to PostgreSQL, applies migrations and
// builds every component. Any failure here is fatal for the process.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.DevMode)

	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	mail, err := mailer.New(ctx, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	return newApp(cfg, logger, db, rm, mail), nil
}

func newApp(cfg *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager, mail mailer.Sender) *App {
	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	codec := auth.NewTokenCodec(cfg.SecretKey, cfg.AccessTokenValidityDuration)
	hasher := passwords.NewHasher(cfg.BcryptCost)
	m := metrics.New()

	users := services.NewUserService(db, rm, hasher, codec, logger)
	resets := services.NewResetService(db, rm, hasher, mail, cfg.MailSender(), cfg.ResetCodeValidityDuration, logger,
		services.WithMetrics(m), services.WithMailTimeout(cfg.MailTimeout))

	router := hs.NewRouter(hs.Dependencies{
		Users:    users,
		Resets:   resets,
		Verifier: codec,
		DB:       db,
		Metrics:  m,
		Logger:   logger,
		DevMode:  cfg.DevMode,
	})

	app := &App{
		config: cfg,
		logger: logger,
		db:     db,
		resets: resets,
		http:   hs.NewServer(cfg.HTTPAddr, router, logger),
	}
	if cfg.GRPCHealthAddr != "" {
		app.grpc = gs.NewGRPCServer(cfg.GRPCHealthAddr, logger, db)
	}
	return app
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Received signal", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled, a termination signal arrives or a
// server fails. It returns after every server has stopped and the pool is
// closed.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "dev_mode", app.config.DevMode)

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				app.logger.Error(ctx, "server failed", "server", name, "error", err)
				errOnce.Do(func() { firstErr = fmt.Errorf("%s: %w", name, err) })
				cancelFunc()
			}
		}()
	}

	run("http", app.http.Run)
	if app.grpc != nil {
		run("grpc", app.grpc.Run)
	}

	wg.Wait()
	app.resets.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.WithoutCancel(ctx), "closing database", "error", err)
	}

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return firstErr
}
