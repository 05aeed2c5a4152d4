// Package server wires configuration, persistence, object storage and the
// HTTP API into a runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/bea-ebooks/internal/logging"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/access"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/config"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/httpapi"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/inmemory"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/services"
	"github.com/dmitrijs2005/bea-ebooks/internal/server/storage"
)

var openDB = sql.Open

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, c.LogFormat, false)

	db, rm, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, err
	}

	store, err := openObjectStore(ctx, c, logger)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	ebooks := services.NewEbookService(db, rm, store, access.OwnerPrefixGate{}, c, logger)
	users := services.NewUserService(db, rm, c, logger)

	srv := httpapi.NewServer(httpapi.Options{
		Address:         c.EndpointAddrHTTP,
		SecretKey:       c.SecretKey,
		ShutdownTimeout: c.ShutdownTimeout,
		Ebooks:          ebooks,
		Users:           users,
		Logger:          logger,
	})

	return &App{config: c, logger: logger, db: db, http: srv}, nil
}

// openRepositories returns a nil *sql.DB when DatabaseDSN is empty; the
// in-memory manager ignores the handle.
func openRepositories(ctx context.Context, c *config.Config, logger logging.Logger) (*sql.DB, repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "DatabaseDSN is empty, metadata is kept in memory")
		return nil, inmemory.NewManager(), nil
	}

	db, err := openDB("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	return db, rm, nil
}

func openObjectStore(ctx context.Context, c *config.Config, logger logging.Logger) (storage.ObjectStore, error) {
	sc := storage.S3Config{
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
		UseSSL:       c.S3UseSSL,
	}

	switch c.StorageDriver {
	case config.StorageS3:
		return storage.NewS3Store(ctx, sc, logger)
	case config.StorageMinio:
		s, err := storage.NewMinioStore(sc, logger)
		if err != nil {
			return nil, err
		}
		bctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.EnsureBucket(bctx, c.S3Region); err != nil {
			logger.Warn(ctx, "could not ensure bucket", "bucket", c.S3Bucket, "error", err)
		}
		return s, nil
	case config.StorageMemory:
		logger.Warn(ctx, "using in-memory object storage, signed URLs are not fetchable")
		return storage.NewMemoryStore(c.S3Bucket), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

// Run serves until SIGINT/SIGTERM/SIGQUIT or ctx cancellation.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return app.http.Run(ctx)
	})

	err := eg.Wait()

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(context.Background(), "closing database", "error", cerr)
		}
	}

	app.logger.Info(context.Background(), "App stopped")
	return err
}
