// Command tasks-server starts the task tracker HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/and161185/task-tracker/internal/bootstrap"
	"github.com/and161185/task-tracker/internal/config"
	"github.com/and161185/task-tracker/internal/limiter"
	"github.com/and161185/task-tracker/internal/migrate"
	"github.com/and161185/task-tracker/internal/repository/mongodb"
	"github.com/and161185/task-tracker/internal/repository/postgres"
	"github.com/and161185/task-tracker/internal/server/web"
	"github.com/and161185/task-tracker/internal/service"
	"github.com/and161185/task-tracker/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main loads configuration, initializes both stores through the bootstrap
// state machine and serves HTTP. A long-running server fails fast: any store
// error at startup is fatal.
func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	if cfg.SessionSecret == config.DefaultSessionSecret {
		logger.Warn("using default session secret, set TASKS_SESSION_SECRET in any deployed environment")
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		pool        *pgxpool.Pool
		mongoClient *mongo.Client
		userRepo    *mongodb.UserRepo
	)

	var boot bootstrap.Bootstrapper
	err := boot.Run(ctx, func(ctx context.Context) error {
		if err := migrate.Up(ctx, cfg.DatabaseDSN); err != nil {
			return err
		}
		var err error
		if pool, err = pgxpool.New(ctx, cfg.DatabaseDSN); err != nil {
			return err
		}
		if mongoClient, err = mongodb.Connect(ctx, cfg.MongoURI); err != nil {
			return err
		}
		userRepo = mongodb.NewUserRepo(mongoClient.Database(cfg.MongoDatabase))
		return userRepo.EnsureIndexes(ctx)
	})
	if err != nil {
		logger.Fatal("store init", zap.Error(err), zap.Stringer("state", boot.State()))
	}
	defer pool.Close()
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	// Repositories and services
	db := &postgres.DB{Pool: pool}
	taskRepo := postgres.NewTaskRepo(db)
	lim := limiter.NewPG(pool, 15*time.Minute, 5, 15*time.Minute)

	authSvc := service.NewAuthService(userRepo, lim)
	taskSvc := service.NewTaskService(taskRepo)
	sessions := session.NewManager([]byte(cfg.SessionSecret), cfg.SessionDuration, cfg.SessionActiveWindow)

	srv, err := web.New(authSvc, taskSvc, sessions, logger)
	if err != nil {
		logger.Fatal("web server", zap.Error(err))
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			_ = httpSrv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
