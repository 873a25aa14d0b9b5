package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/josh-kwaku/bank-ledger/internal/config"
	"github.com/josh-kwaku/bank-ledger/internal/events"
	"github.com/josh-kwaku/bank-ledger/internal/handler"
	"github.com/josh-kwaku/bank-ledger/internal/idgen"
	"github.com/josh-kwaku/bank-ledger/internal/logging"
	"github.com/josh-kwaku/bank-ledger/internal/middleware"
	"github.com/josh-kwaku/bank-ledger/internal/migrations"
	"github.com/josh-kwaku/bank-ledger/internal/render"
	"github.com/josh-kwaku/bank-ledger/internal/repository"
	"github.com/josh-kwaku/bank-ledger/internal/service"
	"github.com/josh-kwaku/bank-ledger/internal/service/ledger"
	"github.com/josh-kwaku/bank-ledger/internal/service/report"
)

const idempotencySweepInterval = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("bank-ledger", cfg.LogLevel, cfg.AppEnv)

	if err := run(cfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
		ConnectAttempts:  cfg.DBConnectAttempts,
	})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer db.Close()

	if err := migrations.Up(ctx, db); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	clientRepo := repository.NewClientRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	ids := idgen.New()

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	ledgerSvc := ledger.NewService(db, accountRepo, movementRepo, outboxRepo, cfg.LedgerMaxRetries)
	accountSvc := service.NewAccountService(accountRepo, clientRepo, ids, cfg.IDGenMaxAttempts)
	clientSvc := service.NewClientService(clientRepo, accountRepo, ids, cfg.IDGenMaxAttempts)
	reportSvc := report.NewService(clientRepo, accountRepo, movementRepo, renderer, cfg.ReportConcurrency)

	health := handler.NewHealthHandler(db)

	var publisher service.Publisher
	if cfg.RedisURL != "" {
		rp, err := events.NewRedisPublisher(ctx, cfg.RedisURL, cfg.OutboxChannel, logging.Component("redis-publisher"))
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		defer rp.Close()
		health.WithCheck("redis", rp)
		publisher = rp
	} else {
		slog.Warn("REDIS_URL not set, movement events will only be logged")
		publisher = events.NewLogPublisher(logging.Component("log-publisher"))
	}

	dispatcher := service.NewOutboxDispatcher(
		db, outboxRepo, publisher, logging.Component("outbox-dispatcher"),
		cfg.OutboxPollInterval, cfg.OutboxBatchSize, cfg.OutboxMaxAttempts,
	)
	stopWorkers := startWorkers(ctx,
		dispatcher.Start,
		func(ctx context.Context) { sweepIdempotencyCache(ctx, idempotencyRepo) },
	)
	// runs before the deferred db and redis closes
	defer stopWorkers()

	router := newRouter(routerDeps{
		jwtSecret:   cfg.JWTSecret,
		health:      health,
		clients:     handler.NewClientHandler(clientSvc),
		accounts:    handler.NewAccountHandler(accountSvc),
		movements:   handler.NewMovementHandler(ledgerSvc),
		reports:     handler.NewReportHandler(reportSvc),
		idempotency: middleware.Idempotency(idempotencyRepo),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("run: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("run: shutdown: %w", err)
	}
	return nil
}

// startWorkers runs each worker in its own goroutine. The returned stop
// cancels them and blocks until all have returned.
func startWorkers(ctx context.Context, workers ...func(context.Context)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, work := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work(ctx)
		}()
	}
	return func() {
		cancel()
		wg.Wait()
	}
}

type expiredCleaner interface {
	CleanExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

func sweepIdempotencyCache(ctx context.Context, cache expiredCleaner) {
	log := logging.Component("idempotency-sweeper")
	ticker := time.NewTicker(idempotencySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cache.CleanExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Error("failed to clean idempotency cache", "error", err)
				continue
			}
			if n > 0 {
				log.Info("idempotency cache cleaned", "removed", n)
			}
		}
	}
}
