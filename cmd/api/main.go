package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/config"
	"github.com/GoSim-25-26J-441/folio-backend/internal/auth"
	authmw "github.com/GoSim-25-26J-441/folio-backend/internal/auth/middleware"
	"github.com/GoSim-25-26J-441/folio-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/folio-backend/internal/logging"
	portfolioshttp "github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/http"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/jobs"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/repository"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/service"
	"github.com/GoSim-25-26J-441/folio-backend/internal/slugs"
	"go.uber.org/zap"
)

const serviceName = "folio-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(&cfg.App)

	stores, err := bootstrap.OpenStores(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var verifier authmw.TokenVerifier
	if cfg.Firebase.AuthMode == "firebase" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return err
		}
		verifier = client
	} else {
		logger.Warn("AUTH_MODE=header: trusting X-User-Id, do not expose this instance")
	}

	bounds := slugs.Bounds{Min: cfg.Slug.MinLength, Max: cfg.Slug.MaxLength}
	views := bootstrap.NewViewCounter(stores.Portfolios, rdb)

	slugSvc := service.NewSlugService(stores.Portfolios, bounds, cfg.App.PublicBaseURL, logger)
	portfolioSvc := service.NewPortfolioService(stores.Portfolios, slugSvc, logger)
	resolver := service.NewResolver(stores.Portfolios, views, cfg.Views.IncrementTimeout, logger)

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Config:      cfg,
		Logger:      logger,
		Stores:      stores,
		Redis:       rdb,
		Verifier:    verifier,
		Portfolios:  portfolioshttp.New(portfolioSvc, slugSvc, resolver, logger),
	})

	var scheduler *jobs.Scheduler
	if rdb != nil {
		scheduler = jobs.NewScheduler(cfg.Views.FlushSchedule, views, logger)
		if err := scheduler.Start(); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	resolver.Wait()
	if n, err := views.Flush(shutdownCtx); errors.Is(err, repository.ErrFlushInProgress) {
		logger.Info("final view flush left to the running flush")
	} else if err != nil {
		logger.Error("final view flush", zap.Error(err))
	} else if n > 0 {
		logger.Info("final view flush", zap.Int("portfolios", n))
	}

	return nil
}
