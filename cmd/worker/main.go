package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/config"
	"github.com/GoSim-25-26J-441/folio-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/folio-backend/internal/logging"
	"github.com/GoSim-25-26J-441/folio-backend/internal/slugs"
	"github.com/GoSim-25-26J-441/folio-backend/internal/storage/postgres"
	"go.uber.org/zap"
)

const usage = "usage: worker <migrate [up|down] | flush-views | slugify <name...>>"

func main() {
	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	switch os.Args[1] {
	case "slugify":
		runSlugify(os.Args[2:])
	case "migrate":
		withConfig(func(cfg *config.Config, logger *zap.Logger) error {
			return runMigrate(cfg, logger, os.Args[2:])
		})
	case "flush-views":
		withConfig(runFlushViews)
	default:
		log.Fatalf("unknown command: %s\n%s", os.Args[1], usage)
	}
}

func withConfig(fn func(*config.Config, *zap.Logger) error) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := fn(cfg, logger); err != nil {
		logger.Fatal("worker failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func runSlugify(args []string) {
	if len(args) == 0 {
		log.Fatal("usage: worker slugify <name...>")
	}
	fmt.Println(slugs.Generate(strings.Join(args, " ")))
}

func runMigrate(cfg *config.Config, logger *zap.Logger, args []string) error {
	if err := requireDatabase(&cfg.Database, "migrate"); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	direction := "up"
	if len(args) > 0 {
		direction = args[0]
	}

	switch direction {
	case "up":
		err = postgres.Migrate(db)
	case "down":
		err = postgres.MigrateDown(db)
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
	if err != nil {
		return err
	}

	logger.Info("migrations done", zap.String("direction", direction))
	return nil
}

func runFlushViews(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := checkFlushTarget(cfg); err != nil {
		return err
	}

	cfg.Database.AutoMigrate = false
	stores, err := bootstrap.OpenStores(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	rdb, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	n, err := bootstrap.NewViewCounter(stores.Portfolios, rdb).Flush(ctx)
	if err != nil {
		return err
	}

	logger.Info("views flushed", zap.Int("portfolios", n))
	return nil
}

func requireDatabase(cfg *config.DatabaseConfig, command string) error {
	if cfg.Driver == "memory" {
		return fmt.Errorf("%s needs a database, DB_DRIVER is memory", command)
	}
	return nil
}

// checkFlushTarget refuses to drain the buffer into a store that cannot hold
// the counts; flushed views are removed from Redis.
func checkFlushTarget(cfg *config.Config) error {
	if !cfg.Redis.Enabled() {
		return fmt.Errorf("flush-views needs REDIS_ADDR")
	}
	return requireDatabase(&cfg.Database, "flush-views")
}
