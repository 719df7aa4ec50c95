package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GoSim-25-26J-441/folio-backend/config"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/repository"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/service"
	"github.com/GoSim-25-26J-441/folio-backend/internal/storage/postgres"
	"github.com/GoSim-25-26J-441/folio-backend/internal/users"
	"go.uber.org/zap"
)

// Stores are the persistence backends selected by DB_DRIVER.
type Stores struct {
	DB         *sql.DB // nil with DB_DRIVER=memory
	Portfolios service.Store
	Users      users.Store
}

// OpenStores connects to Postgres (running migrations when enabled) or, with
// DB_DRIVER=memory, builds in-process stores.
func OpenStores(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*Stores, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory stores; data is lost on restart")
		return &Stores{
			Portfolios: repository.NewMemoryRepository(),
			Users:      users.NewMemoryRepo(),
		}, nil
	}

	db, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	return &Stores{
		DB:         db,
		Portfolios: repository.NewPortfolioRepository(db),
		Users:      users.NewRepo(db),
	}, nil
}

// Close releases the database pool, if any.
func (s *Stores) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
