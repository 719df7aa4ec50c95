package bootstrap

import (
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/repository"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/service"
	"github.com/redis/go-redis/v9"
)

// NewViewCounter buffers views in Redis when a client is available and
// writes them straight to the store otherwise.
func NewViewCounter(store service.Store, rdb *redis.Client) service.ViewCounter {
	if rdb == nil {
		return service.NewDirectViews(store)
	}
	return service.NewBufferedViews(repository.NewViewBuffer(rdb), store)
}
