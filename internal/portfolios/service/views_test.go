package service

import (
	"context"
	"testing"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/repository"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedViews_FlushAppliesToStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := repository.NewMemoryRepository()
	views := NewBufferedViews(repository.NewViewBuffer(client), repo)
	resolver := NewResolver(repo, views, 0, nil)
	p := seedPortfolio(t, repo, "user-a", "jane-doe")

	for i := 0; i < 3; i++ {
		_, err := resolver.Resolve(ctx, "jane-doe")
		require.NoError(t, err)
	}
	resolver.Wait()

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stored.ViewCount, "views stay buffered until flushed")

	flushed, err := views.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, flushed)

	stored, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.ViewCount)
}

func TestDirectViews(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	views := NewDirectViews(repo)
	p := seedPortfolio(t, repo, "user-a", "jane-doe")

	require.NoError(t, views.RecordView(ctx, p.ID))
	n, err := views.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ViewCount)
}
