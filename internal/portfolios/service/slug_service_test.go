package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/domain"
	"github.com/GoSim-25-26J-441/folio-backend/internal/portfolios/repository"
	"github.com/GoSim-25-26J-441/folio-backend/internal/slugs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlugService(t *testing.T) (*SlugService, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	svc := NewSlugService(repo, slugs.DefaultBounds, "https://folio.example/p/", nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo
}

func seedPortfolio(t *testing.T, repo *repository.MemoryRepository, owner, defaultSlug string, custom ...string) *domain.Portfolio {
	t.Helper()
	p := &domain.Portfolio{
		ID:           uuid.NewString(),
		OwnerID:      owner,
		TemplateKind: domain.TemplateModern,
		DefaultSlug:  defaultSlug,
		IsPublic:     true,
	}
	if len(custom) > 0 {
		p.CustomSlug = &custom[0]
	}
	require.NoError(t, repo.Insert(context.Background(), p))
	return p
}

func suggestionSlugs(in []domain.Suggestion) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.Slug
	}
	return out
}

func TestSlugService_Suggest(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestSlugService(t)
	owner := seedPortfolio(t, repo, "user-a", "janedoe")
	seedPortfolio(t, repo, "user-b", "bob", "janedoe-2")

	t.Run("ordered and checked", func(t *testing.T) {
		got, err := svc.Suggest(ctx, "janedoe", "")
		require.NoError(t, err)

		assert.Equal(t, []string{
			"janedoe", "janedoe-1", "janedoe-2", "janedoe-3", "janedoe-4", "janedoe-5",
			"janedoe-portfolio", "janedoe-dev", "janedoe-2026", "janedoe-official",
		}, suggestionSlugs(got))

		assert.True(t, got[0].IsOriginal)
		assert.False(t, got[0].Available)
		assert.True(t, got[1].Available)
		assert.False(t, got[2].Available, "custom slug of another portfolio is taken")
		assert.True(t, got[9].Available)
	})

	t.Run("exclusion frees own slug", func(t *testing.T) {
		got, err := svc.Suggest(ctx, "janedoe", owner.ID)
		require.NoError(t, err)
		assert.True(t, got[0].Available)
		assert.False(t, got[2].Available)
	})

	t.Run("free text base is generated first", func(t *testing.T) {
		got, err := svc.Suggest(ctx, "Jane Q. Public!!", "")
		require.NoError(t, err)
		assert.Equal(t, "jane-q-public", got[0].Slug)
		assert.Len(t, got, slugs.MaxSuggestions)
	})
}

func TestSlugService_Check(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestSlugService(t)
	seedPortfolio(t, repo, "user-a", "janedoe")

	res, err := svc.Check(ctx, "Jane--Doe", "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, string(slugs.RuleConsecutiveHyphens), res.Rule)

	res, err = svc.Check(ctx, " JaneDoe ", "")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "janedoe", res.Slug)
	assert.False(t, res.Available)
	assert.NotEmpty(t, res.Suggestions)

	res, err = svc.Check(ctx, "someone-else", "")
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.Empty(t, res.Suggestions)
}

func TestSlugService_ApplyCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("from preferred name", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2")

		got, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionCreate, PreferredName: "Jane Doe"})
		require.NoError(t, err)
		require.NotNil(t, got.CustomSlug)
		assert.Equal(t, "jane-doe", *got.CustomSlug)
		assert.Equal(t, "jane-doe-x1y2", got.DefaultSlug)
		assert.Equal(t, "https://folio.example/p/jane-doe", svc.ShareableLink(got))
	})

	t.Run("explicit custom slug is normalised", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2")

		got, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionCreate, CustomSlug: " JaneDoe "})
		require.NoError(t, err)
		assert.Equal(t, "janedoe", got.ActiveSlug())
	})

	t.Run("invalid format names the rule", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2")

		_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionCreate, CustomSlug: "-jane"})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, string(slugs.RuleEdgeHyphen), ve.Rule)
	})

	t.Run("missing input", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2")

		_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionCreate})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, ruleRequired, ve.Rule)
	})

	t.Run("own default slug is rejected", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe")

		_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionCreate, CustomSlug: "jane-doe"})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, ruleSameAsDefault, ve.Rule)
	})

	t.Run("slug held by another portfolio conflicts", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		seedPortfolio(t, repo, "user-b", "janedoe")
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2")

		_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionCreate, CustomSlug: "janedoe"})
		var ce *domain.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.True(t, errors.Is(err, domain.ErrSlugTaken))
		assert.Equal(t, "janedoe", ce.TakenSlug)
		require.Len(t, ce.Suggestions, slugs.MaxSuggestions)
		assert.Equal(t, "janedoe-1", ce.Suggestions[1].Slug)
		assert.True(t, ce.Suggestions[1].Available)

		unchanged, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, unchanged.CustomSlug)
	})

	t.Run("not allowed when custom slug exists", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2", "jane")

		_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionCreate, CustomSlug: "janedoe"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestSlugService_ApplyUpdateAndRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("update to own current slug is a no-op", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2", "jane")

		got, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionUpdate, CustomSlug: "jane"})
		require.NoError(t, err)
		assert.Equal(t, "jane", got.ActiveSlug())
	})

	t.Run("update releases the old slug", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2", "jane")

		got, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionUpdate, CustomSlug: "jane-codes"})
		require.NoError(t, err)
		assert.Equal(t, "jane-codes", got.ActiveSlug())

		ok, err := svc.IsAvailable(ctx, "jane", "")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("update to another default slug conflicts", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		seedPortfolio(t, repo, "user-b", "bob-smith")
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2", "jane")

		_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionUpdate, CustomSlug: "bob-smith"})
		var ce *domain.ConflictError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "bob-smith", ce.TakenSlug)
		assert.Equal(t, "bob-smith-official", ce.Suggestions[len(ce.Suggestions)-1].Slug)
	})

	t.Run("update without custom slug", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2")

		_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionUpdate, CustomSlug: "jane"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("remove reverts to default", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2", "jane")

		got, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionRemove})
		require.NoError(t, err)
		assert.Nil(t, got.CustomSlug)
		assert.Equal(t, "jane-doe-x1y2", got.ActiveSlug())

		_, err = svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionRemove})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("unknown action", func(t *testing.T) {
		svc, repo := newTestSlugService(t)
		p := seedPortfolio(t, repo, "user-a", "jane-doe-x1y2")

		_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: "rename"})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, ruleUnknownAction, ve.Rule)
	})
}

func TestSlugService_ApplyAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestSlugService(t)
	p := seedPortfolio(t, repo, "user-a", "jane-doe")
	cmd := SlugCommand{Action: SlugActionCreate, CustomSlug: "jane"}

	_, err := svc.Apply(ctx, "", p.ID, cmd)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = svc.Apply(ctx, "user-b", p.ID, cmd)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Apply(ctx, "user-a", "not-a-uuid", cmd)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Apply(ctx, "user-a", uuid.NewString(), cmd)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSlugService_ConcurrentCreateSameSlug(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestSlugService(t)
	first := seedPortfolio(t, repo, "user-a", "jane-a1b2")
	second := seedPortfolio(t, repo, "user-b", "jane-c3d4")

	type outcome struct {
		p   *domain.Portfolio
		err error
	}
	results := make([]outcome, 2)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i, target := range []*domain.Portfolio{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			p, err := svc.Apply(ctx, target.OwnerID, target.ID, SlugCommand{Action: SlugActionCreate, CustomSlug: "janedoe"})
			results[i] = outcome{p: p, err: err}
		}()
	}
	close(start)
	wg.Wait()

	var wins, conflicts int
	for _, r := range results {
		if r.err == nil {
			wins++
			assert.Equal(t, "janedoe", r.p.ActiveSlug())
			continue
		}

		var ce *domain.ConflictError
		require.ErrorAs(t, r.err, &ce)
		conflicts++
		assert.Equal(t,
			[]string{"janedoe-1", "janedoe-2", "janedoe-3", "janedoe-4", "janedoe-5"},
			suggestionSlugs(ce.Suggestions[1:6]))
		for _, s := range ce.Suggestions[1:6] {
			assert.True(t, s.Available)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, conflicts)
}

// lateClaimStore passes the availability check for slug but rejects the
// write, as when another request commits the same custom slug in between.
type lateClaimStore struct {
	*repository.MemoryRepository
	slug string
}

func (s *lateClaimStore) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	if slug == s.slug {
		return false, nil
	}
	return s.MemoryRepository.SlugTaken(ctx, slug, excludeID)
}

func (s *lateClaimStore) SetCustomSlug(ctx context.Context, id string, slug *string) (*domain.Portfolio, error) {
	if slug != nil && *slug == s.slug {
		return nil, domain.ErrSlugTaken
	}
	return s.MemoryRepository.SetCustomSlug(ctx, id, slug)
}

func TestSlugService_WriteTimeCollisionIsConflict(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	store := &lateClaimStore{MemoryRepository: repo, slug: "janedoe"}
	svc := NewSlugService(store, slugs.DefaultBounds, "https://folio.example/p/", nil)
	p := seedPortfolio(t, repo, "user-a", "jane-a1b2")

	_, err := svc.Apply(ctx, "user-a", p.ID, SlugCommand{Action: SlugActionCreate, CustomSlug: "janedoe"})

	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "janedoe", ce.TakenSlug)
	require.Len(t, ce.Suggestions, slugs.MaxSuggestions)
	assert.Equal(t,
		[]string{"janedoe-1", "janedoe-2", "janedoe-3", "janedoe-4", "janedoe-5"},
		suggestionSlugs(ce.Suggestions[1:6]))
	for _, s := range ce.Suggestions[1:6] {
		assert.True(t, s.Available, s.Slug)
	}

	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.CustomSlug)
}
