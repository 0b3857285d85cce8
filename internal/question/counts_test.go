package question

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/medqbank/qbank-platform/internal/db/store"
	"github.com/medqbank/qbank-platform/internal/mode"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

type stubCache struct {
	entries map[string]map[string]int
	getErr  error
	setErr  error
	sets    int
}

func newStubCache() *stubCache {
	return &stubCache{entries: map[string]map[string]int{}}
}

func (c *stubCache) Get(_ context.Context, key string) (map[string]int, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	counts, ok := c.entries[key]
	return counts, ok, nil
}

func (c *stubCache) Set(_ context.Context, key string, counts map[string]int) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.sets++
	c.entries[key] = counts
	return nil
}

func newCountsService(repo *stubRepo, cache CountsCache) *Service {
	return NewService(repo, cache, ServiceOptions{
		MinTake: 1,
		MaxTake: 40,
		Shuffle: identityShuffle,
	}, zerolog.Nop())
}

func TestModeCountsClassifiesScope(t *testing.T) {
	answered := uuid.New()
	missed := uuid.New()
	servedOnly := uuid.New()
	flagged := uuid.New()
	fresh := uuid.New()

	repo := &stubRepo{
		ids: []uuid.UUID{answered, missed, servedOnly, flagged, fresh},
		items: []store.UserQuizItemRow{
			{QuestionID: pgID(answered)},
			{QuestionID: pgID(missed)},
			{QuestionID: pgID(servedOnly)},
			{QuestionID: pgID(flagged), Marked: true},
		},
		responses: []store.UserResponseRow{
			{QuestionID: pgID(answered), ChoiceID: pgID(uuid.New()), IsCorrect: pgtype.Bool{Bool: true, Valid: true}},
			{QuestionID: pgID(missed), ChoiceID: pgID(uuid.New()), IsCorrect: pgtype.Bool{Bool: false, Valid: true}},
			{QuestionID: pgID(flagged), ChoiceID: pgID(uuid.New()), IsCorrect: pgtype.Bool{Bool: true, Valid: true}},
		},
	}
	svc := newCountsService(repo, nil)

	counts, err := svc.ModeCounts(context.Background(), uuid.New(), []string{"medicine"})
	assert.NoError(t, err)
	assert.Equal(t, map[string]int{
		string(mode.Unused):    1,
		string(mode.Correct):   1,
		string(mode.Incorrect): 1,
		string(mode.Omitted):   1,
		string(mode.Marked):    1,
	}, counts)
}

func TestModeCountsRequiresScope(t *testing.T) {
	repo := &stubRepo{}
	svc := newCountsService(repo, nil)

	_, err := svc.ModeCounts(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, httperrors.ErrValidation)
	assert.Zero(t, repo.filterCalls)
}

func TestModeCountsCacheHitSkipsStore(t *testing.T) {
	repo := &stubRepo{}
	cache := newStubCache()
	svc := newCountsService(repo, cache)
	userID := uuid.New()

	want := map[string]int{string(mode.Unused): 7}
	cache.entries[countsKey("modecounts", userID, []string{"medicine"})] = want

	got, err := svc.ModeCounts(context.Background(), userID, []string{"Medicine"})
	assert.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Zero(t, repo.filterCalls, "cache hit must not touch the store")
}

func TestModeCountsCacheErrorFallsThrough(t *testing.T) {
	repo := &stubRepo{ids: []uuid.UUID{uuid.New()}}
	cache := newStubCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	svc := newCountsService(repo, cache)

	counts, err := svc.ModeCounts(context.Background(), uuid.New(), []string{"medicine"})
	assert.NoError(t, err, "a broken cache degrades to direct computation")
	assert.Equal(t, 1, counts[string(mode.Unused)])
	assert.Equal(t, 1, repo.filterCalls)
}

func TestModeCountsPopulatesCache(t *testing.T) {
	repo := &stubRepo{ids: []uuid.UUID{uuid.New()}}
	cache := newStubCache()
	svc := newCountsService(repo, cache)
	userID := uuid.New()

	_, err := svc.ModeCounts(context.Background(), userID, []string{"medicine"})
	assert.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	_, err = svc.ModeCounts(context.Background(), userID, []string{"medicine"})
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.filterCalls, "second call is served from cache")
}

func TestFilteredCounts(t *testing.T) {
	missed := uuid.New()
	fresh := uuid.New()
	repo := &stubRepo{
		ids: []uuid.UUID{missed, fresh},
		items: []store.UserQuizItemRow{
			{QuestionID: pgID(missed)},
		},
		responses: []store.UserResponseRow{
			{QuestionID: pgID(missed), ChoiceID: pgID(uuid.New()), IsCorrect: pgtype.Bool{Bool: false, Valid: true}},
		},
	}
	svc := newCountsService(repo, nil)

	n, err := svc.FilteredCounts(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Modes:     []mode.Mode{mode.Incorrect},
		Take:      10,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.FilteredCounts(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      10,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, n, "no mode filter counts the whole candidate set")
}

func TestFilteredCountsRequiresScope(t *testing.T) {
	svc := newCountsService(&stubRepo{}, nil)

	_, err := svc.FilteredCounts(context.Background(), Criteria{UserID: uuid.New(), Take: 10})
	assert.ErrorIs(t, err, httperrors.ErrValidation)
}

func TestCountsKeyEscapesDelimiters(t *testing.T) {
	userID := uuid.New()

	// A value containing the join characters must not read as two values
	// or bleed into the next dimension.
	a := countsKey("filteredcounts", userID, []string{"medicine"}, []string{"uworld:step2,amboss"}, nil)
	b := countsKey("filteredcounts", userID, []string{"medicine"}, []string{"uworld"}, []string{"step2", "amboss"})
	assert.NotEqual(t, a, b)

	c := countsKey("filteredcounts", userID, []string{"medicine"}, []string{"uworld", "step2"}, nil)
	d := countsKey("filteredcounts", userID, []string{"medicine"}, []string{"uworld,step2"}, nil)
	assert.NotEqual(t, c, d)
}

func TestFilteredCountsKeyedByModeFilter(t *testing.T) {
	repo := &stubRepo{ids: []uuid.UUID{uuid.New()}}
	cache := newStubCache()
	svc := newCountsService(repo, cache)
	userID := uuid.New()

	_, err := svc.FilteredCounts(context.Background(), Criteria{
		UserID:    userID,
		ScopeKeys: []string{"medicine"},
		Take:      10,
	})
	assert.NoError(t, err)

	_, err = svc.FilteredCounts(context.Background(), Criteria{
		UserID:    userID,
		ScopeKeys: []string{"medicine"},
		Modes:     []mode.Mode{mode.Unused},
		Take:      10,
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, cache.sets, "different mode filters use different cache keys")
}
