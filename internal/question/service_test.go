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

type stubRepo struct {
	ids       []uuid.UUID
	items     []store.UserQuizItemRow
	responses []store.UserResponseRow

	filterErr    error
	filterCalls  int
	lastParams   store.FilterQuestionIDsParams
	historyCalls int
}

func (s *stubRepo) FilterIDs(_ context.Context, params store.FilterQuestionIDsParams) ([]uuid.UUID, error) {
	s.filterCalls++
	s.lastParams = params
	if s.filterErr != nil {
		return nil, s.filterErr
	}
	out := make([]uuid.UUID, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

func (s *stubRepo) UserQuizItems(_ context.Context, _ uuid.UUID) ([]store.UserQuizItemRow, error) {
	s.historyCalls++
	return s.items, nil
}

func (s *stubRepo) UserResponses(_ context.Context, _ uuid.UUID) ([]store.UserResponseRow, error) {
	return s.responses, nil
}

// identityShuffle keeps selection deterministic in tests.
func identityShuffle(int, func(i, j int)) {}

func newTestService(repo *stubRepo) *Service {
	return NewService(repo, nil, ServiceOptions{
		MinTake: 1,
		MaxTake: 40,
		Shuffle: identityShuffle,
	}, zerolog.Nop())
}

func pgID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: [16]byte(id), Valid: true}
}

func TestSelectRequiresScope(t *testing.T) {
	repo := &stubRepo{ids: []uuid.UUID{uuid.New()}}
	svc := newTestService(repo)

	tests := []struct {
		name  string
		scope []string
	}{
		{"nil scope", nil},
		{"blank scope values", []string{"  ", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Select(context.Background(), Criteria{
				UserID:    uuid.New(),
				ScopeKeys: tt.scope,
				Take:      5,
			})
			assert.ErrorIs(t, err, httperrors.ErrValidation)
		})
	}
	assert.Zero(t, repo.filterCalls, "validation failures must not reach the store")
	assert.Zero(t, repo.historyCalls)
}

func TestSelectRejectsUnknownModeFilter(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo)

	_, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Modes:     []mode.Mode{"bookmarked"},
		Take:      5,
	})
	assert.ErrorIs(t, err, httperrors.ErrValidation)
	assert.Zero(t, repo.filterCalls)
}

func TestSelectNoMatches(t *testing.T) {
	svc := newTestService(&stubRepo{})

	_, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      5,
	})
	assert.ErrorIs(t, err, httperrors.ErrNoMatch)
}

func TestSelectNormalizesFilterValues(t *testing.T) {
	repo := &stubRepo{ids: []uuid.UUID{uuid.New()}}
	svc := newTestService(repo)

	_, err := svc.Select(context.Background(), Criteria{
		UserID:      uuid.New(),
		ScopeKeys:   []string{" Medicine ", "medicine", "SURGERY"},
		Resources:   []string{"UWorld", ""},
		Disciplines: []string{" Pathology"},
		Take:        5,
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"medicine", "surgery"}, repo.lastParams.ScopeValues)
	assert.Equal(t, []string{"uworld"}, repo.lastParams.ResourceValues)
	assert.Equal(t, []string{"pathology"}, repo.lastParams.DisciplineValues)
}

func TestSelectTruncatesToTake(t *testing.T) {
	ids := make([]uuid.UUID, 10)
	for i := range ids {
		ids[i] = uuid.New()
	}
	repo := &stubRepo{ids: ids}
	svc := newTestService(repo)

	got, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      4,
	})
	assert.NoError(t, err)
	assert.Equal(t, ids[:4], got)
}

func TestSelectPartialFulfillment(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	svc := newTestService(&stubRepo{ids: ids})

	got, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      20,
	})
	assert.NoError(t, err, "fewer matches than requested is still success")
	assert.ElementsMatch(t, ids, got)
}

func TestSelectClampsTake(t *testing.T) {
	ids := make([]uuid.UUID, 50)
	for i := range ids {
		ids[i] = uuid.New()
	}
	svc := newTestService(&stubRepo{ids: ids})

	got, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      500,
	})
	assert.NoError(t, err)
	assert.Len(t, got, 40, "take clamped to the configured maximum")

	got, err = svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      -3,
	})
	assert.NoError(t, err)
	assert.Len(t, got, 1, "non-positive take falls to the default, here the minimum")
}

func TestSelectAppliesDefaultTake(t *testing.T) {
	ids := make([]uuid.UUID, 30)
	for i := range ids {
		ids[i] = uuid.New()
	}
	svc := NewService(&stubRepo{ids: ids}, nil, ServiceOptions{
		MinTake:     1,
		MaxTake:     40,
		DefaultTake: 10,
		Shuffle:     identityShuffle,
	}, zerolog.Nop())

	got, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
	})
	assert.NoError(t, err)
	assert.Len(t, got, 10, "an omitted count uses the configured default")
}

func TestSelectReturnsUniqueIDs(t *testing.T) {
	ids := make([]uuid.UUID, 8)
	for i := range ids {
		ids[i] = uuid.New()
	}
	svc := newTestService(&stubRepo{ids: ids})

	got, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      8,
	})
	assert.NoError(t, err)
	seen := make(map[uuid.UUID]struct{}, len(got))
	for _, id := range got {
		_, dup := seen[id]
		assert.False(t, dup, "selection must not repeat a question")
		seen[id] = struct{}{}
	}
}

func TestSelectModeFilter(t *testing.T) {
	answered := uuid.New()  // answered correctly
	missed := uuid.New()    // answered incorrectly
	servedOnly := uuid.New() // in a quiz, never answered
	flagged := uuid.New()   // answered correctly but marked
	fresh := uuid.New()     // never served

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

	tests := []struct {
		name  string
		modes []mode.Mode
		want  []uuid.UUID
	}{
		{"unused excludes served", []mode.Mode{mode.Unused}, []uuid.UUID{fresh}},
		{"incorrect", []mode.Mode{mode.Incorrect}, []uuid.UUID{missed}},
		{"omitted", []mode.Mode{mode.Omitted}, []uuid.UUID{servedOnly}},
		{"marked wins over correct", []mode.Mode{mode.Marked}, []uuid.UUID{flagged}},
		{"correct excludes flagged", []mode.Mode{mode.Correct}, []uuid.UUID{answered}},
		{"union of modes", []mode.Mode{mode.Unused, mode.Incorrect}, []uuid.UUID{missed, fresh}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(repo)
			got, err := svc.Select(context.Background(), Criteria{
				UserID:    uuid.New(),
				ScopeKeys: []string{"medicine"},
				Modes:     tt.modes,
				Take:      40,
			})
			assert.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestSelectNewestResponseWins(t *testing.T) {
	questionID := uuid.New()
	repo := &stubRepo{
		ids: []uuid.UUID{questionID},
		items: []store.UserQuizItemRow{
			{QuestionID: pgID(questionID)},
		},
		// Newest first: latest attempt was correct, an older one wrong.
		responses: []store.UserResponseRow{
			{QuestionID: pgID(questionID), ChoiceID: pgID(uuid.New()), IsCorrect: pgtype.Bool{Bool: true, Valid: true}},
			{QuestionID: pgID(questionID), ChoiceID: pgID(uuid.New()), IsCorrect: pgtype.Bool{Bool: false, Valid: true}},
		},
	}
	svc := newTestService(repo)

	got, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Modes:     []mode.Mode{mode.Correct},
		Take:      10,
	})
	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{questionID}, got)

	_, err = svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Modes:     []mode.Mode{mode.Incorrect},
		Take:      10,
	})
	assert.ErrorIs(t, err, httperrors.ErrNoMatch)
}

func TestSelectSkipsHistoryWithoutModeFilters(t *testing.T) {
	repo := &stubRepo{ids: []uuid.UUID{uuid.New()}}
	svc := newTestService(repo)

	_, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      5,
	})
	assert.NoError(t, err)
	assert.Zero(t, repo.historyCalls, "no mode filters means no history load")
}

func TestSelectPropagatesStoreError(t *testing.T) {
	repo := &stubRepo{filterErr: errors.New("connection refused")}
	svc := newTestService(repo)

	_, err := svc.Select(context.Background(), Criteria{
		UserID:    uuid.New(),
		ScopeKeys: []string{"medicine"},
		Take:      5,
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, httperrors.ErrNoMatch)
}
