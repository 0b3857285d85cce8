package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/medqbank/qbank-platform/internal/db/store"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

type questionStore interface {
	FilterQuestionIDs(ctx context.Context, arg store.FilterQuestionIDsParams) ([]pgtype.UUID, error)
	GetQuestion(ctx context.Context, questionID pgtype.UUID) (store.QuestionRow, error)
	GetChoicesByQuestion(ctx context.Context, questionID pgtype.UUID) ([]store.ChoiceRow, error)
	ListUserQuizItems(ctx context.Context, userID pgtype.UUID) ([]store.UserQuizItemRow, error)
	ListUserResponses(ctx context.Context, userID pgtype.UUID) ([]store.UserResponseRow, error)
	GetLatestResponseByQuestion(ctx context.Context, questionID pgtype.UUID) (store.UserResponseRow, error)
}

// QuestionRepository wraps store queries for question and history access.
type QuestionRepository struct {
	store questionStore
}

// NewQuestionRepository constructs a question repository.
func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// FilterIDs returns ids of questions satisfying the tag filters.
func (r *QuestionRepository) FilterIDs(ctx context.Context, params store.FilterQuestionIDsParams) ([]uuid.UUID, error) {
	rows, err := r.store.FilterQuestionIDs(ctx, params)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = UUID(row)
	}
	return ids, nil
}

// Get fetches a question by id.
func (r *QuestionRepository) Get(ctx context.Context, questionID uuid.UUID) (store.QuestionRow, error) {
	row, err := r.store.GetQuestion(ctx, PgUUID(questionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.QuestionRow{}, httperrors.ErrNotFound
	}
	return row, err
}

// Choices returns all answer choices for a question.
func (r *QuestionRepository) Choices(ctx context.Context, questionID uuid.UUID) ([]store.ChoiceRow, error) {
	return r.store.GetChoicesByQuestion(ctx, PgUUID(questionID))
}

// UserQuizItems lists every question the user has ever been served,
// with its marked flag.
func (r *QuestionRepository) UserQuizItems(ctx context.Context, userID uuid.UUID) ([]store.UserQuizItemRow, error) {
	return r.store.ListUserQuizItems(ctx, PgUUID(userID))
}

// UserResponses lists the user's answer history, newest first.
func (r *QuestionRepository) UserResponses(ctx context.Context, userID uuid.UUID) ([]store.UserResponseRow, error) {
	return r.store.ListUserResponses(ctx, PgUUID(userID))
}

// LatestResponse returns the newest response for a question across all
// quizzes, and whether one exists.
func (r *QuestionRepository) LatestResponse(ctx context.Context, questionID uuid.UUID) (store.UserResponseRow, bool, error) {
	row, err := r.store.GetLatestResponseByQuestion(ctx, PgUUID(questionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.UserResponseRow{}, false, nil
	}
	if err != nil {
		return store.UserResponseRow{}, false, err
	}
	return row, true, nil
}
