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

type quizStore interface {
	CreateQuizWithItems(ctx context.Context, arg store.CreateQuizWithItemsParams) (pgtype.UUID, error)
	GetQuizForUser(ctx context.Context, arg store.GetQuizForUserParams) (store.QuizRow, error)
	UpdateQuizStatus(ctx context.Context, arg store.UpdateQuizStatusParams) error
	GetQuizItemForUser(ctx context.Context, arg store.GetQuizItemForUserParams) (store.QuizItemRow, error)
	SetQuizItemMarked(ctx context.Context, arg store.SetQuizItemMarkedParams) error
	ListQuizItemStates(ctx context.Context, quizID pgtype.UUID) ([]store.QuizItemStateRow, error)
	EndQuiz(ctx context.Context, arg store.EndQuizParams) (store.EndQuizResult, error)
	UpsertResponse(ctx context.Context, arg store.UpsertResponseParams) error
	GetResponseByQuizItem(ctx context.Context, quizItemID pgtype.UUID) (store.ResponseRow, error)
}

// QuizRepository contains DB helpers for quizzes, items, and responses.
type QuizRepository struct {
	store quizStore
}

// NewQuizRepository constructs a quiz repository.
func NewQuizRepository(store quizStore) *QuizRepository {
	return &QuizRepository{store: store}
}

// CreateWithItems persists a quiz plus ordered items in one transaction.
func (r *QuizRepository) CreateWithItems(ctx context.Context, userID uuid.UUID, questionIDs []uuid.UUID) (uuid.UUID, error) {
	pgIDs := make([]pgtype.UUID, len(questionIDs))
	for i, id := range questionIDs {
		pgIDs[i] = PgUUID(id)
	}
	quizID, err := r.store.CreateQuizWithItems(ctx, store.CreateQuizWithItemsParams{
		UserID:      PgUUID(userID),
		QuestionIDs: pgIDs,
	})
	if err != nil {
		return uuid.Nil, err
	}
	return UUID(quizID), nil
}

// GetForUser fetches a quiz owned by the user; ErrNotFound covers both
// missing and foreign quizzes.
func (r *QuizRepository) GetForUser(ctx context.Context, quizID, userID uuid.UUID) (store.QuizRow, error) {
	row, err := r.store.GetQuizForUser(ctx, store.GetQuizForUserParams{
		QuizID: PgUUID(quizID),
		UserID: PgUUID(userID),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return store.QuizRow{}, httperrors.ErrNotFound
	}
	return row, err
}

// UpdateStatus transitions a quiz status.
func (r *QuizRepository) UpdateStatus(ctx context.Context, quizID uuid.UUID, status string) error {
	return r.store.UpdateQuizStatus(ctx, store.UpdateQuizStatusParams{
		QuizID: PgUUID(quizID),
		Status: status,
	})
}

// GetItemForUser fetches a quiz item owned (via its quiz) by the user.
func (r *QuizRepository) GetItemForUser(ctx context.Context, quizItemID, userID uuid.UUID) (store.QuizItemRow, error) {
	row, err := r.store.GetQuizItemForUser(ctx, store.GetQuizItemForUserParams{
		QuizItemID: PgUUID(quizItemID),
		UserID:     PgUUID(userID),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return store.QuizItemRow{}, httperrors.ErrNotFound
	}
	return row, err
}

// SetItemMarked flips the marked flag on a quiz item.
func (r *QuizRepository) SetItemMarked(ctx context.Context, quizItemID uuid.UUID, marked bool) error {
	return r.store.SetQuizItemMarked(ctx, store.SetQuizItemMarkedParams{
		QuizItemID: PgUUID(quizItemID),
		Marked:     marked,
	})
}

// ItemStates lists a quiz's items with their current responses.
func (r *QuizRepository) ItemStates(ctx context.Context, quizID uuid.UUID) ([]store.QuizItemStateRow, error) {
	return r.store.ListQuizItemStates(ctx, PgUUID(quizID))
}

// End runs the transactional end-quiz omission batch.
func (r *QuizRepository) End(ctx context.Context, quizID, userID uuid.UUID) (store.EndQuizResult, error) {
	result, err := r.store.EndQuiz(ctx, store.EndQuizParams{
		QuizID: PgUUID(quizID),
		UserID: PgUUID(userID),
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return store.EndQuizResult{}, httperrors.ErrNotFound
	}
	return result, err
}

// UpsertResponse records or revises the answer for one quiz item.
func (r *QuizRepository) UpsertResponse(ctx context.Context, params store.UpsertResponseParams) error {
	return r.store.UpsertResponse(ctx, params)
}

// ResponseByItem returns the live response for an item, and whether
// one exists.
func (r *QuizRepository) ResponseByItem(ctx context.Context, quizItemID uuid.UUID) (store.ResponseRow, bool, error) {
	row, err := r.store.GetResponseByQuizItem(ctx, PgUUID(quizItemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ResponseRow{}, false, nil
	}
	if err != nil {
		return store.ResponseRow{}, false, err
	}
	return row, true, nil
}
