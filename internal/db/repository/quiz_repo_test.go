package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/medqbank/qbank-platform/internal/db/store"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

type mockQuizStore struct {
	mock.Mock
}

func (m *mockQuizStore) CreateQuizWithItems(ctx context.Context, arg store.CreateQuizWithItemsParams) (pgtype.UUID, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(pgtype.UUID), args.Error(1)
}

func (m *mockQuizStore) GetQuizForUser(ctx context.Context, arg store.GetQuizForUserParams) (store.QuizRow, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(store.QuizRow), args.Error(1)
}

func (m *mockQuizStore) UpdateQuizStatus(ctx context.Context, arg store.UpdateQuizStatusParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockQuizStore) GetQuizItemForUser(ctx context.Context, arg store.GetQuizItemForUserParams) (store.QuizItemRow, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(store.QuizItemRow), args.Error(1)
}

func (m *mockQuizStore) SetQuizItemMarked(ctx context.Context, arg store.SetQuizItemMarkedParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockQuizStore) ListQuizItemStates(ctx context.Context, quizID pgtype.UUID) ([]store.QuizItemStateRow, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).([]store.QuizItemStateRow), args.Error(1)
}

func (m *mockQuizStore) EndQuiz(ctx context.Context, arg store.EndQuizParams) (store.EndQuizResult, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(store.EndQuizResult), args.Error(1)
}

func (m *mockQuizStore) UpsertResponse(ctx context.Context, arg store.UpsertResponseParams) error {
	return m.Called(ctx, arg).Error(0)
}

func (m *mockQuizStore) GetResponseByQuizItem(ctx context.Context, quizItemID pgtype.UUID) (store.ResponseRow, error) {
	args := m.Called(ctx, quizItemID)
	return args.Get(0).(store.ResponseRow), args.Error(1)
}

func TestQuizRepository_CreateWithItems(t *testing.T) {
	st := new(mockQuizStore)
	repo := NewQuizRepository(st)

	userID := UUID(uuidFromByte(1))
	questionIDs := []uuid.UUID{UUID(uuidFromByte(2)), UUID(uuidFromByte(3))}

	st.On("CreateQuizWithItems", mock.Anything, store.CreateQuizWithItemsParams{
		UserID:      uuidFromByte(1),
		QuestionIDs: []pgtype.UUID{uuidFromByte(2), uuidFromByte(3)},
	}).Return(uuidFromByte(9), nil)

	quizID, err := repo.CreateWithItems(context.Background(), userID, questionIDs)
	assert.NoError(t, err)
	assert.Equal(t, UUID(uuidFromByte(9)), quizID)
	st.AssertExpectations(t)
}

func TestQuizRepository_GetForUserNotFound(t *testing.T) {
	st := new(mockQuizStore)
	repo := NewQuizRepository(st)

	st.On("GetQuizForUser", mock.Anything, store.GetQuizForUserParams{
		QuizID: uuidFromByte(4),
		UserID: uuidFromByte(5),
	}).Return(store.QuizRow{}, pgx.ErrNoRows)

	_, err := repo.GetForUser(context.Background(), UUID(uuidFromByte(4)), UUID(uuidFromByte(5)))
	assert.ErrorIs(t, err, httperrors.ErrNotFound, "foreign and missing quizzes look identical")
}

func TestQuizRepository_GetItemForUser(t *testing.T) {
	st := new(mockQuizStore)
	repo := NewQuizRepository(st)

	expect := store.QuizItemRow{
		ID:         uuidFromByte(6),
		QuestionID: uuidFromByte(7),
		QuizStatus: store.QuizStatusActive,
	}
	st.On("GetQuizItemForUser", mock.Anything, store.GetQuizItemForUserParams{
		QuizItemID: uuidFromByte(6),
		UserID:     uuidFromByte(8),
	}).Return(expect, nil)

	got, err := repo.GetItemForUser(context.Background(), UUID(uuidFromByte(6)), UUID(uuidFromByte(8)))
	assert.NoError(t, err)
	assert.Equal(t, expect, got)
}

func TestQuizRepository_End(t *testing.T) {
	st := new(mockQuizStore)
	repo := NewQuizRepository(st)

	st.On("EndQuiz", mock.Anything, store.EndQuizParams{
		QuizID: uuidFromByte(10),
		UserID: uuidFromByte(11),
	}).Return(store.EndQuizResult{Omitted: 3}, nil)

	result, err := repo.End(context.Background(), UUID(uuidFromByte(10)), UUID(uuidFromByte(11)))
	assert.NoError(t, err)
	assert.Equal(t, int64(3), result.Omitted)
}

func TestQuizRepository_EndNotFound(t *testing.T) {
	st := new(mockQuizStore)
	repo := NewQuizRepository(st)

	st.On("EndQuiz", mock.Anything, mock.Anything).Return(store.EndQuizResult{}, pgx.ErrNoRows)

	_, err := repo.End(context.Background(), UUID(uuidFromByte(12)), UUID(uuidFromByte(13)))
	assert.ErrorIs(t, err, httperrors.ErrNotFound)
}

func TestQuizRepository_ResponseByItem(t *testing.T) {
	st := new(mockQuizStore)
	repo := NewQuizRepository(st)

	st.On("GetResponseByQuizItem", mock.Anything, uuidFromByte(14)).Return(store.ResponseRow{}, pgx.ErrNoRows)

	_, found, err := repo.ResponseByItem(context.Background(), UUID(uuidFromByte(14)))
	assert.NoError(t, err)
	assert.False(t, found)
}
