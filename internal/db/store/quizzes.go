package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Quiz lifecycle statuses as stored in quizzes.status.
const (
	QuizStatusActive    = "Active"
	QuizStatusSuspended = "Suspended"
	QuizStatusEnded     = "Ended"
)

// QuizRow is the quiz header record.
type QuizRow struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	Status    string
	CreatedAt pgtype.Timestamptz
}

// CreateQuizWithItemsParams creates one quiz plus its ordered items.
type CreateQuizWithItemsParams struct {
	UserID      pgtype.UUID
	QuestionIDs []pgtype.UUID
}

// CreateQuizWithItems atomically inserts a quiz and one item per
// question id, preserving order. Either everything lands or nothing does.
func (s *Store) CreateQuizWithItems(ctx context.Context, arg CreateQuizWithItemsParams) (pgtype.UUID, error) {
	var quizID pgtype.UUID

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return quizID, mapErr(err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
INSERT INTO quizzes (user_id, status) VALUES ($1, $2) RETURNING id`,
		arg.UserID, QuizStatusActive).Scan(&quizID)
	if err != nil {
		return quizID, mapErr(err)
	}

	batch := &pgx.Batch{}
	for i, questionID := range arg.QuestionIDs {
		batch.Queue(`
INSERT INTO quiz_items (quiz_id, question_id, ord) VALUES ($1, $2, $3)`,
			quizID, questionID, i)
	}
	results := tx.SendBatch(ctx, batch)
	for range arg.QuestionIDs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return pgtype.UUID{}, fmt.Errorf("insert quiz item: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return pgtype.UUID{}, mapErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return pgtype.UUID{}, mapErr(err)
	}
	return quizID, nil
}

// GetQuizForUserParams identifies a quiz by id and owner.
type GetQuizForUserParams struct {
	QuizID pgtype.UUID
	UserID pgtype.UUID
}

// GetQuizForUser fetches a quiz only when it belongs to the user;
// pgx.ErrNoRows otherwise (missing and foreign quizzes look alike).
func (s *Store) GetQuizForUser(ctx context.Context, arg GetQuizForUserParams) (QuizRow, error) {
	var row QuizRow
	err := s.pool.QueryRow(ctx, `
SELECT id, user_id, status, created_at FROM quizzes WHERE id = $1 AND user_id = $2`,
		arg.QuizID, arg.UserID).Scan(&row.ID, &row.UserID, &row.Status, &row.CreatedAt)
	return row, mapErr(err)
}

// UpdateQuizStatusParams transitions a quiz status.
type UpdateQuizStatusParams struct {
	QuizID pgtype.UUID
	Status string
}

// UpdateQuizStatus sets the quiz status unconditionally; transition
// legality is checked by the service.
func (s *Store) UpdateQuizStatus(ctx context.Context, arg UpdateQuizStatusParams) error {
	_, err := s.pool.Exec(ctx, `UPDATE quizzes SET status = $1 WHERE id = $2`, arg.Status, arg.QuizID)
	return mapErr(err)
}

// QuizItemRow is one positioned slot within a quiz, joined with its
// owning quiz for ownership checks.
type QuizItemRow struct {
	ID         pgtype.UUID
	QuizID     pgtype.UUID
	QuestionID pgtype.UUID
	Ord        int32
	Marked     bool
	QuizStatus string
	QuizUserID pgtype.UUID
}

// GetQuizItemForUserParams identifies a quiz item by id and quiz owner.
type GetQuizItemForUserParams struct {
	QuizItemID pgtype.UUID
	UserID     pgtype.UUID
}

// GetQuizItemForUser fetches a quiz item only when its quiz belongs to
// the user.
func (s *Store) GetQuizItemForUser(ctx context.Context, arg GetQuizItemForUserParams) (QuizItemRow, error) {
	var row QuizItemRow
	err := s.pool.QueryRow(ctx, `
SELECT qi.id, qi.quiz_id, qi.question_id, qi.ord, qi.marked, qz.status, qz.user_id
FROM quiz_items qi
JOIN quizzes qz ON qz.id = qi.quiz_id
WHERE qi.id = $1 AND qz.user_id = $2`,
		arg.QuizItemID, arg.UserID).Scan(
		&row.ID, &row.QuizID, &row.QuestionID, &row.Ord, &row.Marked, &row.QuizStatus, &row.QuizUserID)
	return row, mapErr(err)
}

// SetQuizItemMarkedParams flips the marked flag on one item.
type SetQuizItemMarkedParams struct {
	QuizItemID pgtype.UUID
	Marked     bool
}

// SetQuizItemMarked updates the marked flag.
func (s *Store) SetQuizItemMarked(ctx context.Context, arg SetQuizItemMarkedParams) error {
	_, err := s.pool.Exec(ctx, `UPDATE quiz_items SET marked = $1 WHERE id = $2`, arg.Marked, arg.QuizItemID)
	return mapErr(err)
}

// QuizItemStateRow is the per-item state needed for end-quiz
// reconciliation and mode bookkeeping.
type QuizItemStateRow struct {
	ID          pgtype.UUID
	QuestionID  pgtype.UUID
	Ord         int32
	Marked      bool
	HasResponse bool
	ChoiceID    pgtype.UUID
	IsCorrect   pgtype.Bool
}

// ListQuizItemStates returns all items of a quiz with their current
// response, ordered by position.
func (s *Store) ListQuizItemStates(ctx context.Context, quizID pgtype.UUID) ([]QuizItemStateRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT qi.id, qi.question_id, qi.ord, qi.marked,
       r.id IS NOT NULL, r.choice_id, r.is_correct
FROM quiz_items qi
LEFT JOIN responses r ON r.quiz_item_id = qi.id
WHERE qi.quiz_id = $1
ORDER BY qi.ord`, quizID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var items []QuizItemStateRow
	for rows.Next() {
		var it QuizItemStateRow
		if err := rows.Scan(&it.ID, &it.QuestionID, &it.Ord, &it.Marked, &it.HasResponse, &it.ChoiceID, &it.IsCorrect); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, mapErr(rows.Err())
}

// EndQuizParams ends one quiz for its owner.
type EndQuizParams struct {
	QuizID pgtype.UUID
	UserID pgtype.UUID
}

// EndQuizResult reports the outcome of the end transaction.
type EndQuizResult struct {
	Omitted      int64
	AlreadyEnded bool
}

// EndQuiz records an omission response for every unanswered, unmarked
// item and flips the quiz to Ended, all in one transaction. Ending an
// already-Ended quiz is a no-op so omissions never double-count.
func (s *Store) EndQuiz(ctx context.Context, arg EndQuizParams) (EndQuizResult, error) {
	var result EndQuizResult

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, mapErr(err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `
SELECT status FROM quizzes WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		arg.QuizID, arg.UserID).Scan(&status)
	if err != nil {
		return result, mapErr(err)
	}
	if status == QuizStatusEnded {
		result.AlreadyEnded = true
		return result, tx.Commit(ctx)
	}

	tag, err := tx.Exec(ctx, `
INSERT INTO responses (quiz_item_id, user_id, choice_id, is_correct)
SELECT qi.id, $2, NULL, NULL
FROM quiz_items qi
LEFT JOIN responses r ON r.quiz_item_id = qi.id
WHERE qi.quiz_id = $1 AND NOT qi.marked AND r.id IS NULL`,
		arg.QuizID, arg.UserID)
	if err != nil {
		return result, mapErr(err)
	}
	result.Omitted = tag.RowsAffected()

	if _, err := tx.Exec(ctx, `UPDATE quizzes SET status = $1 WHERE id = $2`, QuizStatusEnded, arg.QuizID); err != nil {
		return result, mapErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return EndQuizResult{}, mapErr(err)
	}
	return result, nil
}
