package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// UpsertResponseParams records or revises the answer for one quiz item.
type UpsertResponseParams struct {
	QuizItemID     pgtype.UUID
	UserID         pgtype.UUID
	ChoiceID       pgtype.UUID
	IsCorrect      pgtype.Bool
	ElapsedSeconds int32
}

// UpsertResponse keeps at most one live response per quiz item. A
// revision bumps changes and refreshes created_at so the latest
// submission is authoritative for mode derivation.
func (s *Store) UpsertResponse(ctx context.Context, arg UpsertResponseParams) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO responses (quiz_item_id, user_id, choice_id, is_correct, elapsed_seconds)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (quiz_item_id) DO UPDATE SET
    choice_id       = EXCLUDED.choice_id,
    is_correct      = EXCLUDED.is_correct,
    elapsed_seconds = responses.elapsed_seconds + EXCLUDED.elapsed_seconds,
    changes         = responses.changes + 1,
    created_at      = now()`,
		arg.QuizItemID, arg.UserID, arg.ChoiceID, arg.IsCorrect, arg.ElapsedSeconds)
	return mapErr(err)
}

// ResponseRow is the live response for a quiz item.
type ResponseRow struct {
	ID             int64
	QuizItemID     pgtype.UUID
	UserID         pgtype.UUID
	ChoiceID       pgtype.UUID
	IsCorrect      pgtype.Bool
	ElapsedSeconds int32
	Changes        int32
	CreatedAt      pgtype.Timestamptz
}

// GetResponseByQuizItem returns the live response for an item, or
// pgx.ErrNoRows when the item was never answered.
func (s *Store) GetResponseByQuizItem(ctx context.Context, quizItemID pgtype.UUID) (ResponseRow, error) {
	var r ResponseRow
	err := s.pool.QueryRow(ctx, `
SELECT id, quiz_item_id, user_id, choice_id, is_correct, elapsed_seconds, changes, created_at
FROM responses WHERE quiz_item_id = $1`, quizItemID).Scan(
		&r.ID, &r.QuizItemID, &r.UserID, &r.ChoiceID, &r.IsCorrect, &r.ElapsedSeconds, &r.Changes, &r.CreatedAt)
	return r, mapErr(err)
}
