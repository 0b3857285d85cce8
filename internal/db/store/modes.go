package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// GetQuestionMode returns the raw stored mode value for a question, or
// pgx.ErrNoRows when none has been recorded.
func (s *Store) GetQuestionMode(ctx context.Context, questionID pgtype.UUID) (string, error) {
	var mode string
	err := s.pool.QueryRow(ctx, `
SELECT mode FROM question_modes WHERE question_id = $1`, questionID).Scan(&mode)
	return mode, mapErr(err)
}

// UpsertQuestionModeParams sets the mode for one question.
type UpsertQuestionModeParams struct {
	QuestionID pgtype.UUID
	Mode       string
}

// UpsertQuestionMode writes the mode as a single upsert keyed on
// question_id. The primary key guarantees at most one row per question
// no matter how often this runs.
func (s *Store) UpsertQuestionMode(ctx context.Context, arg UpsertQuestionModeParams) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO question_modes (question_id, mode)
VALUES ($1, $2)
ON CONFLICT (question_id) DO UPDATE SET mode = EXCLUDED.mode, updated_at = now()`,
		arg.QuestionID, arg.Mode)
	return mapErr(err)
}
