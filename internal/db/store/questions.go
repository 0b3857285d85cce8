package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Tag type discriminators as stored in tags.type.
const (
	TagTypeRotation   = "ROTATION"
	TagTypeResource   = "RESOURCE"
	TagTypeDiscipline = "DISCIPLINE"
	TagTypeSystem     = "SYSTEM"
	TagTypeType       = "TYPE"
)

// FilterQuestionIDsParams narrows the question pool. ScopeValues is
// mandatory; the optional dimensions are skipped when empty. Values are
// matched case-insensitively, so callers pass them lower-cased.
type FilterQuestionIDsParams struct {
	ScopeValues      []string
	ResourceValues   []string
	DisciplineValues []string
	SystemValues     []string
	TypeValues       []string
}

// normalized replaces nil slices with empty ones. pgx binds a nil
// []string as SQL NULL, and cardinality(NULL::text[]) is NULL rather
// than 0, which would defeat the empty-dimension skip below.
func (p FilterQuestionIDsParams) normalized() FilterQuestionIDsParams {
	if p.ScopeValues == nil {
		p.ScopeValues = []string{}
	}
	if p.ResourceValues == nil {
		p.ResourceValues = []string{}
	}
	if p.DisciplineValues == nil {
		p.DisciplineValues = []string{}
	}
	if p.SystemValues == nil {
		p.SystemValues = []string{}
	}
	if p.TypeValues == nil {
		p.TypeValues = []string{}
	}
	return p
}

const filterQuestionIDsQuery = `
SELECT q.id
FROM questions q
WHERE EXISTS (
        SELECT 1 FROM question_tags qt
        JOIN tags t ON t.id = qt.tag_id
        WHERE qt.question_id = q.id AND t.type = 'ROTATION' AND lower(t.value) = ANY($1)
    )
  AND (cardinality($2::text[]) = 0 OR EXISTS (
        SELECT 1 FROM question_tags qt
        JOIN tags t ON t.id = qt.tag_id
        WHERE qt.question_id = q.id AND t.type = 'RESOURCE' AND lower(t.value) = ANY($2)
    ))
  AND (cardinality($3::text[]) = 0 OR EXISTS (
        SELECT 1 FROM question_tags qt
        JOIN tags t ON t.id = qt.tag_id
        WHERE qt.question_id = q.id AND t.type = 'DISCIPLINE' AND lower(t.value) = ANY($3)
    ))
  AND (cardinality($4::text[]) = 0 OR EXISTS (
        SELECT 1 FROM question_tags qt
        JOIN tags t ON t.id = qt.tag_id
        WHERE qt.question_id = q.id AND t.type = 'SYSTEM' AND lower(t.value) = ANY($4)
    ))
  AND (cardinality($5::text[]) = 0 OR EXISTS (
        SELECT 1 FROM question_tags qt
        JOIN tags t ON t.id = qt.tag_id
        WHERE qt.question_id = q.id AND t.type = 'TYPE' AND lower(t.value) = ANY($5)
    ))
ORDER BY q.created_at DESC
`

// FilterQuestionIDs returns ids of questions whose tags satisfy the
// AND-across-dimensions / OR-within-dimension filter semantics.
func (s *Store) FilterQuestionIDs(ctx context.Context, arg FilterQuestionIDsParams) ([]pgtype.UUID, error) {
	arg = arg.normalized()
	rows, err := s.pool.Query(ctx, filterQuestionIDsQuery,
		arg.ScopeValues, arg.ResourceValues, arg.DisciplineValues, arg.SystemValues, arg.TypeValues)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var ids []pgtype.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, mapErr(rows.Err())
}

// QuestionRow is the full question record.
type QuestionRow struct {
	ID               pgtype.UUID
	Text             string
	CustomID         pgtype.Text
	YearCaptured     pgtype.Text
	RotationCaptured pgtype.Text
	AnswerConfirmed  bool
	CreatedAt        pgtype.Timestamptz
}

// GetQuestion fetches a single question by id.
func (s *Store) GetQuestion(ctx context.Context, questionID pgtype.UUID) (QuestionRow, error) {
	var row QuestionRow
	err := s.pool.QueryRow(ctx, `
SELECT id, text, custom_id, year_captured, rotation_captured, answer_confirmed, created_at
FROM questions WHERE id = $1`, questionID).Scan(
		&row.ID, &row.Text, &row.CustomID, &row.YearCaptured, &row.RotationCaptured,
		&row.AnswerConfirmed, &row.CreatedAt)
	return row, mapErr(err)
}

// ChoiceRow is one answer choice of a question.
type ChoiceRow struct {
	ID         pgtype.UUID
	QuestionID pgtype.UUID
	Text       string
	IsCorrect  bool
}

// GetChoicesByQuestion returns all answer choices for one question.
func (s *Store) GetChoicesByQuestion(ctx context.Context, questionID pgtype.UUID) ([]ChoiceRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, question_id, text, is_correct FROM choices WHERE question_id = $1 ORDER BY id`, questionID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var choices []ChoiceRow
	for rows.Next() {
		var c ChoiceRow
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text, &c.IsCorrect); err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	return choices, mapErr(rows.Err())
}

// UserQuizItemRow captures one served question in a user's quiz history.
type UserQuizItemRow struct {
	QuestionID pgtype.UUID
	Marked     bool
}

// ListUserQuizItems returns every (question, marked) pair across all of
// the user's quizzes, for per-user mode classification.
func (s *Store) ListUserQuizItems(ctx context.Context, userID pgtype.UUID) ([]UserQuizItemRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT qi.question_id, qi.marked
FROM quiz_items qi
JOIN quizzes qz ON qz.id = qi.quiz_id
WHERE qz.user_id = $1`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var items []UserQuizItemRow
	for rows.Next() {
		var it UserQuizItemRow
		if err := rows.Scan(&it.QuestionID, &it.Marked); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, mapErr(rows.Err())
}

// UserResponseRow is one answer event in a user's history, newest first.
type UserResponseRow struct {
	ID         int64
	QuestionID pgtype.UUID
	ChoiceID   pgtype.UUID
	IsCorrect  pgtype.Bool
	CreatedAt  pgtype.Timestamptz
}

// ListUserResponses returns the user's responses ordered newest first
// (created_at DESC, id DESC as the clock-tie break).
func (s *Store) ListUserResponses(ctx context.Context, userID pgtype.UUID) ([]UserResponseRow, error) {
	rows, err := s.pool.Query(ctx, `
SELECT r.id, qi.question_id, r.choice_id, r.is_correct, r.created_at
FROM responses r
JOIN quiz_items qi ON qi.id = r.quiz_item_id
WHERE r.user_id = $1
ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var responses []UserResponseRow
	for rows.Next() {
		var r UserResponseRow
		if err := rows.Scan(&r.ID, &r.QuestionID, &r.ChoiceID, &r.IsCorrect, &r.CreatedAt); err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	return responses, mapErr(rows.Err())
}

// GetLatestResponseByQuestion returns the most recent response for any
// quiz item referencing the question, or pgx.ErrNoRows.
func (s *Store) GetLatestResponseByQuestion(ctx context.Context, questionID pgtype.UUID) (UserResponseRow, error) {
	var r UserResponseRow
	err := s.pool.QueryRow(ctx, `
SELECT r.id, qi.question_id, r.choice_id, r.is_correct, r.created_at
FROM responses r
JOIN quiz_items qi ON qi.id = r.quiz_item_id
WHERE qi.question_id = $1
ORDER BY r.created_at DESC, r.id DESC
LIMIT 1`, questionID).Scan(&r.ID, &r.QuestionID, &r.ChoiceID, &r.IsCorrect, &r.CreatedAt)
	return r, mapErr(err)
}
