package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/medqbank/qbank-platform/internal/db/store"
)

type modeStore interface {
	GetQuestionMode(ctx context.Context, questionID pgtype.UUID) (string, error)
	UpsertQuestionMode(ctx context.Context, arg store.UpsertQuestionModeParams) error
}

// ModeRepository persists the per-question mode record.
type ModeRepository struct {
	store modeStore
}

// NewModeRepository constructs a mode repository.
func NewModeRepository(store modeStore) *ModeRepository {
	return &ModeRepository{store: store}
}

// Get returns the raw stored mode value and whether a record exists.
// The value is canonicalized by the mode package, not here.
func (r *ModeRepository) Get(ctx context.Context, questionID uuid.UUID) (string, bool, error) {
	value, err := r.store.GetQuestionMode(ctx, PgUUID(questionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Set upserts the mode keyed on question id; repeated calls leave
// exactly one row.
func (r *ModeRepository) Set(ctx context.Context, questionID uuid.UUID, mode string) error {
	return r.store.UpsertQuestionMode(ctx, store.UpsertQuestionModeParams{
		QuestionID: PgUUID(questionID),
		Mode:       mode,
	})
}
