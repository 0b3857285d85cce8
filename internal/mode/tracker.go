package mode

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medqbank/qbank-platform/internal/db/store"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

type modeRecords interface {
	Get(ctx context.Context, questionID uuid.UUID) (string, bool, error)
	Set(ctx context.Context, questionID uuid.UUID, mode string) error
}

type responseHistory interface {
	LatestResponse(ctx context.Context, questionID uuid.UUID) (store.UserResponseRow, bool, error)
}

// Tracker maintains the authoritative mode record per question.
type Tracker struct {
	records modeRecords
	history responseHistory
	logger  zerolog.Logger
}

// NewTracker creates a mode tracker.
func NewTracker(records modeRecords, history responseHistory, logger zerolog.Logger) *Tracker {
	return &Tracker{
		records: records,
		history: history,
		logger:  logger.With().Str("component", "mode_tracker").Logger(),
	}
}

// Current returns the canonical mode for a question, or ok=false when
// no (valid) record exists. Callers default to Unused in that case.
func (t *Tracker) Current(ctx context.Context, questionID uuid.UUID) (Mode, bool, error) {
	raw, found, err := t.records.Get(ctx, questionID)
	if err != nil {
		return "", false, fmt.Errorf("get mode: %w", err)
	}
	if !found {
		return "", false, nil
	}
	m, ok := Canonicalize(raw)
	if !ok {
		// Legacy junk value; behave as if no mode is set.
		t.logger.Debug().Str("question_id", questionID.String()).Str("raw", raw).Msg("ignoring unrecognized mode value")
		return "", false, nil
	}
	return m, true, nil
}

// Set records the mode via a single upsert keyed on question id, so the
// at-most-one invariant holds structurally.
func (t *Tracker) Set(ctx context.Context, questionID uuid.UUID, m Mode) error {
	if !Valid(m) {
		return fmt.Errorf("%w: unknown mode %q", httperrors.ErrValidation, m)
	}
	if err := t.records.Set(ctx, questionID, string(m)); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	return nil
}

// DeriveFromHistory recomputes the mode from the most recent response
// for the question. Used when un-flagging: the mode goes back to what
// the answer history says, not to Unused. A question with no recorded
// response was served but never answered, hence Omitted.
func (t *Tracker) DeriveFromHistory(ctx context.Context, questionID uuid.UUID) (Mode, error) {
	latest, found, err := t.history.LatestResponse(ctx, questionID)
	if err != nil {
		return "", fmt.Errorf("latest response: %w", err)
	}
	if !found {
		return Omitted, nil
	}
	var isCorrect *bool
	if latest.IsCorrect.Valid {
		isCorrect = &latest.IsCorrect.Bool
	}
	return FromResponse(latest.ChoiceID.Valid, isCorrect), nil
}

// Ensure returns the current mode, lazily backfilling fallback when no
// record exists (legacy questions predating the mode system).
func (t *Tracker) Ensure(ctx context.Context, questionID uuid.UUID, fallback Mode) (Mode, error) {
	current, found, err := t.Current(ctx, questionID)
	if err != nil {
		return "", err
	}
	if found {
		return current, nil
	}
	if err := t.Set(ctx, questionID, fallback); err != nil {
		return "", err
	}
	return fallback, nil
}
