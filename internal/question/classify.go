package question

import (
	"github.com/google/uuid"

	"github.com/medqbank/qbank-platform/internal/db/store"
	"github.com/medqbank/qbank-platform/internal/mode"
)

// userHistory is the per-user interaction summary the classifier works
// from: which questions were ever served, which are flagged, and the
// newest response per question.
type userHistory struct {
	served map[uuid.UUID]struct{}
	marked map[uuid.UUID]struct{}
	latest map[uuid.UUID]store.UserResponseRow
}

// buildHistory folds quiz items and responses (responses ordered newest
// first) into a userHistory.
func buildHistory(items []store.UserQuizItemRow, responses []store.UserResponseRow) userHistory {
	h := userHistory{
		served: make(map[uuid.UUID]struct{}, len(items)),
		marked: make(map[uuid.UUID]struct{}),
		latest: make(map[uuid.UUID]store.UserResponseRow),
	}
	for _, item := range items {
		questionID := uuid.UUID(item.QuestionID.Bytes)
		h.served[questionID] = struct{}{}
		if item.Marked {
			h.marked[questionID] = struct{}{}
		}
	}
	for _, r := range responses {
		questionID := uuid.UUID(r.QuestionID.Bytes)
		if _, seen := h.latest[questionID]; !seen {
			h.latest[questionID] = r
		}
	}
	return h
}

// classify derives the current mode of one question for this user.
// Precedence: marked beats everything; then the newest response; a
// question served but never answered is omitted; only a never-served
// question is unused.
func (h userHistory) classify(questionID uuid.UUID) mode.Mode {
	if _, ok := h.marked[questionID]; ok {
		return mode.Marked
	}
	if latest, ok := h.latest[questionID]; ok {
		var isCorrect *bool
		if latest.IsCorrect.Valid {
			isCorrect = &latest.IsCorrect.Bool
		}
		if m := mode.FromResponse(latest.ChoiceID.Valid, isCorrect); m != mode.Unused {
			return m
		}
		// Responded but with no recorded correctness: the question was
		// still served, so it cannot count as unused.
		return mode.Omitted
	}
	if _, ok := h.served[questionID]; ok {
		return mode.Omitted
	}
	return mode.Unused
}
