package question

import (
	"github.com/google/uuid"

	"github.com/medqbank/qbank-platform/internal/mode"
)

// Criteria describes one selection request. ScopeKeys is mandatory;
// the other tag dimensions are optional OR-filters. Modes restricts
// selection to questions currently classified under any of the given
// modes for this user ("unused" thereby strictly excludes questions
// the user has already been served).
type Criteria struct {
	UserID      uuid.UUID
	ScopeKeys   []string
	Resources   []string
	Disciplines []string
	Systems     []string
	Types       []string
	Modes       []mode.Mode
	Take        int
}

// Question is the payload delivered to clients when rendering a quiz.
type Question struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	CustomID  string    `json:"customId,omitempty"`
	Confirmed bool      `json:"answerConfirmed"`
	Choices   []Choice  `json:"choices"`
}

// Choice is one answer option. IsCorrect is only populated once the
// item has been answered; it is never sent for an unanswered item.
type Choice struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	IsCorrect *bool     `json:"isCorrect,omitempty"`
}
