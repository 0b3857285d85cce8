package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/medqbank/qbank-platform/internal/question"
)

// Status is a quiz lifecycle state.
type Status string

// Active -> Suspended <-> Active; Active -> Ended (terminal).
const (
	StatusActive    Status = "Active"
	StatusSuspended Status = "Suspended"
	StatusEnded     Status = "Ended"
)

// Quiz is the aggregate served to clients for rendering.
type Quiz struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Items     []Item    `json:"items"`
}

// Item is one positioned slot within a quiz.
type Item struct {
	ID       uuid.UUID         `json:"id"`
	Order    int               `json:"order"`
	Marked   bool              `json:"marked"`
	Question question.Question `json:"question"`
	Response *Response         `json:"response,omitempty"`
}

// Response is the live answer state of an item. A nil ChoiceID with a
// present Response records an omission.
type Response struct {
	ChoiceID  *uuid.UUID `json:"choiceId"`
	IsCorrect *bool      `json:"isCorrect"`
}

// SubmitResult reports the outcome of an answer submission.
type SubmitResult struct {
	IsCorrect         bool      `json:"isCorrect"`
	CorrectChoiceID   uuid.UUID `json:"correctChoiceId"`
	CorrectChoiceText string    `json:"correctChoiceText"`
}

// EndResult reports the outcome of ending a quiz.
type EndResult struct {
	OmittedCount int64 `json:"omittedCount"`
}
