package quiz

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medqbank/qbank-platform/internal/db/store"
	"github.com/medqbank/qbank-platform/internal/metrics"
	"github.com/medqbank/qbank-platform/internal/mode"
	"github.com/medqbank/qbank-platform/internal/question"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

type quizRepo interface {
	CreateWithItems(ctx context.Context, userID uuid.UUID, questionIDs []uuid.UUID) (uuid.UUID, error)
	GetForUser(ctx context.Context, quizID, userID uuid.UUID) (store.QuizRow, error)
	UpdateStatus(ctx context.Context, quizID uuid.UUID, status string) error
	GetItemForUser(ctx context.Context, quizItemID, userID uuid.UUID) (store.QuizItemRow, error)
	SetItemMarked(ctx context.Context, quizItemID uuid.UUID, marked bool) error
	ItemStates(ctx context.Context, quizID uuid.UUID) ([]store.QuizItemStateRow, error)
	End(ctx context.Context, quizID, userID uuid.UUID) (store.EndQuizResult, error)
	UpsertResponse(ctx context.Context, params store.UpsertResponseParams) error
}

type questionReader interface {
	Get(ctx context.Context, questionID uuid.UUID) (store.QuestionRow, error)
	Choices(ctx context.Context, questionID uuid.UUID) ([]store.ChoiceRow, error)
}

type selector interface {
	Select(ctx context.Context, criteria question.Criteria) ([]uuid.UUID, error)
}

type modeTracker interface {
	Set(ctx context.Context, questionID uuid.UUID, m mode.Mode) error
	DeriveFromHistory(ctx context.Context, questionID uuid.UUID) (mode.Mode, error)
}

// Service owns the Quiz/QuizItem/Response aggregate's transitions.
type Service struct {
	repo      quizRepo
	questions questionReader
	selector  selector
	modes     modeTracker
	logger    zerolog.Logger
}

// NewService creates a quiz lifecycle service.
func NewService(repo quizRepo, questions questionReader, sel selector, modes modeTracker, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		questions: questions,
		selector:  sel,
		modes:     modes,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
	}
}

// Generate selects questions for the criteria and creates the quiz.
func (s *Service) Generate(ctx context.Context, criteria question.Criteria) (uuid.UUID, error) {
	ids, err := s.selector.Select(ctx, criteria)
	if err != nil {
		return uuid.Nil, err
	}
	metrics.SelectionSize.Observe(float64(len(ids)))
	return s.Create(ctx, criteria.UserID, ids)
}

// Create atomically persists one quiz plus one item per question id,
// preserving order. The id list must be non-empty and duplicate-free.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, questionIDs []uuid.UUID) (uuid.UUID, error) {
	if len(questionIDs) == 0 {
		return uuid.Nil, fmt.Errorf("%w: question id list is empty", httperrors.ErrValidation)
	}
	seen := make(map[uuid.UUID]struct{}, len(questionIDs))
	for _, id := range questionIDs {
		if _, dup := seen[id]; dup {
			return uuid.Nil, fmt.Errorf("%w: duplicate question id %s", httperrors.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}

	quizID, err := s.repo.CreateWithItems(ctx, userID, questionIDs)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create quiz: %w", err)
	}
	metrics.QuizzesCreated.Inc()
	s.logger.Info().Str("quiz_id", quizID.String()).Str("user_id", userID.String()).Int("items", len(questionIDs)).Msg("quiz created")
	return quizID, nil
}

// SubmitAnswer resolves the picked choice (by id, falling back to text
// matching for legacy clients), grades it against the question's
// correct choice, and records the response. The ownership check runs
// on every call, and the item must belong to the addressed quiz.
func (s *Service) SubmitAnswer(ctx context.Context, userID, quizID, quizItemID uuid.UUID, choiceID *uuid.UUID, choiceText string, elapsedSeconds int32) (SubmitResult, error) {
	item, err := s.repo.GetItemForUser(ctx, quizItemID, userID)
	if err != nil {
		return SubmitResult{}, err
	}
	if uuid.UUID(item.QuizID.Bytes) != quizID {
		return SubmitResult{}, httperrors.ErrNotFound
	}
	if item.QuizStatus == store.QuizStatusEnded {
		return SubmitResult{}, fmt.Errorf("%w: quiz already ended", httperrors.ErrInvalidTransition)
	}

	questionID := uuid.UUID(item.QuestionID.Bytes)
	choices, err := s.questions.Choices(ctx, questionID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("load choices: %w", err)
	}

	var correct, picked *store.ChoiceRow
	for i := range choices {
		if choices[i].IsCorrect {
			correct = &choices[i]
		}
		if choiceID != nil && uuid.UUID(choices[i].ID.Bytes) == *choiceID {
			picked = &choices[i]
		}
	}
	if picked == nil && choiceText != "" {
		for i := range choices {
			if choices[i].Text == choiceText {
				picked = &choices[i]
				break
			}
		}
	}
	if picked == nil || correct == nil {
		return SubmitResult{}, httperrors.ErrInvalidChoice
	}

	isCorrect := picked.ID == correct.ID
	err = s.repo.UpsertResponse(ctx, store.UpsertResponseParams{
		QuizItemID:     item.ID,
		UserID:         item.QuizUserID,
		ChoiceID:       picked.ID,
		IsCorrect:      pgBool(isCorrect),
		ElapsedSeconds: elapsedSeconds,
	})
	if err != nil {
		return SubmitResult{}, fmt.Errorf("record response: %w", err)
	}

	result := "incorrect"
	if isCorrect {
		result = "correct"
	}
	metrics.AnswersSubmitted.WithLabelValues(result).Inc()

	// Mode bookkeeping is best-effort: a failure here never fails the
	// submission. A flagged item keeps its marked mode.
	if !item.Marked {
		newMode := mode.Incorrect
		if isCorrect {
			newMode = mode.Correct
		}
		if err := s.modes.Set(ctx, questionID, newMode); err != nil {
			s.logger.Warn().Err(err).Str("question_id", questionID.String()).Msg("failed to update mode after submission")
		}
	}

	return SubmitResult{
		IsCorrect:         isCorrect,
		CorrectChoiceID:   uuid.UUID(correct.ID.Bytes),
		CorrectChoiceText: correct.Text,
	}, nil
}

// ToggleFlag sets or clears the marked flag on an item of a quiz the
// user owns. Flag state is authoritative; the mode write afterwards is
// best-effort and never rolls the toggle back.
func (s *Service) ToggleFlag(ctx context.Context, userID, quizID, quizItemID uuid.UUID, marked bool) error {
	item, err := s.repo.GetItemForUser(ctx, quizItemID, userID)
	if err != nil {
		return err
	}
	if uuid.UUID(item.QuizID.Bytes) != quizID {
		return httperrors.ErrNotFound
	}
	if err := s.repo.SetItemMarked(ctx, quizItemID, marked); err != nil {
		return fmt.Errorf("set marked: %w", err)
	}

	questionID := uuid.UUID(item.QuestionID.Bytes)
	if marked {
		if err := s.modes.Set(ctx, questionID, mode.Marked); err != nil {
			s.logger.Warn().Err(err).Str("question_id", questionID.String()).Msg("failed to update mode after flag")
		}
		return nil
	}
	derived, err := s.modes.DeriveFromHistory(ctx, questionID)
	if err == nil {
		err = s.modes.Set(ctx, questionID, derived)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("question_id", questionID.String()).Msg("failed to update mode after unflag")
	}
	return nil
}

// End finalizes the quiz: every unanswered, unmarked item gets exactly
// one null-choice omission response and the status flips to Ended, in
// one transaction. Ending an Ended quiz is a no-op.
func (s *Service) End(ctx context.Context, userID, quizID uuid.UUID) (EndResult, error) {
	result, err := s.repo.End(ctx, quizID, userID)
	if err != nil {
		return EndResult{}, err
	}
	if result.AlreadyEnded {
		return EndResult{OmittedCount: 0}, nil
	}
	metrics.QuizzesEnded.Inc()

	// Reconcile modes for every item; the omission responses are already
	// committed so the derivation sees them. Best-effort.
	items, err := s.repo.ItemStates(ctx, quizID)
	if err != nil {
		s.logger.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("failed to load items for mode reconciliation")
		return EndResult{OmittedCount: result.Omitted}, nil
	}
	for _, it := range items {
		questionID := uuid.UUID(it.QuestionID.Bytes)
		m := mode.Omitted
		switch {
		case it.Marked:
			m = mode.Marked
		case it.HasResponse && it.ChoiceID.Valid && it.IsCorrect.Valid && it.IsCorrect.Bool:
			m = mode.Correct
		case it.HasResponse && it.ChoiceID.Valid && it.IsCorrect.Valid:
			m = mode.Incorrect
		}
		if err := s.modes.Set(ctx, questionID, m); err != nil {
			s.logger.Warn().Err(err).Str("question_id", questionID.String()).Msg("failed to reconcile mode at quiz end")
		}
	}

	return EndResult{OmittedCount: result.Omitted}, nil
}

// Suspend pauses an active quiz. No side effects on responses or modes.
func (s *Service) Suspend(ctx context.Context, userID, quizID uuid.UUID) error {
	return s.transition(ctx, userID, quizID, StatusSuspended)
}

// Resume reactivates a suspended quiz.
func (s *Service) Resume(ctx context.Context, userID, quizID uuid.UUID) error {
	return s.transition(ctx, userID, quizID, StatusActive)
}

func (s *Service) transition(ctx context.Context, userID, quizID uuid.UUID, target Status) error {
	quiz, err := s.repo.GetForUser(ctx, quizID, userID)
	if err != nil {
		return err
	}
	if quiz.Status == store.QuizStatusEnded {
		return fmt.Errorf("%w: quiz already ended", httperrors.ErrInvalidTransition)
	}
	if Status(quiz.Status) == target {
		return nil
	}
	if err := s.repo.UpdateStatus(ctx, quizID, string(target)); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// Get assembles the quiz aggregate for rendering. The correct-choice
// flag is withheld for unanswered items.
func (s *Service) Get(ctx context.Context, userID, quizID uuid.UUID) (Quiz, error) {
	header, err := s.repo.GetForUser(ctx, quizID, userID)
	if err != nil {
		return Quiz{}, err
	}
	states, err := s.repo.ItemStates(ctx, quizID)
	if err != nil {
		return Quiz{}, fmt.Errorf("load items: %w", err)
	}

	out := Quiz{
		ID:        uuid.UUID(header.ID.Bytes),
		UserID:    uuid.UUID(header.UserID.Bytes),
		Status:    Status(header.Status),
		CreatedAt: header.CreatedAt.Time,
		Items:     make([]Item, 0, len(states)),
	}

	for _, st := range states {
		questionID := uuid.UUID(st.QuestionID.Bytes)
		q, err := s.questions.Get(ctx, questionID)
		if err != nil {
			return Quiz{}, fmt.Errorf("load question %s: %w", questionID, err)
		}
		choices, err := s.questions.Choices(ctx, questionID)
		if err != nil {
			return Quiz{}, fmt.Errorf("load choices for %s: %w", questionID, err)
		}

		item := Item{
			ID:     uuid.UUID(st.ID.Bytes),
			Order:  int(st.Ord),
			Marked: st.Marked,
			Question: question.Question{
				ID:        questionID,
				Text:      q.Text,
				CustomID:  q.CustomID.String,
				Confirmed: q.AnswerConfirmed,
				Choices:   make([]question.Choice, 0, len(choices)),
			},
		}
		for _, c := range choices {
			choice := question.Choice{ID: uuid.UUID(c.ID.Bytes), Text: c.Text}
			if st.HasResponse {
				isCorrect := c.IsCorrect
				choice.IsCorrect = &isCorrect
			}
			item.Question.Choices = append(item.Question.Choices, choice)
		}
		if st.HasResponse {
			resp := Response{}
			if st.ChoiceID.Valid {
				choiceID := uuid.UUID(st.ChoiceID.Bytes)
				resp.ChoiceID = &choiceID
			}
			if st.IsCorrect.Valid {
				isCorrect := st.IsCorrect.Bool
				resp.IsCorrect = &isCorrect
			}
			item.Response = &resp
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
