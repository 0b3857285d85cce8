package quiz

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medqbank/qbank-platform/internal/auth"
	"github.com/medqbank/qbank-platform/internal/mode"
	"github.com/medqbank/qbank-platform/internal/question"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for quiz operations.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for quiz endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "quiz_http").Logger(),
	}
}

// Routes mounts the quiz endpoints on the router.
func (h *HTTPHandlers) Routes(r chi.Router) {
	r.Post("/", h.Generate)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/submit", h.Submit)
	r.Post("/{id}/flag", h.Flag)
	r.Post("/{id}/end", h.End)
	r.Post("/{id}/suspend", h.Suspend)
	r.Post("/{id}/resume", h.Resume)
}

type generateRequest struct {
	ScopeKeys   []string `json:"scopeKeys"`
	Resources   []string `json:"resources"`
	Disciplines []string `json:"disciplines"`
	Systems     []string `json:"systems"`
	Types       []string `json:"types"`
	Modes       []string `json:"modes"`
	Count       int      `json:"count"`
}

// Generate handles POST /v1/quizzes
func (h *HTTPHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	modes := make([]mode.Mode, len(req.Modes))
	for i, m := range req.Modes {
		modes[i] = mode.Mode(m)
	}

	quizID, err := h.service.Generate(r.Context(), question.Criteria{
		UserID:      userID,
		ScopeKeys:   req.ScopeKeys,
		Resources:   req.Resources,
		Disciplines: req.Disciplines,
		Systems:     req.Systems,
		Types:       req.Types,
		Modes:       modes,
		Take:        req.Count,
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("quiz generation failed")
		httperrors.MapError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"id": quizID.String()})
}

// Get handles GET /v1/quizzes/{id}
func (h *HTTPHandlers) Get(w http.ResponseWriter, r *http.Request) {
	userID, quizID, ok := h.identify(w, r)
	if !ok {
		return
	}
	quiz, err := h.service.Get(r.Context(), userID, quizID)
	if err != nil {
		httperrors.MapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quiz)
}

type submitRequest struct {
	QuizItemID     uuid.UUID  `json:"quizItemId"`
	ChoiceID       *uuid.UUID `json:"choiceId,omitempty"`
	ChoiceText     string     `json:"choiceText,omitempty"`
	ElapsedSeconds int32      `json:"elapsedSeconds,omitempty"`
}

// Submit handles POST /v1/quizzes/{id}/submit
func (h *HTTPHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	userID, quizID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.QuizItemID == uuid.Nil || (req.ChoiceID == nil && req.ChoiceText == "") {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "quizItemId and a choice are required", "quizItemId")
		return
	}

	result, err := h.service.SubmitAnswer(r.Context(), userID, quizID, req.QuizItemID, req.ChoiceID, req.ChoiceText, req.ElapsedSeconds)
	if err != nil {
		httperrors.MapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type flagRequest struct {
	QuizItemID uuid.UUID `json:"quizItemId"`
	Marked     *bool     `json:"marked"`
}

// Flag handles POST /v1/quizzes/{id}/flag
func (h *HTTPHandlers) Flag(w http.ResponseWriter, r *http.Request) {
	userID, quizID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.QuizItemID == uuid.Nil || req.Marked == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "quizItemId and marked are required", "marked")
		return
	}

	if err := h.service.ToggleFlag(r.Context(), userID, quizID, req.QuizItemID, *req.Marked); err != nil {
		httperrors.MapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"quizItemId": req.QuizItemID, "marked": *req.Marked})
}

// End handles POST /v1/quizzes/{id}/end
func (h *HTTPHandlers) End(w http.ResponseWriter, r *http.Request) {
	userID, quizID, ok := h.identify(w, r)
	if !ok {
		return
	}
	result, err := h.service.End(r.Context(), userID, quizID)
	if err != nil {
		httperrors.MapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Suspend handles POST /v1/quizzes/{id}/suspend
func (h *HTTPHandlers) Suspend(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.service.Suspend)
}

// Resume handles POST /v1/quizzes/{id}/resume
func (h *HTTPHandlers) Resume(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, h.service.Resume)
}

func (h *HTTPHandlers) statusChange(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, quizID uuid.UUID) error) {
	userID, quizID, ok := h.identify(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), userID, quizID); err != nil {
		httperrors.MapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// identify extracts the authenticated user and the quiz id path param.
func (h *HTTPHandlers) identify(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	quizID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid quiz id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, quizID, true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
