package question

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/medqbank/qbank-platform/internal/auth"
	"github.com/medqbank/qbank-platform/internal/mode"
	httperrors "github.com/medqbank/qbank-platform/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for availability counts.
type HTTPHandlers struct {
	service *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for question endpoints.
func NewHTTPHandlers(service *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		logger:  logger.With().Str("component", "question_http").Logger(),
	}
}

// Routes mounts the question endpoints on the router.
func (h *HTTPHandlers) Routes(r chi.Router) {
	r.Get("/mode-counts", h.ModeCounts)
	r.Get("/counts", h.FilteredCounts)
}

// ModeCounts handles GET /v1/questions/mode-counts?scope=…
func (h *HTTPHandlers) ModeCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	counts, err := h.service.ModeCounts(r.Context(), userID, r.URL.Query()["scope"])
	if err != nil {
		httperrors.MapError(w, err)
		return
	}
	writeJSON(w, map[string]any{"counts": counts})
}

// FilteredCounts handles GET /v1/questions/counts with the full filter
// set as repeated query params.
func (h *HTTPHandlers) FilteredCounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	}

	query := r.URL.Query()
	criteria := Criteria{
		UserID:      userID,
		ScopeKeys:   query["scope"],
		Resources:   query["resource"],
		Disciplines: query["discipline"],
		Systems:     query["system"],
		Types:       query["type"],
	}
	for _, m := range query["mode"] {
		criteria.Modes = append(criteria.Modes, mode.Mode(m))
	}
	if raw := query.Get("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			criteria.Take = n
		}
	}

	eligible, err := h.service.FilteredCounts(r.Context(), criteria)
	if err != nil {
		httperrors.MapError(w, err)
		return
	}
	writeJSON(w, map[string]int{"eligible": eligible})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
