package errors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Domain sentinels. Services return these (usually wrapped); the HTTP
// boundary maps them onto status codes with MapError.
var (
	// ErrValidation indicates caller-correctable input (no scope keys,
	// out-of-range count, malformed filter values).
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers missing resources and resources owned by a
	// different user. The two are deliberately indistinguishable so
	// existence of other users' quizzes never leaks.
	ErrNotFound = errors.New("not found")

	// ErrNoMatch means selection produced zero eligible questions.
	ErrNoMatch = errors.New("no questions match")

	// ErrInvalidChoice means a submitted choice does not belong to the
	// referenced question.
	ErrInvalidChoice = errors.New("invalid choice")

	// ErrInvalidTransition rejects status changes out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrStoreUnavailable signals the backing store is unreachable.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RespondError writes a standardized error response to the HTTP response writer
func RespondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// RespondValidationError writes a validation error response with field information
func RespondValidationError(w http.ResponseWriter, code, message, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   code,
		Message: message,
		Field:   field,
	})
}

// RespondInternalError writes an internal server error response
func RespondInternalError(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// RespondNotFound writes a not found error response
func RespondNotFound(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusNotFound, code, message)
}

// RespondUnauthorized writes an unauthorized error response
func RespondUnauthorized(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusUnauthorized, code, message)
}

// RespondBadRequest writes a bad request error response
func RespondBadRequest(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusBadRequest, code, message)
}

// RespondServiceUnavailable writes a service unavailable error response
func RespondServiceUnavailable(w http.ResponseWriter, code, message string) {
	RespondError(w, http.StatusServiceUnavailable, code, message)
}

// MapError translates a domain error into the matching HTTP response.
// Unknown errors become 500s with a generic message so internals never
// reach the client.
func MapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		RespondBadRequest(w, ErrCodeValidationFailed, err.Error())
	case errors.Is(err, ErrInvalidChoice):
		RespondBadRequest(w, ErrCodeInvalidChoice, err.Error())
	case errors.Is(err, ErrNoMatch):
		RespondBadRequest(w, ErrCodeNoQuestionsMatch, "No questions match your filters.")
	case errors.Is(err, ErrNotFound):
		RespondNotFound(w, ErrCodeNotFound, "Resource not found")
	case errors.Is(err, ErrInvalidTransition):
		RespondBadRequest(w, ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		RespondServiceUnavailable(w, ErrCodeStoreUnavailable, "Temporarily unavailable, try again shortly")
	default:
		RespondInternalError(w, "Internal server error")
	}
}
