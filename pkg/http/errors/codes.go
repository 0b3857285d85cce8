package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Selection errors
	ErrCodeNoQuestionsMatch = "no_questions_match"

	// Quiz errors
	ErrCodeQuizNotFound       = "quiz_not_found"
	ErrCodeQuizItemNotFound   = "quiz_item_not_found"
	ErrCodeQuizEnded          = "quiz_ended"
	ErrCodeInvalidChoice      = "invalid_choice"
	ErrCodeInvalidTransition  = "invalid_transition"
	ErrCodeQuizCreationFailed = "quiz_creation_failed"
	ErrCodeSubmitFailed       = "submit_failed"
	ErrCodeFlagFailed         = "flag_failed"
	ErrCodeEndFailed          = "end_failed"

	// Counts errors
	ErrCodeCountsFetchFailed = "counts_fetch_failed"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeStoreUnavailable   = "store_unavailable"
)
