package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Submission errors (the caller's input was rejected)
	ErrCodeNotParticipant  = "not_participant"
	ErrCodeInvalidIndex    = "invalid_question_index"
	ErrCodeAlreadyAnswered = "already_answered"
	ErrCodeGameFinished    = "game_finished"

	// Game-setup errors (the system could not configure the game)
	ErrCodeBadConfiguration      = "bad_configuration"
	ErrCodeInsufficientQuestions = "insufficient_questions"
	ErrCodeDuplicateExhaustion   = "duplicate_exhaustion"
	ErrCodeCountMismatch         = "count_mismatch"

	// Queue errors
	ErrCodeEnqueueFailed      = "enqueue_failed"
	ErrCodeQueueTokenNotFound = "queue_token_not_found"

	// Server errors
	ErrCodeInternalError = "internal_error"

	// Highscore errors
	ErrCodeHighscoreFetchFailed = "highscore_fetch_failed"
)
